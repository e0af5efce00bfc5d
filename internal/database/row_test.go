package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaterialize(t *testing.T) {
	cols := []Column{
		{Name: "id", DatabaseType: "INTEGER"},
		{Name: "name", DatabaseType: "VARCHAR"},
		{Name: "payload", DatabaseType: "BLOB"},
	}
	textual := func(dbType string) bool { return dbType == "VARCHAR" }

	row := Materialize([]any{int64(7), []byte("ada"), []byte{0x00, 0x01, 0xfe}}, cols, textual)
	assert.Equal(t, map[string]any{"id": int64(7), "name": "ada", "payload": "AAH+"}, row)

	// without a text hook every []byte is a blob
	row = Materialize([]any{int64(7), []byte("ada"), nil}, cols, nil)
	assert.Equal(t, map[string]any{"id": int64(7), "name": "YWRh", "payload": nil}, row)
}

func TestMaterialize_DuplicateNames(t *testing.T) {
	cols := []Column{{Name: "a"}, {Name: "b"}, {Name: "a"}}

	row := Materialize([]any{int64(1), int64(2), int64(3)}, cols, nil)
	assert.Equal(t, map[string]any{"a": int64(3), "b": int64(2)}, row)
	assert.Equal(t, []string{"a", "b", "a"}, ColumnNames(cols))
}

func TestMaterialize_ShortRow(t *testing.T) {
	cols := []Column{{Name: "a"}, {Name: "b"}}

	row := Materialize([]any{"x"}, cols, nil)
	assert.Equal(t, map[string]any{"a": "x", "b": nil}, row)
}
