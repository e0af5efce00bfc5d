package tools

import "github.com/koustreak/sqlbridge/internal/value"

// Tool is one entry of the advertised operation catalog.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// fieldType is the primitive type an argument field must have.
type fieldType string

const (
	typeString fieldType = "string"
	typeArray  fieldType = "array"
)

func (t fieldType) matches(v any) bool {
	switch t {
	case typeString:
		return value.KindOf(v) == value.KindString
	case typeArray:
		return value.KindOf(v) == value.KindArray
	}
	return false
}

// field describes one argument of an operation. The same table drives the
// published schema and argument validation.
type field struct {
	name        string
	typ         fieldType
	required    bool
	description string

	// items, when set, is the type every element of an array field must have.
	items fieldType
}

// operation is a named tool: its fields plus the executor call behind it.
type operation struct {
	name        string
	description string
	fields      []field
	run         func(r *Router, a args) (any, error)
}

var operations = []operation{
	{
		name:        "query",
		description: "Run a SQL query and return its columns and rows",
		fields: []field{
			{name: "query", typ: typeString, required: true, description: "SQL query to run"},
			{name: "params", typ: typeArray, description: "Parameters bound to the query's placeholders"},
		},
		run: func(r *Router, a args) (any, error) {
			return r.exec.RunQuery(a.ctx, a.str("query"), a.list("params"))
		},
	},
	{
		name:        "execute",
		description: "Execute a SQL statement",
		fields: []field{
			{name: "statement", typ: typeString, required: true, description: "SQL statement to execute"},
			{name: "params", typ: typeArray, description: "Parameters bound to the statement's placeholders"},
		},
		run: func(r *Router, a args) (any, error) {
			return r.exec.RunStatement(a.ctx, a.str("statement"), a.list("params"))
		},
	},
	{
		name:        "executemany",
		description: "Execute a SQL statement once per parameter set",
		fields: []field{
			{name: "statement", typ: typeString, required: true, description: "SQL statement to execute"},
			{name: "params_list", typ: typeArray, required: true, items: typeArray, description: "List of parameter sets bound to the statement"},
		},
		run: func(r *Router, a args) (any, error) {
			return r.exec.RunMany(a.ctx, a.str("statement"), a.lists("params_list"))
		},
	},
	{
		name:        "executescript",
		description: "Execute a SQL script of one or more statements",
		fields: []field{
			{name: "script", typ: typeString, required: true, description: "SQL script to execute"},
		},
		run: func(r *Router, a args) (any, error) {
			return r.exec.RunScript(a.ctx, a.str("script"))
		},
	},
}

var operationBy = indexOperations(operations)

func buildCatalog(ops []operation) []Tool {
	out := make([]Tool, 0, len(ops))
	for _, op := range ops {
		out = append(out, Tool{
			Name:        op.name,
			Description: op.description,
			InputSchema: inputSchema(op.fields),
		})
	}
	return out
}

func inputSchema(fields []field) map[string]any {
	required := make([]string, 0, len(fields))
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		prop := map[string]any{
			"type":        string(f.typ),
			"description": f.description,
		}
		if f.items != "" {
			prop["items"] = map[string]any{"type": string(f.items)}
		}
		props[f.name] = prop
		if f.required {
			required = append(required, f.name)
		}
	}
	return map[string]any{
		"type":       "object",
		"required":   required,
		"properties": props,
	}
}

func indexOperations(ops []operation) map[string]*operation {
	m := make(map[string]*operation, len(ops))
	for i := range ops {
		m[ops[i].name] = &ops[i]
	}
	return m
}
