// Package value converts between structured values (decoded JSON) and the
// native parameters and cells of a database/sql driver.
//
// A structured value is one of nil, bool, json.Number, string, []any or
// map[string]any, which is what Decode produces. Native Go numbers are
// accepted as Number too, so values can be built in code as well as decoded.
package value

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind is the variant of a structured value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// KindOf classifies v. Values outside the structured set report KindInvalid.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindInvalid
	}
}

// ToParameter converts a structured value into a bind parameter: nil, bool,
// int64, float64 or string. It never fails.
//
// Numbers bind as int64 when they fit. Unsigned values above math.MaxInt64
// are converted with a plain int64 conversion and wrap around; callers that
// need the full unsigned range must send them as strings.
// Arrays and objects bind as their compact JSON text.
func ToParameter(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		return x
	case string:
		return x
	case json.Number:
		return numberParameter(string(x))
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		s, err := Encode(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return s
	}
}

func numberParameter(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return int64(u)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// json.Number built by hand rather than decoded; bind the text as-is.
	return s
}

// ToParameters converts a positional list of structured values.
func ToParameters(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = ToParameter(v)
	}
	return out
}

// FromCell converts a native cell scanned from a driver into a structured
// value. It never fails: non-finite floats become nil, text with invalid
// UTF-8 is repaired, blobs become standard base64 and times become
// RFC 3339 strings.
func FromCell(cell any) any {
	switch x := cell.(type) {
	case nil:
		return nil
	case int64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint64:
		return int64(x)
	case uint32:
		return int64(x)
	case uint16:
		return int64(x)
	case uint8:
		return int64(x)
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case bool:
		return x
	case string:
		return Text([]byte(x))
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// Text decodes b as UTF-8, replacing invalid sequences with U+FFFD.
func Text(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// Encode renders v as compact JSON text. HTML characters are not escaped.
func Encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Decode reads one JSON document from r. Numbers decode as json.Number so
// 64-bit integers keep every digit.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON document")
	}
	return v, nil
}
