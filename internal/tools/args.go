package tools

import (
	"context"

	"github.com/koustreak/sqlbridge/internal/errs"
	"github.com/koustreak/sqlbridge/internal/value"
)

// args is a validated argument bundle. Accessors assume validate succeeded.
type args struct {
	ctx    context.Context
	values map[string]any
}

func (a args) str(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// list returns an array field, or an empty list when the optional field
// was absent.
func (a args) list(name string) []any {
	if l, ok := a.values[name].([]any); ok {
		return l
	}
	return []any{}
}

func (a args) lists(name string) [][]any {
	raw := a.list(name)
	out := make([][]any, len(raw))
	for i, item := range raw {
		out[i], _ = item.([]any)
	}
	return out
}

// validate checks raw against fields. Every check runs before any executor
// call, including the element check of array-of-array fields.
func validate(ctx context.Context, fields []field, raw any) (args, error) {
	var obj map[string]any
	switch value.KindOf(raw) {
	case value.KindNull:
		obj = map[string]any{}
	case value.KindObject:
		obj = raw.(map[string]any)
	default:
		return args{}, errs.New(errs.ErrKindInvalidInput, "arguments must be an object")
	}

	for _, f := range fields {
		v, present := obj[f.name]
		if !present {
			if f.required {
				return args{}, errs.Newf(errs.ErrKindInvalidInput, "missing required parameter: %s", f.name)
			}
			continue
		}
		// An explicit null is present and of the wrong type.
		if !f.typ.matches(v) {
			return args{}, errs.Newf(errs.ErrKindInvalidInput, "%s must be %s", f.name, article(f.typ))
		}
		if f.items == "" {
			continue
		}
		for i, item := range v.([]any) {
			if !f.items.matches(item) {
				return args{}, errs.Newf(errs.ErrKindInvalidInput, "%s[%d] must be %s", f.name, i, article(f.items))
			}
		}
	}
	return args{ctx: ctx, values: obj}, nil
}

func article(t fieldType) string {
	if t == typeArray {
		return "an array"
	}
	return "a " + string(t)
}
