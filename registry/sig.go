package registry

import (
	"reflect"
	"strings"
)

// Keyword parameters of a callable are declared by a trailing struct parameter:
// each exported field is one keyword, named after the lower-cased field name or
// a `kw:"name"` tag. A trailing map[string]any parameter is the catch-all form
// that accepts any keyword set. These helpers are pure and work on any func,
// including funcs with no parameters or with only the catch-all.

var keywordCatchAllType = reflect.TypeOf(map[string]any(nil))

// underlyingFunc resolves fn (possibly a *Bound) to its reflect func type, or
// nil when fn is not a func.
func underlyingFunc(fn any) reflect.Type {
	if b, ok := fn.(*Bound); ok {
		return underlyingFunc(b.fn)
	}
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return nil
	}
	return t
}

// hasKeywordCatchAll reports whether fn accepts arbitrary keyword arguments.
func hasKeywordCatchAll(fn any) bool {
	t := underlyingFunc(fn)
	return t != nil && t.NumIn() > 0 && t.In(t.NumIn()-1) == keywordCatchAllType
}

// optionsType returns the trailing options struct type of fn, if any.
func optionsType(fn any) (reflect.Type, bool) {
	t := underlyingFunc(fn)
	if t == nil || t.NumIn() == 0 || t.IsVariadic() {
		return nil, false
	}
	last := t.In(t.NumIn() - 1)
	if last.Kind() != reflect.Struct {
		return nil, false
	}
	return last, true
}

// keywordNames returns the declared keyword parameter names of fn in field
// order. Callables with no parameters, only positional parameters, or only the
// catch-all yield nil.
func keywordNames(fn any) []string {
	st, ok := optionsType(fn)
	if !ok {
		return nil
	}
	var names []string
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		names = append(names, keywordFieldName(f))
	}
	return names
}

func keywordFieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("kw"); tag != "" {
		return tag
	}
	return strings.ToLower(f.Name)
}
