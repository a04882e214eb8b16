package registry

import (
	"fmt"
	"reflect"
)

// Bound is a callable with keyword arguments pre-applied but not yet invoked.
// Get returns one whenever the final keyword set is non-empty; BindKeywords
// builds one by hand (e.g. to register a pre-bound form of a shared callable).
type Bound struct {
	fn     any
	kwargs Metadata
}

// BindKeywords returns fn with kwargs pre-applied, without invoking it.
func BindKeywords(fn any, kwargs Metadata) *Bound {
	return &Bound{fn: fn, kwargs: kwargs.clone()}
}

// Fn returns the wrapped callable.
func (b *Bound) Fn() any { return b.fn }

// Keywords returns a copy of the pre-applied keyword arguments.
func (b *Bound) Keywords() Metadata { return b.kwargs.clone() }

// Call invokes the bound callable with the given positional arguments.
func (b *Bound) Call(args ...any) (any, error) { return Call(b, args...) }

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Call invokes fn with positional args. fn may be a plain func or a *Bound; a
// Bound's keyword set is materialized into the callable's trailing options
// struct or catch-all map (for nested Bounds the outer bindings win). A trailing
// error result is split off and returned as the error; the first remaining
// result (if any) is returned as the value.
func Call(fn any, args ...any) (any, error) {
	root, kwargs := flatten(fn, nil)
	v := reflect.ValueOf(root)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotCallable, root)
	}
	t := v.Type()
	n := t.NumIn()

	var in []reflect.Value
	if len(kwargs) > 0 {
		if t.IsVariadic() {
			return nil, fmt.Errorf("call %s: cannot bind keywords to a variadic callable", callableName(root))
		}
		if n == 0 {
			return nil, fmt.Errorf("call %s: keywords bound to a callable with no parameters", callableName(root))
		}
		if len(args) != n-1 {
			return nil, fmt.Errorf("call %s: expected %d positional arguments, got %d", callableName(root), n-1, len(args))
		}
		in = make([]reflect.Value, 0, n)
		for i, a := range args {
			av, err := argValue(a, t.In(i))
			if err != nil {
				return nil, fmt.Errorf("call %s: argument %d: %w", callableName(root), i, err)
			}
			in = append(in, av)
		}
		kv, err := keywordValue(t.In(n-1), kwargs)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", callableName(root), err)
		}
		in = append(in, kv)
		return mapResults(t, v.Call(in))
	}

	// A trailing keyword parameter (options struct or catch-all map) may be
	// omitted by the caller; it then gets its zero value, like keyword
	// parameters left at their defaults.
	padKeywords := false
	if t.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("call %s: expected at least %d positional arguments, got %d", callableName(root), n-1, len(args))
		}
	} else if len(args) == n-1 && declaresKeywords(root) {
		padKeywords = true
	} else if len(args) != n {
		return nil, fmt.Errorf("call %s: expected %d positional arguments, got %d", callableName(root), n, len(args))
	}
	in = make([]reflect.Value, 0, len(args)+1)
	for i, a := range args {
		pt := t.In(min(i, n-1))
		if t.IsVariadic() && i >= n-1 {
			pt = t.In(n - 1).Elem()
		}
		av, err := argValue(a, pt)
		if err != nil {
			return nil, fmt.Errorf("call %s: argument %d: %w", callableName(root), i, err)
		}
		in = append(in, av)
	}
	if padKeywords {
		in = append(in, reflect.Zero(t.In(n-1)))
	}
	return mapResults(t, v.Call(in))
}

// declaresKeywords reports whether fn's trailing parameter is a keyword
// parameter (options struct or catch-all map).
func declaresKeywords(fn any) bool {
	if hasKeywordCatchAll(fn) {
		return true
	}
	_, ok := optionsType(fn)
	return ok
}

// flatten unwraps nested Bounds, merging keyword sets so that outer bindings
// override inner ones.
func flatten(fn any, outer Metadata) (any, Metadata) {
	b, ok := fn.(*Bound)
	if !ok {
		return fn, outer
	}
	merged := b.kwargs.clone()
	for k, v := range outer {
		merged[k] = v
	}
	return flatten(b.fn, merged)
}

// argValue adapts a to parameter type pt, converting when necessary.
func argValue(a any, pt reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(pt), nil
	}
	av := reflect.ValueOf(a)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}
	if av.Type().ConvertibleTo(pt) {
		return av.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", a, pt)
}

// keywordValue materializes kwargs into the callable's trailing parameter:
// a copy of the map for the catch-all form, or a populated options struct.
// Keys matching no field are ignored (Get filters them; manual Bounds may
// still carry extras).
func keywordValue(pt reflect.Type, kwargs Metadata) (reflect.Value, error) {
	if pt == keywordCatchAllType {
		return reflect.ValueOf(map[string]any(kwargs.clone())), nil
	}
	if pt.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("callable declares no keyword parameters but %d were bound", len(kwargs))
	}
	sv := reflect.New(pt).Elem()
	for i := 0; i < pt.NumField(); i++ {
		f := pt.Field(i)
		if f.PkgPath != "" {
			continue
		}
		raw, ok := kwargs[keywordFieldName(f)]
		if !ok {
			continue
		}
		fv, err := argValue(raw, f.Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("keyword %q: %w", keywordFieldName(f), err)
		}
		sv.Field(i).Set(fv)
	}
	return sv, nil
}

// mapResults converts reflect call results to (value, error).
func mapResults(t reflect.Type, out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	var err error
	last := len(out)
	if t.Out(len(out) - 1).Implements(errType) {
		last--
		if e := out[last]; !e.IsNil() {
			err = e.Interface().(error)
		}
	}
	if last == 0 {
		return nil, err
	}
	return out[0].Interface(), err
}
