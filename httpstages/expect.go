package httpstages

import (
	"fmt"
	"reflect"
)

// ExpectOptions are the keyword parameters of ExpectField: the object field to
// inspect and the value it must stringify to.
type ExpectOptions struct {
	Field string
	Want  string
}

// ExpectField checks that v is a JSON object whose opts.Field stringifies to
// opts.Want, and passes v through unchanged. Use after ParseJSON to verify a
// response (e.g. field "status", want "ok"); a mismatch fails the pipeline.
func ExpectField(v interface{}, opts ExpectOptions) (interface{}, error) {
	if opts.Field == "" {
		return nil, fmt.Errorf("expect: field keyword required")
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expect: input must be a JSON object, got %T", v)
	}
	got, ok := m[opts.Field]
	if !ok {
		return nil, fmt.Errorf("expect: field %q missing", opts.Field)
	}
	if fmt.Sprintf("%v", got) != opts.Want {
		return nil, fmt.Errorf("expect: field %q is %v, want %s", opts.Field, got, opts.Want)
	}
	return v, nil
}

// ExpectEqual returns a callable that checks its input equals expected using
// reflect.DeepEqual and passes it through unchanged.
func ExpectEqual(expected interface{}) func(v interface{}) (interface{}, error) {
	return func(v interface{}) (interface{}, error) {
		if !reflect.DeepEqual(v, expected) {
			return nil, fmt.Errorf("expect: got %v, want %v", v, expected)
		}
		return v, nil
	}
}
