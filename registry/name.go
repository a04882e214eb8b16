package registry

import (
	"reflect"
	"runtime"
	"strings"
)

// isCallable reports whether fn can be registered: a non-nil Go func, or a
// *Bound wrapping one.
func isCallable(fn any) bool {
	if b, ok := fn.(*Bound); ok {
		return b != nil && isCallable(b.fn)
	}
	v := reflect.ValueOf(fn)
	return v.Kind() == reflect.Func && !v.IsNil()
}

// callableName derives a registration name from fn's declared name. A *Bound
// derives from the callable it wraps, so pre-bound forms register under the
// inner name. Method values reduce to the method name, closures to their
// compiler-assigned segment (funcN), so anonymous funcs are better registered
// with WithName. Returns "" when no name can be derived.
func callableName(fn any) string {
	if b, ok := fn.(*Bound); ok {
		return callableName(b.fn)
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	// e.g. "github.com/x/pkg.toUpper", "pkg.(*GetWord).Call-fm", "pkg.TestFoo.func2"
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.Trim(name, "()*")
}
