// Package registry provides a name-to-callable registry: a lookup table that
// associates string keys with Go callables plus arbitrary metadata. It decouples
// "what step to run" from "how to find its implementation", so pipelines can be
// assembled from step names (see the config and pipeline packages).
//
// Register callables directly or via the two-phase Registrar form:
//
//	reg := registry.New("string")
//	reg.MustRegister(strip)                                  // name derived: "strip"
//	reg.MustRegister(getWord,
//		registry.WithName("getword-1"),
//		registry.WithMetadata(registry.Metadata{"index": 1}))
//
//	register := reg.Registrar(registry.WithName("getword-0"),
//		registry.WithMetadata(registry.Metadata{"index": 0}))
//	register(getWord)
//
// Get returns a callable with selected keyword arguments pre-applied but not
// invoked. A callable declares keyword parameters through the exported fields of
// a trailing struct parameter (or accepts any keyword set through a trailing
// map[string]any):
//
//	type GetWordOptions struct{ Index int }
//	func getWord(x string, opts GetWordOptions) string {
//		return strings.Split(x, " ")[opts.Index]
//	}
//
// With WithBindMetadata, an entry's metadata is merged into the keyword set on
// Get (caller overrides win). Keys that match no keyword parameter are dropped
// silently, so metadata used for tagging never breaks a strict callable. Invoke
// the result with Call:
//
//	fn, _ := reg.Get("getword-1", nil)
//	out, _ := registry.Call(fn, "only way to be sure")  // "way"
package registry
