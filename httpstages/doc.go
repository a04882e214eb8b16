// Package httpstages provides registerable HTTP callables: fetch a URL, parse
// the JSON response, and verify a field of the result.
//
// Register wires them into a registry so config-defined pipelines can use
// them by name, with request headers and expectations bound through metadata
// or a `with` map:
//
//	reg := registry.New("http", registry.WithBindMetadata())
//	httpstages.Register(reg, nil)
//
//	// stages:
//	//   - fetch
//	//   - parsejson
//	//   - name: expect-field
//	//     with: {field: status, want: ok}
package httpstages
