// Package config builds pipelines from human-readable YAML or TOML.
//
// Stage names reference callables registered in a registry.Registry; a stage's
// optional `with` map overrides the callable's registered metadata, so one
// registered function can serve several configured stages:
//
//	name: extract
//	stages:
//	  - strip
//	  - name: getword
//	    with: {index: 1}
//	    timeout: 60s
//	    max_attempts: 3
//	  - toupper
//
// Build with BuildPipeline(registry, config, opts). Use BuildOptions.Sources
// when the config names a source, and BuildObserver for configured observers.
package config
