package config

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dcshock/stepreg/pipeline"
	"github.com/dcshock/stepreg/registry"
)

// BuildOptions configures how a pipeline is built from config.
type BuildOptions struct {
	// Sources is consulted when PipelineConfig.Source is set. The built
	// pipeline's Source is the registered callable. Building fails if the
	// name is not registered.
	Sources *registry.Registry

	// Observers is consulted by BuildObserver for each name in
	// PipelineConfig.Observers.
	Observers map[string]pipeline.Observer
}

// BuildPipeline builds a pipeline.Pipeline from config, resolving each stage
// name through the registry. A stage's `with` map is passed to Registry.Get as
// metadata overrides, so the same registered callable can serve multiple stages
// with different options. Timeout and retry settings wrap the resolved stage.
func BuildPipeline(reg *registry.Registry, cfg *PipelineConfig, opts *BuildOptions) (*pipeline.Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	stages := make([]pipeline.Stage, 0, len(cfg.Stages))
	for i, ref := range cfg.Stages {
		if ref.Name == "" {
			return nil, fmt.Errorf("stage %d: name required", i)
		}
		fn, err := reg.Get(ref.Name, ref.With)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		stages = append(stages, wrapStage(pipeline.FromCallable(fn), ref))
	}
	p := &pipeline.Pipeline{Name: cfg.Name, Stages: stages}
	if err := setSource(p, cfg, opts); err != nil {
		return nil, err
	}
	return p, nil
}

func setSource(p *pipeline.Pipeline, cfg *PipelineConfig, opts *BuildOptions) error {
	if cfg.Source == "" {
		return nil
	}
	if opts == nil || opts.Sources == nil {
		return fmt.Errorf("source %q: BuildOptions.Sources not set", cfg.Source)
	}
	fn, err := opts.Sources.Get(cfg.Source, nil)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	p.Source = sourceFunc(fn)
	return nil
}

// sourceFunc adapts a registered callable to the pipeline Source shape.
func sourceFunc(fn interface{}) func(ctx context.Context) (interface{}, error) {
	if src, ok := fn.(func(context.Context) (interface{}, error)); ok {
		return src
	}
	return func(ctx context.Context) (interface{}, error) {
		return registry.Call(fn)
	}
}

// BuildObserver returns a pipeline.Observer for the config's Observers list by
// looking up each name in BuildOptions.Observers and combining them with
// pipeline.MultiObserver. If cfg.Observers is empty, returns (nil, nil); the
// caller can pass their own observer in RunOptions.
func BuildObserver(cfg *PipelineConfig, opts *BuildOptions) (pipeline.Observer, error) {
	if cfg == nil || len(cfg.Observers) == 0 {
		return nil, nil
	}
	if opts == nil || opts.Observers == nil {
		return nil, fmt.Errorf("observers configured but BuildOptions.Observers not set")
	}
	list := make([]pipeline.Observer, 0, len(cfg.Observers))
	for i, name := range cfg.Observers {
		obs, ok := opts.Observers[name]
		if !ok {
			return nil, fmt.Errorf("observer %d: %q not registered", i, name)
		}
		list = append(list, obs)
	}
	return pipeline.MultiObserver(list...), nil
}

func wrapStage(s pipeline.Stage, ref StageRef) pipeline.Stage {
	if ref.Timeout > 0 {
		s = pipeline.WithTimeout(s, ref.Timeout.Duration())
	}
	if ref.MaxAttempts > 1 {
		backoff := ref.Backoff.Duration()
		if backoff <= 0 {
			backoff = time.Second
		}
		s = pipeline.Retry(s, pipeline.RetryPolicy{
			MaxAttempts: ref.MaxAttempts,
			Backoff:     backoff,
			ShouldRetry: pipeline.IsRetryable,
		})
	}
	return s
}

// BuildAllPipelines builds a pipeline.Pipeline for each entry in multi. Keys are pipeline names.
// If a pipeline config's Name is empty, the map key is used as the pipeline name.
func BuildAllPipelines(reg *registry.Registry, multi *MultiPipelineConfig, opts *BuildOptions) (map[string]*pipeline.Pipeline, error) {
	if multi == nil {
		return nil, fmt.Errorf("MultiPipelineConfig is nil")
	}
	out := make(map[string]*pipeline.Pipeline, len(multi.Pipelines))
	for name, cfg := range multi.Pipelines {
		if cfg.Name == "" {
			cfg.Name = name
		}
		p, err := BuildPipeline(reg, &cfg, opts)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}

// BuildSequence builds a pipeline.Sequence from a sequence config by looking up the named pipelines
// in the built pipeline map. Each name in seq.Pipelines must exist in builtPipelines.
func BuildSequence(seq *SequenceConfig, builtPipelines map[string]*pipeline.Pipeline) (*pipeline.Sequence, error) {
	if seq == nil {
		return nil, fmt.Errorf("SequenceConfig is nil")
	}
	out := make([]*pipeline.Pipeline, 0, len(seq.Pipelines))
	for i, name := range seq.Pipelines {
		p, ok := builtPipelines[name]
		if !ok {
			return nil, fmt.Errorf("sequence %q pipeline %d: %q not in built pipelines", seq.Name, i, name)
		}
		out = append(out, p)
	}
	return &pipeline.Sequence{Name: seq.Name, Pipelines: out}, nil
}

// BuildAllSequences builds a pipeline.Sequence for each entry in multi.Sequences using the given built pipelines.
func BuildAllSequences(multi *MultiPipelineConfig, builtPipelines map[string]*pipeline.Pipeline) (map[string]*pipeline.Sequence, error) {
	if multi == nil || len(multi.Sequences) == 0 {
		return map[string]*pipeline.Sequence{}, nil
	}
	out := make(map[string]*pipeline.Sequence, len(multi.Sequences))
	for name, cfg := range multi.Sequences {
		if cfg.Name == "" {
			cfg.Name = name
		}
		seq, err := BuildSequence(&cfg, builtPipelines)
		if err != nil {
			return nil, fmt.Errorf("sequence %q: %w", name, err)
		}
		out[name] = seq
	}
	return out, nil
}

// PipelineConfigFromMap parses a single pipeline from a map (e.g. one key in a multi-pipeline YAML).
// The key is the pipeline name; the value is the stages list.
func PipelineConfigFromMap(name string, stages interface{}) (*PipelineConfig, error) {
	// Re-encode and decode so we can reuse StageRef unmarshaling
	data, err := yaml.Marshal(map[string]interface{}{"name": name, "stages": stages})
	if err != nil {
		return nil, err
	}
	return ParsePipelineConfig(data)
}
