package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage is a single step in a pipeline. It receives the output of the previous
// stage (or the source) and returns the input for the next stage.
type Stage func(ctx context.Context, input interface{}) (interface{}, error)

// ConvertFunc converts value of type A to type B. Used by Transform to build a stage.
type ConvertFunc[A, B any] func(ctx context.Context, a A) (B, error)

// Transform returns a stage that converts the previous stage's output (type A) to type B.
// Use it between stages: stage1 | Transform(convert) | stage2, where stage1 outputs A
// and stage2 expects B.
func Transform[A, B any](convert ConvertFunc[A, B]) Stage {
	return func(ctx context.Context, input interface{}) (interface{}, error) {
		a, ok := input.(A)
		if !ok {
			var zero A
			return nil, fmt.Errorf("transform: expected %T, got %T", zero, input)
		}
		return convert(ctx, a)
	}
}

// RetryPolicy configures how Retry re-runs a failing stage. Backoff is the fixed
// delay between attempts. If ShouldRetry is non-nil, only errors for which it
// returns true are retried; otherwise all errors are retried. Use
// RetryableErr(err) in a stage to mark an error as retryable and IsRetryable as
// the ShouldRetry predicate.
type RetryPolicy struct {
	MaxAttempts int // total attempts; values < 1 mean a single attempt
	Backoff     time.Duration
	ShouldRetry func(err error) bool
}

// Retryable marks err as retryable. Use with RetryPolicy.ShouldRetry so only
// these errors trigger a retry (e.g. transient failures), not permanent ones.
type Retryable struct{ Err error }

func (e *Retryable) Error() string { return e.Err.Error() }
func (e *Retryable) Unwrap() error { return e.Err }
func RetryableErr(err error) error { return &Retryable{Err: err} }
func IsRetryable(err error) bool   { return errors.As(err, new(*Retryable)) }

// Retry wraps a stage so that on retryable failure it is re-run in-process after
// policy.Backoff, up to policy.MaxAttempts total attempts. A non-retryable error
// (per ShouldRetry) propagates immediately; a cancelled context stops the wait.
func Retry(inner Stage, policy RetryPolicy) Stage {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return func(ctx context.Context, input interface{}) (interface{}, error) {
		var lastErr error
		for attempt := 1; ; attempt++ {
			out, err := inner(ctx, input)
			if err == nil {
				return out, nil
			}
			if policy.ShouldRetry != nil && !policy.ShouldRetry(err) {
				return nil, err
			}
			lastErr = err
			if attempt >= attempts {
				break
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(policy.Backoff):
			}
		}
		return nil, fmt.Errorf("retry: %d attempts: %w", attempts, lastErr)
	}
}

// Observer provides pre/post hooks for pipeline and stage execution so you can
// watch runs (logging, metrics, bookkeeping). BeforePipeline is called before
// any stage runs. BeforeStage/AfterStage are called around each stage (start/end,
// input/output, duration). AfterPipeline is called when the pipeline finishes
// (success or error).
type Observer interface {
	BeforePipeline(ctx context.Context, runID, name string, payload interface{}) error
	AfterPipeline(ctx context.Context, runID string, result interface{}, err error) error
	BeforeStage(ctx context.Context, runID string, stageIndex int, input interface{}) error
	AfterStage(ctx context.Context, runID string, stageIndex int, input, output interface{}, stageErr error, duration time.Duration) error
}

// MultiObserver combines observers; hooks are called in order and the first
// error stops the chain.
func MultiObserver(observers ...Observer) Observer {
	return multiObserver(observers)
}

type multiObserver []Observer

func (m multiObserver) BeforePipeline(ctx context.Context, runID, name string, payload interface{}) error {
	for _, o := range m {
		if err := o.BeforePipeline(ctx, runID, name, payload); err != nil {
			return err
		}
	}
	return nil
}

func (m multiObserver) AfterPipeline(ctx context.Context, runID string, result interface{}, err error) error {
	for _, o := range m {
		if hookErr := o.AfterPipeline(ctx, runID, result, err); hookErr != nil {
			return hookErr
		}
	}
	return nil
}

func (m multiObserver) BeforeStage(ctx context.Context, runID string, stageIndex int, input interface{}) error {
	for _, o := range m {
		if err := o.BeforeStage(ctx, runID, stageIndex, input); err != nil {
			return err
		}
	}
	return nil
}

func (m multiObserver) AfterStage(ctx context.Context, runID string, stageIndex int, input, output interface{}, stageErr error, duration time.Duration) error {
	for _, o := range m {
		if err := o.AfterStage(ctx, runID, stageIndex, input, output, stageErr, duration); err != nil {
			return err
		}
	}
	return nil
}

// RunOptions is optional and used to attach an Observer and optional RunID.
// If Observer is set and RunID is empty, a new UUID is generated for the run.
// StageOffset is added to each stage index when calling the Observer (use when
// running only a tail of a larger pipeline so the observer sees global indices).
type RunOptions struct {
	Observer    Observer
	RunID       string
	StageOffset int
}

// Pipeline runs a linear chain of stages (stage1 | stage2 | ...). Optionally
// Source can be set for standalone Run(ctx); when used inside a Sequence,
// the payload is piped in via RunWithInput and Source is ignored.
type Pipeline struct {
	Name   string
	Source func(ctx context.Context) (interface{}, error) // optional; used only by Run(ctx)
	Stages []Stage
}

// Run executes the pipeline: runs the source (if non-nil), then runs each stage in order.
// Returns the last stage's output or the first error. Use RunWithInput when the initial
// input is supplied by the caller.
func (p *Pipeline) Run(ctx context.Context) (interface{}, error) {
	var out interface{}
	var err error
	if p.Source != nil {
		out, err = p.Source(ctx)
		if err != nil {
			return nil, err
		}
	}
	return p.RunWithInput(ctx, out, nil)
}

// RunWithInput runs the pipeline's stages starting with the given input. The payload
// is piped to the first stage; each stage's output is the next stage's input.
// Returns the last stage's output or the first error.
// If opts is non-nil and opts.Observer is set, pre/post hooks are called for the
// pipeline and each stage.
func (p *Pipeline) RunWithInput(ctx context.Context, input interface{}, opts *RunOptions) (interface{}, error) {
	if opts == nil || opts.Observer == nil {
		return p.runStages(ctx, input, nil, "", 0)
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	if err := opts.Observer.BeforePipeline(ctx, runID, p.Name, input); err != nil {
		return nil, fmt.Errorf("before pipeline: %w", err)
	}
	result, err := p.runStages(ctx, input, opts.Observer, runID, opts.StageOffset)
	if postErr := opts.Observer.AfterPipeline(ctx, runID, result, err); postErr != nil {
		// Don't mask pipeline error
		if err == nil {
			err = fmt.Errorf("after pipeline: %w", postErr)
		}
	}
	return result, err
}

// runStages runs stages with optional observer hooks. stageOffset is added to
// the stage index when calling the observer.
func (p *Pipeline) runStages(ctx context.Context, input interface{}, obs Observer, runID string, stageOffset int) (interface{}, error) {
	out := input
	for i, stage := range p.Stages {
		globalIdx := i + stageOffset
		if obs != nil {
			if err := obs.BeforeStage(ctx, runID, globalIdx, out); err != nil {
				return nil, fmt.Errorf("before stage %d: %w", globalIdx, err)
			}
		}
		start := time.Now()
		next, stageErr := stage(ctx, out)
		duration := time.Since(start)
		if obs != nil {
			if postErr := obs.AfterStage(ctx, runID, globalIdx, out, next, stageErr, duration); postErr != nil {
				if stageErr == nil {
					stageErr = fmt.Errorf("after stage: %w", postErr)
				}
			}
		}
		if stageErr != nil {
			return nil, fmt.Errorf("stage %d: %w", globalIdx, stageErr)
		}
		out = next
	}
	return out, nil
}

// Sequence runs multiple pipelines in order. The caller supplies a payload that
// is passed to every pipeline: each pipeline receives the same source payload,
// not the previous pipeline's output. Stops on first error (like shell &&).
type Sequence struct {
	Name      string
	Pipelines []*Pipeline
}

// Run executes the sequence with the given payload. The payload is passed to
// each pipeline as its input (payload → pipeline1, payload → pipeline2, …).
// Returns the last pipeline's result when all succeed, or the first error.
// If opts is non-nil and opts.Observer is set, hooks are called for the sequence as
// a whole and for each stage (stage indices are global across all pipelines).
func (s *Sequence) Run(ctx context.Context, payload interface{}, opts *RunOptions) (interface{}, error) {
	if opts == nil || opts.Observer == nil {
		return s.runPipelines(ctx, payload, nil, "")
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	if err := opts.Observer.BeforePipeline(ctx, runID, s.Name, payload); err != nil {
		return nil, fmt.Errorf("before pipeline: %w", err)
	}
	result, err := s.runPipelines(ctx, payload, opts.Observer, runID)
	if postErr := opts.Observer.AfterPipeline(ctx, runID, result, err); postErr != nil {
		if err == nil {
			err = fmt.Errorf("after pipeline: %w", postErr)
		}
	}
	return result, err
}

// runPipelines runs each pipeline in order; each receives the same payload.
// With an observer, stage indices continue across pipelines.
func (s *Sequence) runPipelines(ctx context.Context, payload interface{}, obs Observer, runID string) (interface{}, error) {
	var last interface{}
	globalStageIndex := 0
	for i, p := range s.Pipelines {
		var result interface{}
		var err error
		if obs != nil {
			result, err = p.runStages(ctx, payload, obs, runID, globalStageIndex)
			globalStageIndex += len(p.Stages)
		} else {
			result, err = p.RunWithInput(ctx, payload, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("pipeline %d (%s): %w", i, p.Name, err)
		}
		last = result
	}
	return last, nil
}
