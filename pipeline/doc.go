// Package pipeline provides single-value pipeline and sequence types. A Pipeline
// runs stages in order (optionally with its own Source for standalone use); each
// stage's output is the next stage's input. A Sequence runs multiple pipelines
// in order with the same payload semantics: the caller's payload is passed to every
// pipeline (payload → pipeline1, payload → pipeline2, …), not piped between pipelines.
//
// Stages are usually resolved by name from a registry (see the registry and
// config packages) and adapted with FromCallable:
//
//	fn, _ := reg.Get("strip", nil)
//	p := &Pipeline{Name: "clean", Stages: []Stage{FromCallable(fn)}}
//
// Optional pre/post hooks (Observer) let you watch runs for monitoring:
// BeforePipeline, BeforeStage/AfterStage (start/end, input/output, duration),
// AfterPipeline (result or error). Pass RunOptions{Observer: myObserver} to
// RunWithInput or Sequence.Run; a run ID is generated when none is given.
//
// For stages that can fail transiently, wrap them with Retry(stage, policy).
// Retry re-runs the stage in-process with a fixed backoff until it succeeds,
// MaxAttempts is reached, or the context is done. Use RetryableErr(err) and
// RetryPolicy.ShouldRetry (e.g. IsRetryable) to retry only marked errors.
package pipeline
