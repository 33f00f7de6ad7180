// Package session implements the Adjusting/Testing stage state machine that
// drives an adaptive load search to convergence (or a deadline) and runs
// the final validation benchmark.
package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/clock"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/evaluator"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/loadgen"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/metricsource"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/stepcontroller"
)

// Driver orchestrates a single adaptive load session: it owns the step
// controller and metric evaluator for the session's lifetime and is not
// reused across sessions.
type Driver struct {
	spec       model.SessionSpec
	client     loadgen.Client
	clock      clock.Source
	diagnostic io.Writer

	stepController stepcontroller.StepController
	evaluator      *evaluator.Evaluator

	sessionStart time.Time
}

// New resolves the step controller and every external metrics source named
// in spec against registry and returns a ready-to-run Driver. Those plugins
// are instantiated here, once, at session start. Scoring functions are not:
// the evaluator creates them from their configs on every evaluation, so a
// bad scoring-function config is reported as a metric error on each
// iteration rather than by New.
func New(spec model.SessionSpec, client loadgen.Client, registry *plugin.Registry, clk clock.Source, diagnostic io.Writer) (*Driver, error) {
	stepController, err := stepcontroller.Create(registry, spec.StepController)
	if err != nil {
		return nil, fmt.Errorf("resolving step controller: %w", err)
	}

	externalSources := make(map[string]metricsource.MetricsSource, len(spec.MetricsSources))
	for _, cfg := range spec.MetricsSources {
		src, err := metricsource.Create(registry, cfg.Plugin)
		if err != nil {
			return nil, fmt.Errorf("resolving metrics source %q: %w", cfg.Name, err)
		}
		externalSources[cfg.Name] = src
	}

	eval := evaluator.New(registry, spec.MetricSpecs, externalSources)

	return &Driver{
		spec:           spec,
		client:         client,
		clock:          clk,
		diagnostic:     diagnostic,
		stepController: stepController,
		evaluator:      eval,
	}, nil
}

// Run executes the full Adjusting/Testing state machine and returns the
// session's terminal output. It never panics on a load-generator or metric
// failure; those are captured in the returned SessionOutput's Status.
func (d *Driver) Run(ctx context.Context) model.SessionOutput {
	d.sessionStart = d.clock.Now()
	deadline := d.sessionStart.Add(d.spec.Deadline)

	trail, convergedRPS, adjustErr := d.runAdjustingStage(ctx, deadline)
	if adjustErr != nil {
		return model.SessionOutput{
			AdjustingStageResults: trail,
			ConvergedRPS:          convergedRPS,
			Status:                statusForError(adjustErr),
			Message:               adjustErr.Error(),
		}
	}

	testingResult := d.runIteration(ctx, convergedRPS, d.spec.TestingDuration)
	d.logIteration(len(trail), testingResult, true)

	if testingResult.Status != model.StatusOK {
		return model.SessionOutput{
			AdjustingStageResults: trail,
			ConvergedRPS:          convergedRPS,
			TestingStageResult:    &testingResult,
			Status:                model.SessionError,
			Message:               fmt.Sprintf("testing stage failed at converged RPS %d: %s", convergedRPS, testingResult.Message),
		}
	}

	return model.SessionOutput{
		AdjustingStageResults: trail,
		ConvergedRPS:          convergedRPS,
		TestingStageResult:    &testingResult,
		Status:                model.SessionConverged,
		Message:               "adaptive search converged",
	}
}

// runAdjustingStage loops benchmark → evaluate → step until the step
// controller converges or the deadline passes.
func (d *Driver) runAdjustingStage(ctx context.Context, deadline time.Time) ([]model.BenchmarkResult, uint32, error) {
	var trail []model.BenchmarkResult

	for {
		rps := d.stepController.CurrentRPS()
		result := d.runIteration(ctx, rps, d.spec.AdjustingDuration)
		trail = append(trail, result)

		if result.Status == model.StatusLoadGeneratorError {
			return trail, 0, fmt.Errorf("adjusting stage: load generator error at rps %d: %s", rps, result.Message)
		}

		d.stepController.Update(result)
		d.logIteration(len(trail)-1, result, false)

		if d.stepController.IsConverged() {
			return trail, d.stepController.CurrentRPS(), nil
		}
		if !d.clock.Now().Before(deadline) {
			return trail, d.stepController.CurrentRPS(), &DeadlineExceededError{Iterations: len(trail)}
		}
	}
}

// runIteration performs one benchmark at rps for duration and evaluates its
// metrics, producing a fully scored BenchmarkResult regardless of outcome.
func (d *Driver) runIteration(ctx context.Context, rps uint32, duration time.Duration) model.BenchmarkResult {
	options := d.spec.BaseOptions
	options.RequestsPerSecond = rps

	artifact, err := d.client.PerformBenchmark(ctx, options, duration)
	if err != nil {
		return model.BenchmarkResult{
			RequestedRPS: rps,
			Status:       model.StatusLoadGeneratorError,
			Message:      err.Error(),
		}
	}

	evaluations, err := d.evaluator.Evaluate(ctx, artifact)
	if err != nil {
		return model.BenchmarkResult{
			RequestedRPS: rps,
			Artifact:     &artifact,
			Status:       model.StatusMetricError,
			Message:      err.Error(),
		}
	}

	status := model.StatusOK
	for _, eval := range evaluations {
		if eval.Err != nil && eval.Threshold != nil {
			status = model.StatusMetricError
			break
		}
	}

	return model.BenchmarkResult{
		RequestedRPS: rps,
		Artifact:     &artifact,
		Evaluations:  evaluations,
		Status:       status,
	}
}

// DeadlineExceededError signals that the adjusting stage's wall-clock
// deadline passed before the step controller converged.
type DeadlineExceededError struct {
	Iterations int
}

func (e *DeadlineExceededError) Error() string {
	return fmt.Sprintf("adjusting stage deadline exceeded after %d iterations", e.Iterations)
}

func statusForError(err error) model.SessionStatus {
	if _, ok := err.(*DeadlineExceededError); ok {
		return model.SessionDeadlineExceeded
	}
	return model.SessionError
}
