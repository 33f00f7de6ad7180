// Package model holds the data types shared by every stage of an adaptive
// load session: the benchmark artifact returned by a load generator, the
// scored evaluations produced from it, and the session-level spec and
// output that tie a run together.
//
// Nothing in this package blocks or mutates global state, and the only other
// adaptiveload package it depends on is plugin (for the plugin.Config
// envelope) — it exists so that scoring, metricsource,
// stepcontroller, evaluator and session can all refer to the same shapes
// without importing each other.
package model

import (
	"math"
	"time"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

// BenchmarkOptions mirrors the handful of load-generator options the
// adaptive search loop cares about. RequestsPerSecond is set by the step
// controller before each iteration; Duration is overridden by the caller of
// loadgen.Client.PerformBenchmark on every call (see loadgen package).
type BenchmarkOptions struct {
	RequestsPerSecond uint32
	Duration          time.Duration
}

// Statistic is a precomputed latency summary, in nanoseconds, as returned by
// a load generator for a single benchmark result. pstdev is the population
// standard deviation.
type Statistic struct {
	Min    float64
	Mean   float64
	Max    float64
	PStdev float64
}

// Result is one named result section of a benchmark Artifact: either the
// aggregate ("global") or one worker's contribution.
type Result struct {
	Name              string
	ExecutionDuration time.Duration
	Counters          map[string]int64
	Statistics        map[string]Statistic
}

// Artifact is the raw output of a single benchmark run, as returned by a
// load generator through loadgen.Client.PerformBenchmark. It is the sole
// input to the built-in metrics source.
type Artifact struct {
	Options BenchmarkOptions
	Results []Result
}

// GlobalResult returns the Result named "global", which the built-in metrics
// source treats as the benchmark's aggregate view.
func (a Artifact) GlobalResult() (Result, bool) {
	for _, r := range a.Results {
		if r.Name == "global" {
			return r, true
		}
	}
	return Result{}, false
}

// WorkerCount returns the number of worker threads that contributed to this
// artifact: 1 if there is only the aggregate result, otherwise the result
// count minus one (to discount the aggregate itself).
func (a Artifact) WorkerCount() int {
	if len(a.Results) <= 1 {
		return 1
	}
	return len(a.Results) - 1
}

// SimpleThresholdStatus is the coarse within/outside/unknown verdict recorded
// alongside a continuous threshold score.
type SimpleThresholdStatus int

const (
	// StatusUnknown means "use ThresholdCheckResult.ThresholdScore", not the sign of
	// a discrete verdict. It is also the status recorded for metrics that
	// failed to fetch or that carry no threshold at all.
	StatusUnknown SimpleThresholdStatus = iota
	StatusWithin
	StatusOutside
)

func (s SimpleThresholdStatus) String() string {
	switch s {
	case StatusWithin:
		return "WITHIN"
	case StatusOutside:
		return "OUTSIDE"
	default:
		return "UNKNOWN"
	}
}

// ThresholdSpec pairs a scoring function plugin configuration with an
// optional weight. The scoring function itself captures the threshold value
// internally (see scoring.ScoringFunction); ThresholdSpec only carries the
// plugin config used to build it and the weight used to combine it with
// other thresholded metrics.
type ThresholdSpec struct {
	ScoringFunction plugin.Config
	Weight          *float64
}

// MetricSpec names one metric to evaluate each iteration: which source
// supplies it (empty SourceName means the built-in source), and optionally
// the threshold used to score it. A MetricSpec with a nil Threshold is
// informational only — its value is recorded but never contributes to
// TotalWeightedScore.
type MetricSpec struct {
	Name       string
	SourceName string
	Threshold  *ThresholdSpec
}

// ThresholdCheckResult is the scored verdict for one metric evaluation.
type ThresholdCheckResult struct {
	SimpleStatus   SimpleThresholdStatus
	ThresholdScore float64
}

// MetricEvaluation is the outcome of fetching and (optionally) scoring one
// MetricSpec during one iteration.
type MetricEvaluation struct {
	Name      string
	Value     float64 // NaN if the metric could not be fetched
	Threshold *ThresholdSpec
	Check     ThresholdCheckResult
	Err       error // non-nil iff Value is NaN
}

// HasScore reports whether this evaluation participates in
// TotalWeightedScore: it must carry both a threshold and a successfully
// computed check result.
func (e MetricEvaluation) HasScore() bool {
	return e.Threshold != nil && e.Err == nil
}

// BenchmarkStatus is the terminal status of one benchmark iteration.
type BenchmarkStatus int

const (
	StatusOK BenchmarkStatus = iota
	StatusLoadGeneratorError
	StatusMetricError
)

func (s BenchmarkStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusLoadGeneratorError:
		return "LoadGeneratorError"
	case StatusMetricError:
		return "MetricError"
	default:
		return "Unknown"
	}
}

// BenchmarkResult is one iteration's scored outcome: the RPS that was
// requested, the raw artifact the load generator returned (absent on a
// LoadGeneratorError), and the ordered, index-aligned metric evaluations.
type BenchmarkResult struct {
	RequestedRPS uint32
	Artifact     *Artifact
	Evaluations  []MetricEvaluation
	Status       BenchmarkStatus
	Message      string
}

// MetricsSourceConfig names an external metrics source plugin instance by
// the name MetricSpec.SourceName will reference.
type MetricsSourceConfig struct {
	Name   string
	Plugin plugin.Config
}

// SessionSpec is the immutable input to a session.
type SessionSpec struct {
	TargetEndpoint    string
	BaseOptions       BenchmarkOptions
	AdjustingDuration time.Duration
	TestingDuration   time.Duration
	Deadline          time.Duration
	MetricSpecs       []MetricSpec
	MetricsSources    []MetricsSourceConfig
	StepController    plugin.Config
}

// SessionStatus is the terminal status of an entire session.
type SessionStatus int

const (
	SessionConverged SessionStatus = iota
	SessionDeadlineExceeded
	SessionError
)

func (s SessionStatus) String() string {
	switch s {
	case SessionConverged:
		return "Converged"
	case SessionDeadlineExceeded:
		return "DeadlineExceeded"
	case SessionError:
		return "Error"
	default:
		return "Unknown"
	}
}

// SessionOutput is the complete record of a session: the adjusting trail,
// the RPS the search converged on, the testing-stage validation result, and
// the terminal status.
type SessionOutput struct {
	AdjustingStageResults []BenchmarkResult
	ConvergedRPS          uint32
	TestingStageResult    *BenchmarkResult
	Status                SessionStatus
	Message               string
}

// NaN is a convenience for building a MetricEvaluation whose metric could
// not be fetched.
func NaN() float64 { return math.NaN() }
