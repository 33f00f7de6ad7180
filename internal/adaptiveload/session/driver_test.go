package session_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/clock"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/metricsource"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/scoring"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/session"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/stepcontroller"
)

func newRegistry() *plugin.Registry {
	r := plugin.NewRegistry()
	scoring.Register(r)
	metricsource.Register(r)
	stepcontroller.Register(r)
	return r
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// ceilingClient simulates a target whose success-rate holds at 1.0 up to
// ceilingRPS and drops to 0.8 above it.
type ceilingClient struct {
	ceilingRPS uint32
}

func (c ceilingClient) PerformBenchmark(_ context.Context, options model.BenchmarkOptions, duration time.Duration) (model.Artifact, error) {
	successRate := 1.0
	if options.RequestsPerSecond > c.ceilingRPS {
		successRate = 0.8
	}

	durationS := duration.Seconds()
	total := int64(float64(options.RequestsPerSecond) * durationS)
	success := int64(float64(total) * successRate)

	return model.Artifact{
		Options: model.BenchmarkOptions{RequestsPerSecond: options.RequestsPerSecond, Duration: duration},
		Results: []model.Result{{
			Name:              "global",
			ExecutionDuration: duration,
			Counters:          map[string]int64{"upstream_rq_total": total, "benchmark.http_2xx": success},
			Statistics: map[string]model.Statistic{
				"benchmark_http_client.request_to_response": {Min: 100, Mean: 200, Max: 1000, PStdev: 20},
			},
		}},
	}, nil
}

func successRateSpec(t *testing.T) []model.MetricSpec {
	return []model.MetricSpec{
		{
			Name: "success-rate",
			Threshold: &model.ThresholdSpec{
				ScoringFunction: plugin.Config{
					Name:        "linear",
					TypeURL:     scoring.LinearTypeURL,
					TypedConfig: mustJSON(t, scoring.LinearConfig{Threshold: 0.95, K: -10}),
				},
			},
		},
	}
}

func TestDriver_LinearSearchConvergesBelowCeiling(t *testing.T) {
	r := newRegistry()
	spec := model.SessionSpec{
		BaseOptions:       model.BenchmarkOptions{Duration: time.Second},
		AdjustingDuration: time.Second,
		TestingDuration:   2 * time.Second,
		Deadline:          time.Hour, // effectively unbounded for this test
		MetricSpecs:       successRateSpec(t),
		StepController: plugin.Config{
			Name: "linear-search",
			TypedConfig: mustJSON(t, stepcontroller.LinearSearchConfig{
				RPSStep: 50, MinimumRPS: 10, MaximumRPS: 1000,
			}),
		},
	}

	fakeClock := clock.NewFake(time.Unix(0, 0))
	driver, err := session.New(spec, ceilingClient{ceilingRPS: 500}, r, fakeClock, nil)
	require.NoError(t, err)

	output := driver.Run(context.Background())
	assert.Equal(t, model.SessionConverged, output.Status)
	assert.True(t, output.ConvergedRPS == 460 || output.ConvergedRPS == 510,
		"expected converged rps near the 500 ceiling, got %d", output.ConvergedRPS)
	assert.NotEmpty(t, output.AdjustingStageResults)
	assert.NotNil(t, output.TestingStageResult)
}

func TestDriver_BinarySearchConvergesNearCeiling(t *testing.T) {
	r := newRegistry()
	spec := model.SessionSpec{
		BaseOptions:       model.BenchmarkOptions{Duration: time.Second},
		AdjustingDuration: time.Second,
		TestingDuration:   2 * time.Second,
		Deadline:          time.Hour,
		MetricSpecs:       successRateSpec(t),
		StepController: plugin.Config{
			Name: "binary-search",
			TypedConfig: mustJSON(t, stepcontroller.BinarySearchConfig{
				MinimumRPS: 0, MaximumRPS: 1024,
			}),
		},
	}

	fakeClock := clock.NewFake(time.Unix(0, 0))
	driver, err := session.New(spec, ceilingClient{ceilingRPS: 700}, r, fakeClock, nil)
	require.NoError(t, err)

	output := driver.Run(context.Background())
	assert.Equal(t, model.SessionConverged, output.Status)
	assert.InDelta(t, 700, int(output.ConvergedRPS), 2)
}

// slowClock advances by step every time Now is called after the first read,
// simulating real wall-clock progress between iterations without a real
// clock.
type slowClock struct {
	fake *clock.Fake
	step time.Duration
}

func (s *slowClock) Now() time.Time {
	now := s.fake.Now()
	s.fake.Advance(s.step)
	return now
}

func TestDriver_DeadlineExceededPreservesTrail(t *testing.T) {
	r := newRegistry()
	spec := model.SessionSpec{
		BaseOptions:       model.BenchmarkOptions{Duration: time.Second},
		AdjustingDuration: time.Second,
		TestingDuration:   2 * time.Second,
		Deadline:          3 * time.Second,
		MetricSpecs:       successRateSpec(t),
		StepController: plugin.Config{
			Name: "linear-search",
			TypedConfig: mustJSON(t, stepcontroller.LinearSearchConfig{
				RPSStep: 1, MinimumRPS: 1, MaximumRPS: 10000,
			}),
		},
	}

	slow := &slowClock{fake: clock.NewFake(time.Unix(0, 0)), step: time.Second}
	driver, err := session.New(spec, ceilingClient{ceilingRPS: 10000}, r, slow, nil)
	require.NoError(t, err)

	output := driver.Run(context.Background())
	assert.Equal(t, model.SessionDeadlineExceeded, output.Status)
	assert.Nil(t, output.TestingStageResult)
	assert.Len(t, output.AdjustingStageResults, 3)
	// Every iteration stays healthy (ceiling 10000 is never approached), so
	// every evaluation is WITHIN, score=1 each time, and current_rps climbs
	// 1 -> 2 -> 3 -> 4 over the three updates.
	assert.Equal(t, uint32(4), output.ConvergedRPS)
}

func TestDriver_InformationalMetricDoesNotAffectScore(t *testing.T) {
	r := newRegistry()
	specs := append([]model.MetricSpec{{Name: "latency-ns-mean"}}, successRateSpec(t)...)
	spec := model.SessionSpec{
		BaseOptions:       model.BenchmarkOptions{Duration: time.Second},
		AdjustingDuration: time.Second,
		TestingDuration:   time.Second,
		Deadline:          time.Hour,
		MetricSpecs:       specs,
		StepController: plugin.Config{
			Name: "linear-search",
			TypedConfig: mustJSON(t, stepcontroller.LinearSearchConfig{
				RPSStep: 50, MinimumRPS: 10, MaximumRPS: 1000,
			}),
		},
	}

	fakeClock := clock.NewFake(time.Unix(0, 0))
	driver, err := session.New(spec, ceilingClient{ceilingRPS: 500}, r, fakeClock, nil)
	require.NoError(t, err)

	output := driver.Run(context.Background())
	require.NotEmpty(t, output.AdjustingStageResults)
	first := output.AdjustingStageResults[0]
	require.Len(t, first.Evaluations, 2)
	assert.Equal(t, model.StatusUnknown, first.Evaluations[0].Check.SimpleStatus)
	assert.False(t, first.Evaluations[0].HasScore())
}

func TestDriver_LoadGeneratorErrorTerminatesSession(t *testing.T) {
	r := newRegistry()
	spec := model.SessionSpec{
		BaseOptions:       model.BenchmarkOptions{Duration: time.Second},
		AdjustingDuration: time.Second,
		TestingDuration:   time.Second,
		Deadline:          time.Hour,
		MetricSpecs:       successRateSpec(t),
		StepController: plugin.Config{
			Name: "linear-search",
			TypedConfig: mustJSON(t, stepcontroller.LinearSearchConfig{
				RPSStep: 50, MinimumRPS: 10, MaximumRPS: 1000,
			}),
		},
	}

	fakeClock := clock.NewFake(time.Unix(0, 0))
	driver, err := session.New(spec, failingClient{}, r, fakeClock, nil)
	require.NoError(t, err)

	output := driver.Run(context.Background())
	assert.Equal(t, model.SessionError, output.Status)
	assert.Nil(t, output.TestingStageResult)
}

type failingClient struct{}

func (failingClient) PerformBenchmark(context.Context, model.BenchmarkOptions, time.Duration) (model.Artifact, error) {
	return model.Artifact{}, assertErr{}
}

type assertErr struct{}

func (assertErr) Error() string { return "load generator unavailable" }
