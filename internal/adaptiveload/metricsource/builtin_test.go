package metricsource_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/metricsource"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
)

func sampleArtifact() model.Artifact {
	return model.Artifact{
		Options: model.BenchmarkOptions{RequestsPerSecond: 100, Duration: 10 * time.Second},
		Results: []model.Result{
			{
				Name:              "global",
				ExecutionDuration: 10 * time.Second,
				Counters: map[string]int64{
					"upstream_rq_total":   950,
					"benchmark.http_2xx":  940,
				},
				Statistics: map[string]model.Statistic{
					"benchmark_http_client.request_to_response": {
						Min: 100, Mean: 500, Max: 5000, PStdev: 50,
					},
				},
			},
		},
	}
}

func TestBuiltinSource_ComputesRatesAndLatency(t *testing.T) {
	src := metricsource.NewBuiltinSource(sampleArtifact())

	attempted, err := src.GetMetric(context.Background(), "attempted-rps", metricsource.Window{})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, attempted, 1e-9)

	achieved, err := src.GetMetric(context.Background(), "achieved-rps", metricsource.Window{})
	require.NoError(t, err)
	assert.InDelta(t, 95.0, achieved, 1e-9)

	sendRate, err := src.GetMetric(context.Background(), "send-rate", metricsource.Window{})
	require.NoError(t, err)
	assert.InDelta(t, 0.95, sendRate, 1e-9)

	successRate, err := src.GetMetric(context.Background(), "success-rate", metricsource.Window{})
	require.NoError(t, err)
	assert.InDelta(t, 940.0/950.0, successRate, 1e-9)

	mean, err := src.GetMetric(context.Background(), "latency-ns-mean", metricsource.Window{})
	require.NoError(t, err)
	assert.Equal(t, 500.0, mean)

	plus2, err := src.GetMetric(context.Background(), "latency-ns-mean-plus-2stdev", metricsource.Window{})
	require.NoError(t, err)
	assert.Equal(t, 600.0, plus2)
}

func TestBuiltinSource_ZeroDurationFailsOnlyRateMetrics(t *testing.T) {
	artifact := sampleArtifact()
	result := artifact.Results[0]
	result.ExecutionDuration = 0
	artifact.Results = []model.Result{result}

	src := metricsource.NewBuiltinSource(artifact)

	_, err := src.GetMetric(context.Background(), "attempted-rps", metricsource.Window{})
	assert.Error(t, err)
	_, err = src.GetMetric(context.Background(), "achieved-rps", metricsource.Window{})
	assert.Error(t, err)

	// send-rate and success-rate still compute without error. send-rate's
	// denominator (rps * duration * workers) is zero here, so it is 0;
	// success-rate does not depend on duration.
	sendRate, err := src.GetMetric(context.Background(), "send-rate", metricsource.Window{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sendRate)

	successRate, err := src.GetMetric(context.Background(), "success-rate", metricsource.Window{})
	require.NoError(t, err)
	assert.InDelta(t, 940.0/950.0, successRate, 1e-9)
}

func TestBuiltinSource_MissingGlobalResultFailsEverything(t *testing.T) {
	artifact := model.Artifact{
		Options: model.BenchmarkOptions{RequestsPerSecond: 100, Duration: 10 * time.Second},
		Results: []model.Result{{Name: "worker-0"}},
	}
	src := metricsource.NewBuiltinSource(artifact)

	for _, name := range metricsource.BuiltinMetricNames {
		_, err := src.GetMetric(context.Background(), name, metricsource.Window{})
		assert.Error(t, err, name)
	}
}

func TestBuiltinSource_MissingLatencyStatisticFailsOnlyLatencyMetrics(t *testing.T) {
	artifact := sampleArtifact()
	result := artifact.Results[0]
	result.Statistics = nil
	artifact.Results = []model.Result{result}

	src := metricsource.NewBuiltinSource(artifact)

	_, err := src.GetMetric(context.Background(), "achieved-rps", metricsource.Window{})
	assert.NoError(t, err)

	_, err = src.GetMetric(context.Background(), "latency-ns-mean", metricsource.Window{})
	assert.Error(t, err)
}

func TestBuiltinSource_ZeroTotalSpecifiedSendRateIsZero(t *testing.T) {
	artifact := model.Artifact{
		Options: model.BenchmarkOptions{RequestsPerSecond: 0, Duration: 10 * time.Second},
		Results: []model.Result{
			{
				Name:              "global",
				ExecutionDuration: 10 * time.Second,
				Counters:          map[string]int64{"upstream_rq_total": 0, "benchmark.http_2xx": 0},
				Statistics: map[string]model.Statistic{
					"benchmark_http_client.request_to_response": {},
				},
			},
		},
	}
	src := metricsource.NewBuiltinSource(artifact)

	sendRate, err := src.GetMetric(context.Background(), "send-rate", metricsource.Window{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sendRate)

	successRate, err := src.GetMetric(context.Background(), "success-rate", metricsource.Window{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, successRate)
}

func TestBuiltinSource_UnknownNameIsUnsupported(t *testing.T) {
	src := metricsource.NewBuiltinSource(sampleArtifact())
	_, err := src.GetMetric(context.Background(), "cpu-usage", metricsource.Window{})
	require.Error(t, err)
	var unsupported *metricsource.UnsupportedMetricError
	assert.ErrorAs(t, err, &unsupported)
}

func TestBuiltinSource_SupportedMetricNamesMatchesBuiltinList(t *testing.T) {
	src := metricsource.NewBuiltinSource(sampleArtifact())
	assert.ElementsMatch(t, metricsource.BuiltinMetricNames, src.SupportedMetricNames())
}
