// Package testsupport builds synthetic model.Artifact values for tests,
// using HdrHistogram-backed latency aggregation so test fixtures exercise
// the same statistic shape the built-in metrics source consumes in
// production.
package testsupport

import (
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
)

// LatencyRecorder accumulates sample latencies (in nanoseconds) into an HDR
// histogram and converts them into a model.Statistic, spanning a 1ns-1hour
// range at 3 significant figures.
type LatencyRecorder struct {
	hist *hdrhistogram.Histogram
}

// NewLatencyRecorder returns an empty recorder spanning 1 nanosecond to 1
// hour at 3 significant figures.
func NewLatencyRecorder() *LatencyRecorder {
	return &LatencyRecorder{
		hist: hdrhistogram.New(1, int64(time.Hour.Nanoseconds()), 3),
	}
}

// Record adds one latency sample.
func (r *LatencyRecorder) Record(latency time.Duration) {
	_ = r.hist.RecordValue(latency.Nanoseconds())
}

// Statistic converts the accumulated samples into a model.Statistic with
// population standard deviation, in nanoseconds.
func (r *LatencyRecorder) Statistic() model.Statistic {
	return model.Statistic{
		Min:    float64(r.hist.Min()),
		Mean:   r.hist.Mean(),
		Max:    float64(r.hist.Max()),
		PStdev: r.hist.StdDev(),
	}
}

// ArtifactBuilder assembles a model.Artifact one "global" counter/statistic
// at a time, for tests that want to exercise the built-in metrics source or
// a full session without standing up a real load generator.
type ArtifactBuilder struct {
	rps      uint32
	duration time.Duration
	counters map[string]int64
	recorder *LatencyRecorder
}

// NewArtifactBuilder starts a builder for an artifact requested at rps over
// duration.
func NewArtifactBuilder(rps uint32, duration time.Duration) *ArtifactBuilder {
	return &ArtifactBuilder{
		rps:      rps,
		duration: duration,
		counters: make(map[string]int64),
		recorder: NewLatencyRecorder(),
	}
}

// WithCounter sets a named counter on the "global" result, e.g.
// "upstream_rq_total" or "benchmark.http_2xx".
func (b *ArtifactBuilder) WithCounter(name string, value int64) *ArtifactBuilder {
	b.counters[name] = value
	return b
}

// WithLatencySample records one request_to_response latency sample.
func (b *ArtifactBuilder) WithLatencySample(latency time.Duration) *ArtifactBuilder {
	b.recorder.Record(latency)
	return b
}

// Build returns the assembled artifact, with a single "global" result.
func (b *ArtifactBuilder) Build() model.Artifact {
	return model.Artifact{
		Options: model.BenchmarkOptions{RequestsPerSecond: b.rps, Duration: b.duration},
		Results: []model.Result{
			{
				Name:              "global",
				ExecutionDuration: b.duration,
				Counters:          b.counters,
				Statistics: map[string]model.Statistic{
					"benchmark_http_client.request_to_response": b.recorder.Statistic(),
				},
			},
		},
	}
}
