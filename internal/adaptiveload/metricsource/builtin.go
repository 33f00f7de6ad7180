package metricsource

import (
	"context"
	"fmt"
	"math"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
)

// builtinSourceName is used in error messages and in MetricSpec.SourceName's
// "absent means builtin" convention.
const builtinSourceName = "builtin"

// BuiltinMetricNames is exactly the set of names the built-in source can
// supply.
var BuiltinMetricNames = []string{
	"achieved-rps",
	"attempted-rps",
	"send-rate",
	"success-rate",
	"latency-ns-min",
	"latency-ns-mean",
	"latency-ns-max",
	"latency-ns-pstdev",
	"latency-ns-mean-plus-1stdev",
	"latency-ns-mean-plus-2stdev",
	"latency-ns-mean-plus-3stdev",
}

// BuiltinSource derives achieved-rps, send-rate, success-rate, and latency
// statistics from a single benchmark artifact, without any external I/O. It
// is constructed fresh for every iteration from that iteration's artifact.
type BuiltinSource struct {
	values map[string]float64
	errs   map[string]error
}

// NewBuiltinSource computes every derived metric from artifact up front.
// Extraction never short-circuits: every metric that *can* be computed is
// computed even if others failed, and errors are recorded per-metric rather
// than failing the whole source.
func NewBuiltinSource(artifact model.Artifact) *BuiltinSource {
	values := make(map[string]float64)
	errs := make(map[string]error)

	extractCounterMetrics(artifact, values, errs)
	extractLatencyMetrics(artifact, values, errs)

	return &BuiltinSource{values: values, errs: errs}
}

// GetMetric implements MetricsSource. The window is ignored: the built-in
// source has no notion of time beyond the single artifact it was built from.
func (s *BuiltinSource) GetMetric(_ context.Context, name string, _ Window) (float64, error) {
	if err, failed := s.errs[name]; failed {
		return math.NaN(), err
	}
	if v, ok := s.values[name]; ok {
		return v, nil
	}
	return math.NaN(), &UnsupportedMetricError{Source: builtinSourceName, Metric: name}
}

// SupportedMetricNames implements MetricsSource.
func (s *BuiltinSource) SupportedMetricNames() []string {
	names := make([]string, len(BuiltinMetricNames))
	copy(names, BuiltinMetricNames)
	return names
}

// extractCounterMetrics computes achieved-rps, attempted-rps, send-rate and
// success-rate from the artifact's "global" result counters. It mirrors
// ExtractCounters in metrics_plugin_impl.cc, including its independent
// lookup of the "global" result.
func extractCounterMetrics(artifact model.Artifact, values map[string]float64, errs map[string]error) {
	global, ok := artifact.GlobalResult()
	if !ok {
		err := fmt.Errorf("result 'global' not found in benchmark artifact")
		for _, name := range []string{"attempted-rps", "achieved-rps", "send-rate", "success-rate"} {
			errs[name] = err
		}
		return
	}

	durationS := global.ExecutionDuration.Seconds()
	workers := float64(artifact.WorkerCount())
	totalSpecified := float64(artifact.Options.RequestsPerSecond) * durationS * workers

	sent, sentOK := global.Counters["upstream_rq_total"]
	twoXX, twoXXOK := global.Counters["benchmark.http_2xx"]

	var sentErr, twoXXErr error
	if !sentOK {
		sentErr = fmt.Errorf("counter 'upstream_rq_total' not found in benchmark result")
	}
	if !twoXXOK {
		twoXXErr = fmt.Errorf("counter 'benchmark.http_2xx' not found in benchmark result")
	}

	if durationS > 0 {
		values["attempted-rps"] = totalSpecified / durationS
		if sentOK {
			values["achieved-rps"] = float64(sent) / durationS
		} else {
			errs["achieved-rps"] = sentErr
		}
	} else {
		zeroDurationErr := fmt.Errorf("benchmark result has zero execution duration")
		errs["attempted-rps"] = zeroDurationErr
		errs["achieved-rps"] = zeroDurationErr
	}

	if totalSpecified > 0 {
		if sentOK {
			values["send-rate"] = float64(sent) / totalSpecified
		} else {
			errs["send-rate"] = sentErr
		}
	} else {
		values["send-rate"] = 0
	}

	if sentOK && sent > 0 {
		if twoXXOK {
			values["success-rate"] = float64(twoXX) / float64(sent)
		} else {
			errs["success-rate"] = twoXXErr
		}
	} else {
		values["success-rate"] = 0
	}
}

// extractLatencyMetrics computes the latency-ns-* metrics from the
// "benchmark_http_client.request_to_response" statistic of the artifact's
// "global" result. Mirrors ExtractStatistics in metrics_plugin_impl.cc.
func extractLatencyMetrics(artifact model.Artifact, values map[string]float64, errs map[string]error) {
	latencyNames := []string{
		"latency-ns-min", "latency-ns-mean", "latency-ns-max", "latency-ns-pstdev",
		"latency-ns-mean-plus-1stdev", "latency-ns-mean-plus-2stdev", "latency-ns-mean-plus-3stdev",
	}

	global, ok := artifact.GlobalResult()
	if !ok {
		err := fmt.Errorf("result 'global' not found in benchmark artifact")
		for _, name := range latencyNames {
			errs[name] = err
		}
		return
	}

	stat, ok := global.Statistics["benchmark_http_client.request_to_response"]
	if !ok {
		err := fmt.Errorf("statistic 'benchmark_http_client.request_to_response' not found in benchmark result")
		for _, name := range latencyNames {
			errs[name] = err
		}
		return
	}

	values["latency-ns-min"] = stat.Min
	values["latency-ns-mean"] = stat.Mean
	values["latency-ns-max"] = stat.Max
	values["latency-ns-pstdev"] = stat.PStdev
	values["latency-ns-mean-plus-1stdev"] = stat.Mean + stat.PStdev
	values["latency-ns-mean-plus-2stdev"] = stat.Mean + 2*stat.PStdev
	values["latency-ns-mean-plus-3stdev"] = stat.Mean + 3*stat.PStdev
}
