// Package metricsource provides the MetricsSource contract that supplies a
// named numeric metric on demand, and the built-in source that derives
// rate/latency metrics from a single benchmark artifact without any
// external I/O.
package metricsource

import (
	"context"
	"time"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

// CategoryName is the plugin.Category under which external metrics source
// factories register themselves. The built-in source is never registered
// here: it is constructed specially by the session, not through the
// generic config path.
const CategoryName plugin.Category = "metrics_source"

// Window scopes a metric query to a time range, for sources that have a
// notion of time (e.g. a monitoring backend queried over the benchmark's
// wall-clock window). Sources with no such notion may ignore it.
type Window struct {
	Start    time.Time
	Duration time.Duration
}

// MetricsSource supplies named numeric metrics on demand.
type MetricsSource interface {
	// GetMetric returns the named metric's current value. Implementations
	// that do not support time-windowed retrieval must return
	// ErrUnimplementedWindow if the caller requires one.
	GetMetric(ctx context.Context, name string, window Window) (float64, error)
	// SupportedMetricNames declares every name this source can supply.
	SupportedMetricNames() []string
}

// Create resolves and instantiates an external metrics source plugin from
// cfg using r.
func Create(r *plugin.Registry, cfg plugin.Config) (MetricsSource, error) {
	p, err := r.Create(CategoryName, cfg)
	if err != nil {
		return nil, err
	}
	src, ok := p.(MetricsSource)
	if !ok {
		return nil, &plugin.ConfigError{
			Category: CategoryName,
			Name:     cfg.Name,
			Message:  "registered plugin does not implement metricsource.MetricsSource",
		}
	}
	return src, nil
}

// Register adds every built-in external metrics source factory to r. The
// built-in (artifact-derived) source is intentionally not registered here;
// it is constructed directly from each iteration's artifact by the metric
// evaluator.
func Register(r *plugin.Registry) {
	r.MustRegister(CategoryName, jsonPathFactory{})
}
