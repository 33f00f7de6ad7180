package metricsource

import "errors"

// ErrUnimplementedWindow is returned by a MetricsSource that has no notion
// of time-windowed retrieval when the caller required one.
var ErrUnimplementedWindow = errors.New("metrics source does not support time-windowed retrieval")

// UnsupportedMetricError is returned when a name outside a source's
// SupportedMetricNames is requested.
type UnsupportedMetricError struct {
	Source string
	Metric string
}

func (e *UnsupportedMetricError) Error() string {
	return "Metric '" + e.Metric + "' was not computed by the '" + e.Source + "' source."
}
