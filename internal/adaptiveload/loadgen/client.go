// Package loadgen defines the thin contract between the session driver and
// whatever remote mechanism actually generates load and returns a benchmark
// artifact. This package specifies only the interface and its error
// taxonomy; no concrete load generator lives here.
package loadgen

import (
	"context"
	"fmt"
	"time"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
)

// StatusCode classifies a load-generator transport failure.
type StatusCode int

const (
	StatusUnknown StatusCode = iota
	StatusUnavailable
	StatusInternal
	StatusDeadlineExceeded
)

func (c StatusCode) String() string {
	switch c {
	case StatusUnavailable:
		return "Unavailable"
	case StatusInternal:
		return "Internal"
	case StatusDeadlineExceeded:
		return "DeadlineExceeded"
	default:
		return "Unknown"
	}
}

// TransportError reports a failure to obtain exactly one benchmark artifact
// from the load generator: a timeout, a connection drop, or a malformed
// response (zero or more than one artifact returned).
type TransportError struct {
	Code    StatusCode
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("load generator: %s: %s", e.Code, e.Message)
}

// Client performs exactly one benchmark and returns its artifact. Real
// implementations wrap whatever RPC or process-control mechanism the load
// generator exposes; this package ships none.
type Client interface {
	// PerformBenchmark overrides options.Duration with duration, leaving
	// RPS untouched, and blocks until the load generator returns a single
	// artifact or PerformBenchmark returns a *TransportError.
	PerformBenchmark(ctx context.Context, options model.BenchmarkOptions, duration time.Duration) (model.Artifact, error)
}
