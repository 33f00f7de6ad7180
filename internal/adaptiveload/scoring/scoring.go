// Package scoring provides pure, side-effect-free functions that map one
// metric value to a score in [-1, 1] relative to a threshold captured
// internally by the function. Positive means the metric is healthy and RPS
// may increase; negative means unhealthy and RPS should back off.
package scoring

import (
	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

// ScoringFunction evaluates a single metric value against a threshold it
// captured at construction time.
type ScoringFunction interface {
	Evaluate(value float64) float64
}

// CategoryName is the plugin.Category under which scoring function
// factories register themselves.
const CategoryName plugin.Category = "scoring_function"

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Create resolves and instantiates a scoring function plugin from cfg using
// r: a thin wrapper over the generic registry that also type-asserts the
// result.
func Create(r *plugin.Registry, cfg plugin.Config) (ScoringFunction, error) {
	p, err := r.Create(CategoryName, cfg)
	if err != nil {
		return nil, err
	}
	sf, ok := p.(ScoringFunction)
	if !ok {
		return nil, &plugin.ConfigError{
			Category: CategoryName,
			Name:     cfg.Name,
			Message:  "registered plugin does not implement scoring.ScoringFunction",
		}
	}
	return sf, nil
}

// Register adds every built-in scoring function factory (linear, sigmoid)
// to r.
func Register(r *plugin.Registry) {
	r.MustRegister(CategoryName, linearFactory{})
	r.MustRegister(CategoryName, sigmoidFactory{})
}
