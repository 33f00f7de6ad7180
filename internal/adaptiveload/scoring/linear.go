package scoring

import (
	"fmt"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

// LinearTypeURL identifies LinearConfig within a plugin.Config envelope.
const LinearTypeURL = "adaptiveload.dev/scoring/LinearConfig"

// LinearConfig configures linearScoringFunction: score = clamp(k*(threshold-value), -1, 1).
type LinearConfig struct {
	// Threshold is the target value of the metric.
	Threshold float64 `json:"threshold"`
	// K scales the distance from the threshold into a score. Use this in
	// combination with the step controller's step size to produce
	// reasonable RPS increments for reasonable differences from threshold.
	K float64 `json:"k"`
}

// linearScoringFunction scores a metric as proportional to its distance
// below (positive) or above (negative) a threshold, clamped to [-1, 1].
type linearScoringFunction struct {
	threshold float64
	k         float64
}

// Evaluate implements ScoringFunction.
func (f linearScoringFunction) Evaluate(value float64) float64 {
	return clamp(f.k*(f.threshold-value), -1, 1)
}

type linearFactory struct{}

func (linearFactory) Name() string           { return "linear" }
func (linearFactory) TypeURL() string        { return LinearTypeURL }
func (linearFactory) NewConfig() interface{} { return &LinearConfig{} }

func (linearFactory) Validate(cfg plugin.Config) error {
	var c LinearConfig
	if err := plugin.Decode(cfg, &c); err != nil {
		return err
	}
	if c.K == 0 {
		return &plugin.ConfigError{Category: CategoryName, Name: cfg.Name, Message: "k must be non-zero"}
	}
	return nil
}

func (linearFactory) Create(cfg plugin.Config) (interface{}, error) {
	var c LinearConfig
	if err := plugin.Decode(cfg, &c); err != nil {
		return nil, err
	}
	if c.K == 0 {
		return nil, &plugin.ConfigError{Category: CategoryName, Name: cfg.Name, Message: fmt.Sprintf("k must be non-zero, got %v", c.K)}
	}
	return linearScoringFunction{threshold: c.Threshold, k: c.K}, nil
}
