package scoring

import (
	"math"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

// SigmoidTypeURL identifies SigmoidConfig within a plugin.Config envelope.
const SigmoidTypeURL = "adaptiveload.dev/scoring/SigmoidConfig"

// SigmoidConfig configures sigmoidScoringFunction:
// score = 1 - 2/(1+exp(-k*(value-threshold))), an upside-down sigmoid
// centered on threshold. K ~= 1/threshold is the recommended tuning point.
type SigmoidConfig struct {
	Threshold float64 `json:"threshold"`
	K         float64 `json:"k"`
}

// sigmoidScoringFunction asymptotes to +1 far below the threshold and -1 far
// above it, crossing zero exactly at the threshold.
type sigmoidScoringFunction struct {
	threshold float64
	k         float64
}

// Evaluate implements ScoringFunction. The result is already within [-1, 1]
// by construction, so no clamp is needed.
func (f sigmoidScoringFunction) Evaluate(value float64) float64 {
	return 1 - 2/(1+math.Exp(-f.k*(value-f.threshold)))
}

type sigmoidFactory struct{}

func (sigmoidFactory) Name() string           { return "sigmoid" }
func (sigmoidFactory) TypeURL() string        { return SigmoidTypeURL }
func (sigmoidFactory) NewConfig() interface{} { return &SigmoidConfig{} }

func (sigmoidFactory) Validate(cfg plugin.Config) error {
	var c SigmoidConfig
	if err := plugin.Decode(cfg, &c); err != nil {
		return err
	}
	if c.K == 0 {
		return &plugin.ConfigError{Category: CategoryName, Name: cfg.Name, Message: "k must be non-zero"}
	}
	return nil
}

func (sigmoidFactory) Create(cfg plugin.Config) (interface{}, error) {
	var c SigmoidConfig
	if err := plugin.Decode(cfg, &c); err != nil {
		return nil, err
	}
	if c.K == 0 {
		return nil, &plugin.ConfigError{Category: CategoryName, Name: cfg.Name, Message: "k must be non-zero"}
	}
	return sigmoidScoringFunction{threshold: c.Threshold, k: c.K}, nil
}
