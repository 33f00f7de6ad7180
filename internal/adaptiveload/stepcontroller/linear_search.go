package stepcontroller

import (
	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

// LinearSearchTypeURL identifies LinearSearchConfig in the plugin registry.
const LinearSearchTypeURL = "adaptiveload.dev/stepcontroller/LinearSearchConfig"

// LinearSearchConfig parameterizes the linear-search step controller.
type LinearSearchConfig struct {
	RPSStep    uint32 `json:"rps_step"`
	MinimumRPS uint32 `json:"minimum_rps"`
	MaximumRPS uint32 `json:"maximum_rps"`
}

// linearSearchStepController walks current_rps up or down by a fixed step
// scaled by TotalWeightedScore, converging once it has seen an unhealthy
// iteration followed by a healthy one.
type linearSearchStepController struct {
	cfg LinearSearchConfig

	currentRPS          uint32
	latestCycleHealthy  bool
	reachedUnhealthyRPS bool
}

// NewLinearSearchStepController builds a linear-search controller starting
// at cfg.MinimumRPS.
func NewLinearSearchStepController(cfg LinearSearchConfig) StepController {
	return &linearSearchStepController{cfg: cfg, currentRPS: cfg.MinimumRPS}
}

func (c *linearSearchStepController) CurrentRPS() uint32 { return c.currentRPS }

func (c *linearSearchStepController) IsConverged() bool {
	return c.latestCycleHealthy && c.reachedUnhealthyRPS
}

func (c *linearSearchStepController) Update(result model.BenchmarkResult) {
	score := TotalWeightedScore(result)

	next := addScaledStep(c.currentRPS, c.cfg.RPSStep, score)
	c.currentRPS = clampRPS(next, c.cfg.MinimumRPS, c.cfg.MaximumRPS)

	if score < 0 {
		c.latestCycleHealthy = false
		c.reachedUnhealthyRPS = true
	} else {
		c.latestCycleHealthy = true
	}
}

type linearSearchFactory struct{}

func (linearSearchFactory) Name() string    { return "linear-search" }
func (linearSearchFactory) TypeURL() string { return LinearSearchTypeURL }
func (linearSearchFactory) NewConfig() interface{} {
	return &LinearSearchConfig{}
}

func (linearSearchFactory) Validate(cfg plugin.Config) error {
	parsed := &LinearSearchConfig{}
	if err := plugin.Decode(cfg, parsed); err != nil {
		return err
	}
	if parsed.MinimumRPS > parsed.MaximumRPS {
		return &plugin.ConfigError{
			Category: CategoryName,
			Name:     cfg.Name,
			Message:  "minimum_rps must be <= maximum_rps",
		}
	}
	if parsed.RPSStep == 0 {
		return &plugin.ConfigError{
			Category: CategoryName,
			Name:     cfg.Name,
			Message:  "rps_step must be > 0",
		}
	}
	return nil
}

func (linearSearchFactory) Create(cfg plugin.Config) (interface{}, error) {
	parsed := &LinearSearchConfig{}
	if err := plugin.Decode(cfg, parsed); err != nil {
		return nil, err
	}
	return NewLinearSearchStepController(*parsed), nil
}
