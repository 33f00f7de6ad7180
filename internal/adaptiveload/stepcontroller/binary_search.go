package stepcontroller

import (
	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

// BinarySearchTypeURL identifies BinarySearchConfig in the plugin registry.
const BinarySearchTypeURL = "adaptiveload.dev/stepcontroller/BinarySearchConfig"

// BinarySearchConfig parameterizes the binary-search step controller. It
// shares its shape with LinearSearchConfig, but RPSStep is unused by
// bisection; it is kept so the two controllers are interchangeable from a
// single config block.
type BinarySearchConfig struct {
	RPSStep    uint32 `json:"rps_step"`
	MinimumRPS uint32 `json:"minimum_rps"`
	MaximumRPS uint32 `json:"maximum_rps"`
}

// binarySearchStepController bisects [bottom_rps, top_rps], narrowing
// toward the highest RPS that scores healthy, converging once the midpoint
// stops moving.
type binarySearchStepController struct {
	bottomRPS   uint32
	topRPS      uint32
	previousRPS uint32
	currentRPS  uint32
}

// NewBinarySearchStepController builds a binary-search controller starting
// at the midpoint of [cfg.MinimumRPS, cfg.MaximumRPS].
func NewBinarySearchStepController(cfg BinarySearchConfig) StepController {
	return &binarySearchStepController{
		bottomRPS:   cfg.MinimumRPS,
		topRPS:      cfg.MaximumRPS,
		previousRPS: 0,
		currentRPS:  midpoint(cfg.MinimumRPS, cfg.MaximumRPS),
	}
}

func (c *binarySearchStepController) CurrentRPS() uint32 { return c.currentRPS }

func (c *binarySearchStepController) IsConverged() bool {
	return c.previousRPS == c.currentRPS
}

func (c *binarySearchStepController) Update(result model.BenchmarkResult) {
	score := TotalWeightedScore(result)

	if score < 0 {
		c.topRPS = c.currentRPS
	} else {
		c.bottomRPS = c.currentRPS
	}

	c.previousRPS = c.currentRPS
	c.currentRPS = midpoint(c.bottomRPS, c.topRPS)
}

// midpoint is the floor of (bottom+top)/2, via integer division.
func midpoint(bottom, top uint32) uint32 {
	return (bottom + top) / 2
}

type binarySearchFactory struct{}

func (binarySearchFactory) Name() string    { return "binary-search" }
func (binarySearchFactory) TypeURL() string { return BinarySearchTypeURL }
func (binarySearchFactory) NewConfig() interface{} {
	return &BinarySearchConfig{}
}

func (binarySearchFactory) Validate(cfg plugin.Config) error {
	parsed := &BinarySearchConfig{}
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
	return nil
}

func (binarySearchFactory) Create(cfg plugin.Config) (interface{}, error) {
	parsed := &BinarySearchConfig{}
	if err := plugin.Decode(cfg, parsed); err != nil {
		return nil, err
	}
	return NewBinarySearchStepController(*parsed), nil
}
