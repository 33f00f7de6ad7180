// Package stepcontroller provides the pluggable search strategies that hold
// the current RPS, ingest a scored benchmark result, and decide whether the
// search has converged.
package stepcontroller

import (
	"math"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

// CategoryName is the plugin.Category under which step controller factories
// register themselves.
const CategoryName plugin.Category = "step_controller"

// StepController holds the current candidate RPS, ingests each iteration's
// scored result, and signals when the search has converged.
type StepController interface {
	CurrentRPS() uint32
	IsConverged() bool
	Update(result model.BenchmarkResult)
}

// Create resolves and instantiates a step controller plugin from cfg using r.
func Create(r *plugin.Registry, cfg plugin.Config) (StepController, error) {
	p, err := r.Create(CategoryName, cfg)
	if err != nil {
		return nil, err
	}
	sc, ok := p.(StepController)
	if !ok {
		return nil, &plugin.ConfigError{
			Category: CategoryName,
			Name:     cfg.Name,
			Message:  "registered plugin does not implement stepcontroller.StepController",
		}
	}
	return sc, nil
}

// Register adds every built-in step controller factory to r.
func Register(r *plugin.Registry) {
	r.MustRegister(CategoryName, linearSearchFactory{})
	r.MustRegister(CategoryName, binarySearchFactory{})
}

// TotalWeightedScore combines every scored MetricEvaluation in result into
// the single signal step controllers consume:
//
//	score = Σ wᵢ·sᵢ / Σ wᵢ
//
// where sᵢ is +1/-1 for a WITHIN/OUTSIDE simple status, or the continuous
// threshold_score when the simple status is UNKNOWN. Evaluations lacking a
// threshold (informational metrics) or that failed to fetch do not
// participate. A zero total weight, or a non-finite result, yields 0 —
// treated as healthy so a misconfigured or all-informational metric set
// never stalls the search.
func TotalWeightedScore(result model.BenchmarkResult) float64 {
	var weightedSum, totalWeight float64
	for _, eval := range result.Evaluations {
		if !eval.HasScore() {
			continue
		}
		weight := 1.0
		if eval.Threshold.Weight != nil {
			weight = *eval.Threshold.Weight
		}

		signal := eval.Check.ThresholdScore
		switch eval.Check.SimpleStatus {
		case model.StatusWithin:
			signal = 1
		case model.StatusOutside:
			signal = -1
		}
		if math.IsNaN(signal) {
			signal = 0
		}

		weightedSum += weight * signal
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	score := weightedSum / totalWeight
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}

// clampRPS clamps v to [min, max], treating an inverted range as min==max at
// min (config validation, not the step controller, is responsible for
// rejecting min > max).
func clampRPS(v, min, max uint32) uint32 {
	if max < min {
		max = min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// addScaledStep applies rps + step*score, in floating point to preserve
// fractional scores, then rounds to the nearest uint32 and floors at zero.
func addScaledStep(rps uint32, step uint32, score float64) uint32 {
	next := float64(rps) + float64(step)*score
	if next <= 0 {
		return 0
	}
	return uint32(math.Round(next))
}
