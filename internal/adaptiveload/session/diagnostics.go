package session

import (
	"fmt"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/stepcontroller"
)

// logIteration writes one progress line to d.diagnostic for an adjusting
// iteration, in the format:
//
//	iteration=<n> rps=<current_rps> score=<weighted_score> converged=<bool> elapsed=<seconds>
//
// A nil diagnostic sink is a no-op; the stream is optional. The
// testing-stage benchmark is not an adjusting iteration and carries no
// step-controller score or convergence state, so it is reported separately.
func (d *Driver) logIteration(index int, result model.BenchmarkResult, testingStage bool) {
	if d.diagnostic == nil {
		return
	}
	if testingStage {
		fmt.Fprintf(d.diagnostic, "stage=testing rps=%d status=%s\n", result.RequestedRPS, result.Status)
		return
	}

	score := stepcontroller.TotalWeightedScore(result)
	converged := d.stepController.IsConverged()
	elapsed := d.clock.Now().Sub(d.sessionStart).Seconds()

	fmt.Fprintf(d.diagnostic, "iteration=%d rps=%d score=%.4f converged=%t elapsed=%.3f\n",
		index, result.RequestedRPS, score, converged, elapsed)
}
