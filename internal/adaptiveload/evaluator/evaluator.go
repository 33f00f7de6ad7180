// Package evaluator takes one iteration's benchmark artifact and the
// session's MetricSpecs, fetches each metric's value, scores it against its
// threshold, and produces an ordered, index-aligned slice of
// MetricEvaluation.
package evaluator

import (
	"context"
	"fmt"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/metricsource"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/scoring"
)

// builtinSourceName is the MetricSpec.SourceName convention for "use the
// built-in source" once a name is needed explicitly (an empty SourceName
// means the same thing).
const builtinSourceName = "builtin"

// Evaluator resolves MetricSpecs against a set of named external sources
// and the registry's scoring functions, rebuilding the built-in source
// fresh from each iteration's artifact.
type Evaluator struct {
	registry       *plugin.Registry
	metricSpecs    []model.MetricSpec
	externalByName map[string]metricsource.MetricsSource
}

// New builds an Evaluator. externalByName maps each MetricsSourceConfig.Name
// declared in the SessionSpec to its already-instantiated MetricsSource;
// metricSpecs is the SessionSpec's ordered metric list.
func New(registry *plugin.Registry, metricSpecs []model.MetricSpec, externalByName map[string]metricsource.MetricsSource) *Evaluator {
	return &Evaluator{registry: registry, metricSpecs: metricSpecs, externalByName: externalByName}
}

// Evaluate runs every configured MetricSpec against artifact, in order,
// returning a slice the same length as e.metricSpecs.
func (e *Evaluator) Evaluate(ctx context.Context, artifact model.Artifact) ([]model.MetricEvaluation, error) {
	builtin := metricsource.NewBuiltinSource(artifact)

	evaluations := make([]model.MetricEvaluation, len(e.metricSpecs))
	for i, spec := range e.metricSpecs {
		evaluations[i] = e.evaluateOne(ctx, spec, builtin)
	}
	return evaluations, nil
}

func (e *Evaluator) evaluateOne(ctx context.Context, spec model.MetricSpec, builtin *metricsource.BuiltinSource) model.MetricEvaluation {
	source, err := e.resolveSource(spec.SourceName, builtin)
	if err != nil {
		return failedEvaluation(spec, err)
	}

	value, err := source.GetMetric(ctx, spec.Name, metricsource.Window{})
	if err != nil {
		return failedEvaluation(spec, err)
	}

	eval := model.MetricEvaluation{
		Name:      spec.Name,
		Value:     value,
		Threshold: spec.Threshold,
	}

	if spec.Threshold == nil {
		// Informational only: recorded but never scored.
		return eval
	}

	scoringFn, err := scoring.Create(e.registry, spec.Threshold.ScoringFunction)
	if err != nil {
		eval.Err = fmt.Errorf("resolving scoring function for metric %q: %w", spec.Name, err)
		eval.Value = model.NaN()
		return eval
	}

	score := scoringFn.Evaluate(value)
	status := model.StatusOutside
	if score >= 0 {
		status = model.StatusWithin
	}
	eval.Check = model.ThresholdCheckResult{SimpleStatus: status, ThresholdScore: score}
	return eval
}

// resolveSource maps a MetricSpec's SourceName to a MetricsSource: empty
// name or the literal "builtin" both mean the freshly built built-in source;
// anything else is looked up among the session's configured external
// sources.
func (e *Evaluator) resolveSource(name string, builtin *metricsource.BuiltinSource) (metricsource.MetricsSource, error) {
	if name == "" || name == builtinSourceName {
		return builtin, nil
	}
	src, ok := e.externalByName[name]
	if !ok {
		return nil, fmt.Errorf("no metrics source named %q configured for this session", name)
	}
	return src, nil
}

// failedEvaluation builds the MetricEvaluation recorded for a fetch
// failure: NaN value, UNKNOWN status, zero score, error attached.
func failedEvaluation(spec model.MetricSpec, err error) model.MetricEvaluation {
	return model.MetricEvaluation{
		Name:      spec.Name,
		Value:     model.NaN(),
		Threshold: spec.Threshold,
		Check:     model.ThresholdCheckResult{SimpleStatus: model.StatusUnknown, ThresholdScore: 0},
		Err:       err,
	}
}
