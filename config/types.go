package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

// sessionSpecDocument is the YAML shape a session configuration file takes.
// Durations are strings (Go duration syntax, e.g. "30s") rather than
// time.Duration so the document reads naturally; pluginDocument.Config is
// decoded into arbitrary YAML first and re-marshaled to JSON for
// plugin.Config.TypedConfig, since the registry's typed-config envelope is
// JSON, not YAML.
type sessionSpecDocument struct {
	TargetEndpoint    string                  `yaml:"target_endpoint"`
	BaseOptions       benchmarkOptionsDoc     `yaml:"base_options"`
	AdjustingDuration string                  `yaml:"adjusting_duration"`
	TestingDuration   string                  `yaml:"testing_duration"`
	Deadline          string                  `yaml:"deadline"`
	MetricSpecs       []metricSpecDocument    `yaml:"metric_specs"`
	MetricsSources    []metricsSourceDocument `yaml:"metrics_sources"`
	StepController    pluginDocument          `yaml:"step_controller"`
}

type benchmarkOptionsDoc struct {
	RequestsPerSecond uint32 `yaml:"requests_per_second"`
	Duration          string `yaml:"duration"`
}

type metricSpecDocument struct {
	Name       string            `yaml:"name"`
	SourceName string            `yaml:"source_name"`
	Threshold  *thresholdSpecDoc `yaml:"threshold"`
}

type thresholdSpecDoc struct {
	Weight          *float64       `yaml:"weight"`
	ScoringFunction pluginDocument `yaml:"scoring_function"`
}

type metricsSourceDocument struct {
	Name   string         `yaml:"name"`
	Plugin pluginDocument `yaml:"plugin"`
}

// pluginDocument mirrors plugin.Config, except Config is raw YAML rather
// than an already-serialized JSON envelope.
type pluginDocument struct {
	Name    string                 `yaml:"name"`
	TypeURL string                 `yaml:"type_url"`
	Config  map[string]interface{} `yaml:"config"`
}

func (p pluginDocument) toPluginConfig() (plugin.Config, error) {
	var raw json.RawMessage
	if len(p.Config) > 0 {
		encoded, err := json.Marshal(p.Config)
		if err != nil {
			return plugin.Config{}, fmt.Errorf("encoding plugin config for %q: %w", p.Name, err)
		}
		raw = encoded
	}
	return plugin.Config{Name: p.Name, TypeURL: p.TypeURL, TypedConfig: raw}, nil
}

// toSessionSpec converts the parsed YAML document into a model.SessionSpec.
// It does not perform range validation or plugin resolution — see Validate
// and session.New respectively; plugin config ranges such as minimum_rps <=
// maximum_rps are checked by the plugin factories during session.New.
func (doc sessionSpecDocument) toSessionSpec() (model.SessionSpec, error) {
	adjustingDuration, err := time.ParseDuration(doc.AdjustingDuration)
	if err != nil {
		return model.SessionSpec{}, fmt.Errorf("adjusting_duration: %w", err)
	}
	testingDuration, err := time.ParseDuration(doc.TestingDuration)
	if err != nil {
		return model.SessionSpec{}, fmt.Errorf("testing_duration: %w", err)
	}
	deadline, err := time.ParseDuration(doc.Deadline)
	if err != nil {
		return model.SessionSpec{}, fmt.Errorf("deadline: %w", err)
	}
	baseDuration, err := time.ParseDuration(doc.BaseOptions.Duration)
	if err != nil {
		return model.SessionSpec{}, fmt.Errorf("base_options.duration: %w", err)
	}

	stepController, err := doc.StepController.toPluginConfig()
	if err != nil {
		return model.SessionSpec{}, fmt.Errorf("step_controller: %w", err)
	}

	metricsSources := make([]model.MetricsSourceConfig, len(doc.MetricsSources))
	for i, src := range doc.MetricsSources {
		cfg, err := src.Plugin.toPluginConfig()
		if err != nil {
			return model.SessionSpec{}, fmt.Errorf("metrics_sources[%d] (%s): %w", i, src.Name, err)
		}
		metricsSources[i] = model.MetricsSourceConfig{Name: src.Name, Plugin: cfg}
	}

	metricSpecs := make([]model.MetricSpec, len(doc.MetricSpecs))
	for i, spec := range doc.MetricSpecs {
		converted := model.MetricSpec{Name: spec.Name, SourceName: spec.SourceName}
		if spec.Threshold != nil {
			scoringCfg, err := spec.Threshold.ScoringFunction.toPluginConfig()
			if err != nil {
				return model.SessionSpec{}, fmt.Errorf("metric_specs[%d] (%s).threshold: %w", i, spec.Name, err)
			}
			converted.Threshold = &model.ThresholdSpec{
				ScoringFunction: scoringCfg,
				Weight:          spec.Threshold.Weight,
			}
		}
		metricSpecs[i] = converted
	}

	return model.SessionSpec{
		TargetEndpoint:    doc.TargetEndpoint,
		BaseOptions:       model.BenchmarkOptions{RequestsPerSecond: doc.BaseOptions.RequestsPerSecond, Duration: baseDuration},
		AdjustingDuration: adjustingDuration,
		TestingDuration:   testingDuration,
		Deadline:          deadline,
		MetricSpecs:       metricSpecs,
		MetricsSources:    metricsSources,
		StepController:    stepController,
	}, nil
}
