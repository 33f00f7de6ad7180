package config

import (
	"fmt"
	"strings"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
)

// ValidationError reports one field-level problem with a SessionSpec that
// the JSON Schema pass is too coarse to catch: testing_duration shorter than
// adjusting_duration, empty metric specs, empty or duplicate metric names,
// and inconsistent weights. Plugin config ranges such as minimum_rps >
// maximum_rps are not checked here; each plugin factory's Validate checks
// them when session.New resolves the plugin.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every ValidationError found by Validate.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	messages := make([]string, len(ve))
	for i, e := range ve {
		messages[i] = e.Error()
	}
	return strings.Join(messages, "; ")
}

// Validate range-checks a SessionSpec beyond what the JSON Schema pass
// covers. It never short-circuits: every problem found is accumulated and
// reported together rather than returning on the first failure.
func Validate(spec model.SessionSpec) ValidationErrors {
	var errs ValidationErrors

	if spec.TestingDuration < spec.AdjustingDuration {
		errs = append(errs, ValidationError{
			Path:    "testing_duration",
			Message: "must be >= adjusting_duration",
		})
	}

	if len(spec.MetricSpecs) == 0 {
		errs = append(errs, ValidationError{
			Path:    "metric_specs",
			Message: "at least one metric spec is required",
		})
	}

	seenNames := make(map[string]bool, len(spec.MetricSpecs))
	for i, m := range spec.MetricSpecs {
		if m.Name == "" {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("metric_specs[%d].name", i),
				Message: "must not be empty",
			})
			continue
		}
		if seenNames[m.Name] {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("metric_specs[%d].name", i),
				Message: fmt.Sprintf("duplicate metric name %q", m.Name),
			})
		}
		seenNames[m.Name] = true
	}

	errs = append(errs, validateWeightConsistency(spec.MetricSpecs)...)

	return errs
}

// validateWeightConsistency enforces that weights are set either on all
// thresholded specs or on none.
func validateWeightConsistency(specs []model.MetricSpec) ValidationErrors {
	var haveWeight, missingWeight bool
	for _, m := range specs {
		if m.Threshold == nil {
			continue
		}
		if m.Threshold.Weight != nil {
			haveWeight = true
		} else {
			missingWeight = true
		}
	}

	if haveWeight && missingWeight {
		return ValidationErrors{{
			Path:    "metric_specs",
			Message: "weight must be set on all thresholded metric specs or none",
		}}
	}
	return nil
}
