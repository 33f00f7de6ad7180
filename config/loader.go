package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
)

// LoadSessionSpec reads, schema-validates, and range-validates the session
// configuration at path, returning the model.SessionSpec session.New needs.
// It does not resolve any plugin: that happens once the returned spec is
// handed to session.New against a populated plugin.Registry.
func LoadSessionSpec(path string) (model.SessionSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.SessionSpec{}, fmt.Errorf("reading session config %q: %w", path, err)
	}

	if err := validateAgainstSchema(data); err != nil {
		return model.SessionSpec{}, fmt.Errorf("session config %q failed schema validation: %w", path, err)
	}

	var doc sessionSpecDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.SessionSpec{}, fmt.Errorf("parsing session config %q: %w", path, err)
	}

	spec, err := doc.toSessionSpec()
	if err != nil {
		return model.SessionSpec{}, fmt.Errorf("session config %q: %w", path, err)
	}

	if errs := Validate(spec); len(errs) > 0 {
		return model.SessionSpec{}, fmt.Errorf("session config %q failed validation: %w", path, errs)
	}

	return spec, nil
}

// validateAgainstSchema checks the document (re-marshaled from YAML to the
// JSON values jsonschema operates on) against sessionSpecSchema: it compiles
// an in-memory schema resource and validates the decoded JSON value against
// it.
func validateAgainstSchema(yamlData []byte) error {
	var generic interface{}
	if err := yaml.Unmarshal(yamlData, &generic); err != nil {
		return fmt.Errorf("re-parsing document for schema validation: %w", err)
	}

	jsonBytes, err := json.Marshal(convertYAMLMapsToJSON(generic))
	if err != nil {
		return fmt.Errorf("converting document to JSON for schema validation: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("session-spec.json", strings.NewReader(sessionSpecSchema)); err != nil {
		return fmt.Errorf("invalid embedded schema: %w", err)
	}
	schema, err := compiler.Compile("session-spec.json")
	if err != nil {
		return fmt.Errorf("invalid embedded schema: %w", err)
	}

	var instance interface{}
	if err := json.Unmarshal(jsonBytes, &instance); err != nil {
		return fmt.Errorf("re-parsing document JSON: %w", err)
	}

	return schema.Validate(instance)
}

// convertYAMLMapsToJSON recursively converts map[string]interface{} (and any
// map[interface{}]interface{} yaml.v3 may still emit for untagged sections)
// into shapes encoding/json can marshal.
func convertYAMLMapsToJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = convertYAMLMapsToJSON(item)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = convertYAMLMapsToJSON(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = convertYAMLMapsToJSON(item)
		}
		return out
	default:
		return val
	}
}
