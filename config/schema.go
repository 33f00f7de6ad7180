package config

// sessionSpecSchema is the JSON Schema a session document's JSON projection
// (the YAML document re-marshaled to JSON, since jsonschema validates JSON
// values) must satisfy before any field-level range validation runs. Kept
// deliberately permissive on plugin `config` blocks: their shape is
// plugin-specific and checked by each Factory.Validate at resolution time
// instead.
const sessionSpecSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["target_endpoint", "base_options", "adjusting_duration", "testing_duration", "deadline", "metric_specs", "step_controller"],
  "properties": {
    "target_endpoint": { "type": "string", "minLength": 1 },
    "base_options": {
      "type": "object",
      "required": ["duration"],
      "properties": {
        "requests_per_second": { "type": "integer", "minimum": 0 },
        "duration": { "type": "string", "minLength": 1 }
      }
    },
    "adjusting_duration": { "type": "string", "minLength": 1 },
    "testing_duration": { "type": "string", "minLength": 1 },
    "deadline": { "type": "string", "minLength": 1 },
    "metric_specs": {
      "type": "array",
      "minItems": 1,
      "items": { "$ref": "#/definitions/metric_spec" }
    },
    "metrics_sources": {
      "type": "array",
      "items": { "$ref": "#/definitions/metrics_source" }
    },
    "step_controller": { "$ref": "#/definitions/plugin" }
  },
  "definitions": {
    "plugin": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "type_url": { "type": "string" },
        "config": { "type": "object" }
      }
    },
    "metrics_source": {
      "type": "object",
      "required": ["name", "plugin"],
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "plugin": { "$ref": "#/definitions/plugin" }
      }
    },
    "threshold_spec": {
      "type": "object",
      "required": ["scoring_function"],
      "properties": {
        "weight": { "type": "number", "exclusiveMinimum": 0 },
        "scoring_function": { "$ref": "#/definitions/plugin" }
      }
    },
    "metric_spec": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "source_name": { "type": "string" },
        "threshold": { "$ref": "#/definitions/threshold_spec" }
      }
    }
  }
}`
