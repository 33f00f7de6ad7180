// Package config loads an adaptive load session's configuration from a YAML
// document, validates it against a JSON Schema, and converts it into a
// model.SessionSpec ready to hand to a session.Driver.
//
// Basic usage:
//
//	spec, err := config.LoadSessionSpec("session.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Schema validation runs before field-level range validation: a document
// that does not even match the expected shape is rejected with the
// santhosh-tekuri/jsonschema validation error before any SessionSpec field
// is inspected.
package config
