// Package plugin implements the process-wide registry that resolves a
// (category, name, typed config) triple to an instantiated plugin. Three
// categories are registered by this repository's built-in plugins: scoring
// functions, metrics sources, and step controllers, but the registry itself
// is generic over any category string.
//
// The typed config envelope is deliberately a concrete struct rather than a
// protobuf-style Any: Config carries a type URL and the plugin-specific
// config serialized as JSON. Registry.Create returns a *ConfigError if a
// non-empty type URL does not match the factory's, and factories decode
// their own concrete config type out of the bytes (see Decode).
package plugin

import (
	"encoding/json"
	"fmt"
)

// Category identifies one of the plugin kinds the registry resolves.
type Category string

// Config is the opaque typed-config envelope passed to a Factory. Name
// selects the factory; TypeURL and TypedConfig are handed to that factory's
// Create/Validate for it to decode.
type Config struct {
	Name        string
	TypeURL     string
	TypedConfig json.RawMessage
}

// ConfigError reports a problem resolving or decoding a Config: an unknown
// plugin name, a type URL mismatch, or a value out of range.
type ConfigError struct {
	Category Category
	Name     string
	Message  string
}

func (e *ConfigError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid %s plugin %q: %s", e.Category, e.Name, e.Message)
	}
	return fmt.Sprintf("invalid %s config: %s", e.Category, e.Message)
}

// Factory builds one named plugin from a decoded Config. Validate is
// optional in spirit but always present on the interface; a factory with
// nothing to check simply decodes and returns nil.
type Factory interface {
	// Name is the stable registry key for this factory, e.g. "linear".
	Name() string
	// TypeURL identifies the concrete config type this factory expects.
	TypeURL() string
	// NewConfig returns an empty instance of this plugin's concrete config
	// type, for callers (e.g. a config validator) that need to introspect
	// its shape without instantiating the plugin.
	NewConfig() interface{}
	// Validate decodes cfg and range-checks it without constructing the
	// plugin. It returns a *ConfigError on failure.
	Validate(cfg Config) error
	// Create decodes cfg and returns the instantiated plugin.
	Create(cfg Config) (interface{}, error)
}

// Registry maps (category, name) to a Factory. It is write-once-read-many:
// all registration happens during process/session setup via
// RegisterBuiltinPlugins, before any Session Driver starts.
type Registry struct {
	factories map[Category]map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Category]map[string]Factory)}
}

// Register adds f under its own Name() within category. A name collision
// within a category is a fatal configuration error at registration time,
// reported here rather than panicked so callers can decide how to fail.
func (r *Registry) Register(category Category, f Factory) error {
	bucket, ok := r.factories[category]
	if !ok {
		bucket = make(map[string]Factory)
		r.factories[category] = bucket
	}
	if _, exists := bucket[f.Name()]; exists {
		return &ConfigError{Category: category, Name: f.Name(), Message: "a plugin with this name is already registered"}
	}
	bucket[f.Name()] = f
	return nil
}

// MustRegister is Register, panicking on error. Intended for use in
// RegisterBuiltinPlugins, where a collision really is an unrecoverable
// process-start error.
func (r *Registry) MustRegister(category Category, f Factory) {
	if err := r.Register(category, f); err != nil {
		panic(err)
	}
}

// Lookup finds the factory registered for (category, name).
func (r *Registry) Lookup(category Category, name string) (Factory, error) {
	bucket, ok := r.factories[category]
	if !ok {
		return nil, &ConfigError{Category: category, Name: name, Message: "no plugins registered for this category"}
	}
	f, ok := bucket[name]
	if !ok {
		return nil, &ConfigError{Category: category, Name: name, Message: "no such plugin registered"}
	}
	return f, nil
}

// Create looks up cfg.Name within category and instantiates it, returning a
// *ConfigError if the type URL does not match or decoding/validation fails.
func (r *Registry) Create(category Category, cfg Config) (interface{}, error) {
	f, err := r.Lookup(category, cfg.Name)
	if err != nil {
		return nil, err
	}
	if cfg.TypeURL != "" && f.TypeURL() != "" && cfg.TypeURL != f.TypeURL() {
		return nil, &ConfigError{
			Category: category,
			Name:     cfg.Name,
			Message:  fmt.Sprintf("type URL mismatch: config carries %q, plugin expects %q", cfg.TypeURL, f.TypeURL()),
		}
	}
	if err := f.Validate(cfg); err != nil {
		return nil, err
	}
	return f.Create(cfg)
}

// Decode unmarshals cfg.TypedConfig into out. It is the helper every
// built-in factory uses to turn the opaque envelope into its concrete
// config type.
func Decode(cfg Config, out interface{}) error {
	if len(cfg.TypedConfig) == 0 {
		return nil
	}
	if err := json.Unmarshal(cfg.TypedConfig, out); err != nil {
		return &ConfigError{Name: cfg.Name, Message: fmt.Sprintf("decoding typed config: %v", err)}
	}
	return nil
}
