package metricsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

// JSONPathTypeURL identifies JSONPathConfig in the plugin registry.
const JSONPathTypeURL = "adaptiveload.dev/metricsource/JSONPathConfig"

// JSONPathConfig configures a JSONPathSource: a document fetched once per
// query and a set of named gjson paths into it. It is an illustrative
// external metrics source, wrapping tidwall/gjson for the path extraction.
type JSONPathConfig struct {
	// Paths maps a metric name this source supports to a gjson path
	// expression evaluated against the document returned by Fetch.
	Paths map[string]string `json:"paths"`
}

// Fetcher retrieves the raw JSON document a JSONPathSource queries. Kept as
// an interface, not a concrete HTTP client, so callers can inject whatever
// Fetcher suits their environment.
type Fetcher interface {
	Fetch(ctx context.Context, window Window) (document string, err error)
}

// JSONPathSource is an external MetricsSource that extracts named metrics
// out of a JSON document by gjson path, resolving each one to the float64
// values this package's MetricsSource contract requires.
type JSONPathSource struct {
	fetcher Fetcher
	paths   map[string]string
}

// NewJSONPathSource builds a JSONPathSource that fetches its document via
// fetcher and extracts values at the configured paths.
func NewJSONPathSource(fetcher Fetcher, paths map[string]string) *JSONPathSource {
	copied := make(map[string]string, len(paths))
	for k, v := range paths {
		copied[k] = v
	}
	return &JSONPathSource{fetcher: fetcher, paths: copied}
}

// GetMetric implements MetricsSource.
func (s *JSONPathSource) GetMetric(ctx context.Context, name string, window Window) (float64, error) {
	path, ok := s.paths[name]
	if !ok {
		return 0, &UnsupportedMetricError{Source: "jsonpath", Metric: name}
	}

	doc, err := s.fetcher.Fetch(ctx, window)
	if err != nil {
		return 0, fmt.Errorf("jsonpath source: fetching document: %w", err)
	}

	value, err := extractFloat(doc, path)
	if err != nil {
		return 0, fmt.Errorf("jsonpath source: metric %q: %w", name, err)
	}
	return value, nil
}

// SupportedMetricNames implements MetricsSource.
func (s *JSONPathSource) SupportedMetricNames() []string {
	names := make([]string, 0, len(s.paths))
	for name := range s.paths {
		names = append(names, name)
	}
	return names
}

// extractFloat extracts a numeric value from doc at a JSONPath-style path,
// converting it to gjson's path syntax first.
func extractFloat(doc string, path string) (float64, error) {
	if doc == "" {
		return 0, fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return 0, fmt.Errorf("empty JSONPath expression")
	}

	result := gjson.Get(doc, convertToGjsonPath(path))
	if !result.Exists() {
		return 0, fmt.Errorf("path not found: %s", path)
	}
	if result.Type != gjson.Number {
		return 0, fmt.Errorf("path %s did not resolve to a number, got %s", path, result.Type.String())
	}
	return result.Float(), nil
}

// convertToGjsonPath converts a JSONPath expression ($.a.b[0]) to gjson's
// dotted path syntax (a.b.0).
func convertToGjsonPath(path string) string {
	if path == "$" {
		return "@this"
	}

	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this"
	}
	path = strings.TrimPrefix(path, ".")

	path = strings.ReplaceAll(path, "['", "")
	path = strings.ReplaceAll(path, "']", "")
	path = strings.ReplaceAll(path, "[\"", "")
	path = strings.ReplaceAll(path, "\"]", "")

	if strings.HasPrefix(path, "[") {
		if end := strings.Index(path, "]"); end > 1 {
			index := path[1:end]
			rest := ""
			if len(path) > end+1 {
				rest = path[end+1:]
			}
			path = index + rest
		}
	}

	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")

	return path
}

// jsonPathFactory registers JSONPathSource under the "jsonpath" name.
type jsonPathFactory struct{}

func (jsonPathFactory) Name() string    { return "jsonpath" }
func (jsonPathFactory) TypeURL() string { return JSONPathTypeURL }
func (jsonPathFactory) NewConfig() interface{} {
	return &JSONPathConfig{}
}

func (jsonPathFactory) Validate(cfg plugin.Config) error {
	parsed := &JSONPathConfig{}
	if err := plugin.Decode(cfg, parsed); err != nil {
		return err
	}
	if len(parsed.Paths) == 0 {
		return &plugin.ConfigError{
			Category: CategoryName,
			Name:     cfg.Name,
			Message:  "jsonpath source requires at least one metric path",
		}
	}
	return nil
}

// Create builds a JSONPathSource configured from cfg. It has no Fetcher of
// its own: the zero-value fetcher always fails, and callers that need a live
// document must wrap the resulting source or use NewJSONPathSource directly
// with a real Fetcher. This keeps the generic plugin-registry path usable in
// config-driven wiring without smuggling a network client into Validate.
func (jsonPathFactory) Create(cfg plugin.Config) (interface{}, error) {
	parsed := &JSONPathConfig{}
	if err := plugin.Decode(cfg, parsed); err != nil {
		return nil, err
	}
	return NewJSONPathSource(noFetcher{}, parsed.Paths), nil
}

// noFetcher is the placeholder Fetcher used when a JSONPathSource is created
// through the generic registry path without an explicit Fetcher wired in.
type noFetcher struct{}

func (noFetcher) Fetch(context.Context, Window) (string, error) {
	return "", fmt.Errorf("jsonpath source: no Fetcher configured; construct with NewJSONPathSource to supply one")
}
