// Package adaptiveload is the library entry point for the adaptive load
// controller: it composes the plugin registry that the rest of this
// module's packages implement their half of, and offers a small convenience
// constructor for wiring a loaded config.SessionSpec into a ready-to-run
// session.Driver. Builtin plugin registration happens via an explicit
// RegisterBuiltinPlugins call rather than package-init side effects, so
// whatever embeds this module controls exactly when it runs.
package adaptiveload

import (
	"io"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/clock"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/loadgen"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/metricsource"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/model"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/scoring"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/session"
	"github.com/benchctl/adaptiveload/internal/adaptiveload/stepcontroller"
)

// NewRegistry returns a plugin.Registry with every built-in scoring
// function, metrics source, and step controller factory registered. A name
// collision among built-ins is a programming error in this module, not a
// caller mistake, so it panics rather than returning an error.
func NewRegistry() *plugin.Registry {
	r := plugin.NewRegistry()
	RegisterBuiltinPlugins(r)
	return r
}

// RegisterBuiltinPlugins adds every plugin this module ships with to r:
// scoring's linear and sigmoid functions under "scoring_function",
// metricsource's jsonpath source under "metrics_source", and
// stepcontroller's linear-search and binary-search controllers under
// "step_controller". Callers embedding additional plugins should register
// those separately on the same *plugin.Registry before starting a session.
func RegisterBuiltinPlugins(r *plugin.Registry) {
	scoring.Register(r)
	metricsource.Register(r)
	stepcontroller.Register(r)
}

// NewSession resolves the step controller and external metrics sources spec
// names against registry and returns a session.Driver ready to Run; scoring
// functions are resolved by the driver's evaluator on each evaluation. diagnostic may be nil to discard progress
// lines. It is a thin pass-through to session.New, exported at the module
// root so a caller needs only this package and model/config to drive a
// session end to end.
func NewSession(spec model.SessionSpec, client loadgen.Client, registry *plugin.Registry, clk clock.Source, diagnostic io.Writer) (*session.Driver, error) {
	return session.New(spec, client, registry, clk, diagnostic)
}
