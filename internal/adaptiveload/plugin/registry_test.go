package plugin_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchctl/adaptiveload/internal/adaptiveload/plugin"
)

type echoConfig struct {
	Value int `json:"value"`
}

// echoFactory returns the decoded config's Value as the "plugin".
type echoFactory struct {
	name    string
	typeURL string
}

func (f echoFactory) Name() string             { return f.name }
func (f echoFactory) TypeURL() string          { return f.typeURL }
func (f echoFactory) NewConfig() interface{}   { return &echoConfig{} }
func (f echoFactory) Validate(cfg plugin.Config) error {
	var c echoConfig
	if err := plugin.Decode(cfg, &c); err != nil {
		return err
	}
	if c.Value < 0 {
		return &plugin.ConfigError{Name: f.name, Message: "value must be >= 0"}
	}
	return nil
}
func (f echoFactory) Create(cfg plugin.Config) (interface{}, error) {
	var c echoConfig
	if err := plugin.Decode(cfg, &c); err != nil {
		return nil, err
	}
	return c.Value, nil
}

const testCategory plugin.Category = "echo"

func rawConfig(t *testing.T, value int) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(echoConfig{Value: value})
	require.NoError(t, err)
	return b
}

func TestRegistry_CreateRoundTrip(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(testCategory, echoFactory{name: "echo", typeURL: "echo/v1"}))

	got, err := r.Create(testCategory, plugin.Config{
		Name:        "echo",
		TypeURL:     "echo/v1",
		TypedConfig: rawConfig(t, 42),
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRegistry_DuplicateRegistrationFails(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(testCategory, echoFactory{name: "echo"}))

	err := r.Register(testCategory, echoFactory{name: "echo"})
	require.Error(t, err)
	var cfgErr *plugin.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRegistry_UnknownNameFails(t *testing.T) {
	r := plugin.NewRegistry()
	_, err := r.Create(testCategory, plugin.Config{Name: "nope"})
	require.Error(t, err)
}

func TestRegistry_TypeURLMismatchFails(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(testCategory, echoFactory{name: "echo", typeURL: "echo/v1"}))

	_, err := r.Create(testCategory, plugin.Config{
		Name:        "echo",
		TypeURL:     "echo/v2",
		TypedConfig: rawConfig(t, 1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type URL mismatch")
}

func TestRegistry_ValidateRejectsOutOfRangeConfig(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(testCategory, echoFactory{name: "echo"}))

	_, err := r.Create(testCategory, plugin.Config{
		Name:        "echo",
		TypedConfig: rawConfig(t, -1),
	})
	require.Error(t, err)
}

func TestRegistry_MustRegisterPanicsOnCollision(t *testing.T) {
	r := plugin.NewRegistry()
	r.MustRegister(testCategory, echoFactory{name: "echo"})

	assert.Panics(t, func() {
		r.MustRegister(testCategory, echoFactory{name: "echo"})
	})
}
