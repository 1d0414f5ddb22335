package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Path   string
	Period int
}

type widgetConf struct {
	Path   string `json:"path"`
	Period int    `json:"period"`
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*widget]()
	require.NoError(t, reg.Register("widget", func(conf map[string]any) (*widget, error) {
		var c widgetConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &widget{Path: c.Path, Period: c.Period}, nil
	}))

	inst, err := reg.Create(ModuleConfig{Type: "widget", Conf: map[string]any{"path": "/tmp/x", "period": "3"}})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", inst.Path)
	assert.Equal(t, 3, inst.Period, "weakly typed decode")
	assert.Equal(t, []string{"widget"}, reg.Names())
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("x", func(map[string]any) (int, error) { return 1, nil }))
	assert.Error(t, reg.Register("x", func(map[string]any) (int, error) { return 2, nil }))
	assert.Error(t, reg.Register("y", nil))
	_, err := reg.Create(ModuleConfig{Type: "z"})
	assert.ErrorContains(t, err, `unknown module type "z"`)
}
