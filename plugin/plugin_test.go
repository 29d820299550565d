package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransformPlugin struct {
	name   string
	status PluginStatus
}

func (s *stubTransformPlugin) Info() *PluginInfo {
	return &PluginInfo{Name: s.name}
}
func (s *stubTransformPlugin) Initialize(map[string]interface{}) error { return nil }
func (s *stubTransformPlugin) Start(context.Context) error             { s.status = PluginStatusRunning; return nil }
func (s *stubTransformPlugin) Stop() error                             { s.status = PluginStatusStopped; return nil }
func (s *stubTransformPlugin) Status() PluginStatus                    { return s.status }
func (s *stubTransformPlugin) TransformComposing(buffer string) string { return buffer + "!" }

func TestRegisterAndGetPlugin(t *testing.T) {
	pm := NewPluginManager()
	p := &stubTransformPlugin{name: "shout"}

	require.NoError(t, pm.RegisterPlugin(p))
	got, ok := pm.GetPlugin("shout")
	require.True(t, ok)
	assert.Same(t, p, got)

	assert.Error(t, pm.RegisterPlugin(p))
}

func TestTransformPluginsFiltersByInterface(t *testing.T) {
	pm := NewPluginManager()
	require.NoError(t, pm.RegisterPlugin(&stubTransformPlugin{name: "a"}))
	require.NoError(t, pm.RegisterPlugin(&stubTransformPlugin{name: "b"}))

	tps := pm.TransformPlugins()
	assert.Len(t, tps, 2)
}

func TestUnregisterStopsRunningPlugin(t *testing.T) {
	pm := NewPluginManager()
	p := &stubTransformPlugin{name: "shout"}
	require.NoError(t, pm.RegisterPlugin(p))
	require.NoError(t, pm.StartPlugin("shout"))

	require.NoError(t, pm.UnregisterPlugin("shout"))
	assert.Equal(t, PluginStatusStopped, p.Status())

	_, ok := pm.GetPlugin("shout")
	assert.False(t, ok)
}

func TestGetStatsCountsRunningAndError(t *testing.T) {
	pm := NewPluginManager()
	running := &stubTransformPlugin{name: "running", status: PluginStatusRunning}
	errored := &stubTransformPlugin{name: "errored", status: PluginStatusError}
	require.NoError(t, pm.RegisterPlugin(running))
	require.NoError(t, pm.RegisterPlugin(errored))

	stats := pm.GetStats()
	assert.Equal(t, 2, stats.TotalPlugins)
	assert.Equal(t, 1, stats.RunningPlugins)
	assert.Equal(t, 1, stats.ErrorPlugins)
}

func TestEventManagerDispatchesToHandlers(t *testing.T) {
	pem := NewPluginEventManager()
	var received *PluginEvent
	pem.RegisterEventHandler("loaded", func(e *PluginEvent) error {
		received = e
		return nil
	})

	require.NoError(t, pem.EmitEvent(&PluginEvent{PluginName: "shout", EventType: "loaded"}))
	require.NotNil(t, received)
	assert.Equal(t, "shout", received.PluginName)
}
