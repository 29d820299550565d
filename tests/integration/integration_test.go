// Package integration exercises the full stack end to end: config,
// engine, management, plugin, di, and mobile wired together the way a
// real host program would use them.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoFeGroup/keymagic-go/config"
	"github.com/GoFeGroup/keymagic-go/di"
	"github.com/GoFeGroup/keymagic-go/engine"
	"github.com/GoFeGroup/keymagic-go/km2"
	"github.com/GoFeGroup/keymagic-go/km2/km2test"
	"github.com/GoFeGroup/keymagic-go/management"
	"github.com/GoFeGroup/keymagic-go/plugin"
	"github.com/GoFeGroup/keymagic-go/plugin/examples"
	"github.com/GoFeGroup/keymagic-go/vkey"
)

func writeKeyboard(t *testing.T) string {
	t.Helper()
	b := km2test.New(km2.LayoutOptions{})
	b.AddRule([]km2.RuleElement{km2test.String("ka")}, []km2.RuleElement{km2test.String("က")})

	dir := t.TempDir()
	path := filepath.Join(dir, "myanmar3.km2")
	require.NoError(t, os.WriteFile(path, b.Build(), 0o644))
	return path
}

// TestIntegration_ConfigDrivenEngine loads configuration from a file,
// validates it, and drives an engine built from it — the path a CLI host
// takes at startup.
func TestIntegration_ConfigDrivenEngine(t *testing.T) {
	keyboardPath := writeKeyboard(t)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		`{"engine":{"default_keyboard_path":"`+keyboardPath+`"},"logging":{"level":"debug"}}`), 0o644))

	cfg, err := config.LoadFromFile(cfgPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	data, err := os.ReadFile(cfg.Engine.DefaultKeyboardPath)
	require.NoError(t, err)

	e := engine.NewEngine()
	require.NoError(t, e.LoadKeyboard(data))

	out, err := e.ProcessKey(engine.KeyInput{KeyCode: vkey.KeyK, Character: 'k', HasChar: true})
	require.NoError(t, err)
	assert.Equal(t, engine.ActionInsert, out.Action)

	out, err = e.ProcessKey(engine.KeyInput{KeyCode: vkey.KeyA, Character: 'a', HasChar: true})
	require.NoError(t, err)
	assert.Equal(t, "က", out.ComposingText)
}

// TestIntegration_ManagementConsolePool drives a pool of named engines
// through the management console API, including a concurrent diagnostics
// sweep.
func TestIntegration_ManagementConsolePool(t *testing.T) {
	keyboardPath := writeKeyboard(t)

	console := management.NewConsole(nil, nil)
	require.NoError(t, console.LoadKeyboard("myanmar3", keyboardPath))
	require.NoError(t, console.LoadKeyboard("myanmar3-copy", keyboardPath))
	assert.Equal(t, "myanmar3", console.Active())

	require.NoError(t, console.Switch("myanmar3-copy"))
	assert.Equal(t, "myanmar3-copy", console.Active())

	out, err := console.ProcessKey("myanmar3-copy", engine.KeyInput{KeyCode: vkey.KeyK, Character: 'k', HasChar: true})
	require.NoError(t, err)
	assert.Equal(t, engine.ActionInsert, out.Action)

	require.NoError(t, console.RunDiagnostics(context.Background()))
	assert.Len(t, console.List(), 2)
}

// TestIntegration_PluginTransformsThroughEngine registers the normalize
// plugin via plugin.PluginManager and verifies engine.Engine actually
// invokes it during ProcessKey.
func TestIntegration_PluginTransformsThroughEngine(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{})
	b.AddRule([]km2.RuleElement{km2test.String("ka")},
		[]km2.RuleElement{km2test.String("ka" + "\u200b")})

	e := engine.NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))

	pm := plugin.NewPluginManager()
	normalize := examples.NewNormalizePlugin()
	require.NoError(t, pm.RegisterPlugin(normalize))
	for _, p := range pm.TransformPlugins() {
		e.AddPlugin(p)
	}

	_, err := e.ProcessKey(engine.KeyInput{KeyCode: vkey.KeyK, Character: 'k', HasChar: true})
	require.NoError(t, err)
	out, err := e.ProcessKey(engine.KeyInput{KeyCode: vkey.KeyA, Character: 'a', HasChar: true})
	require.NoError(t, err)

	assert.Equal(t, "ka", out.ComposingText)
}

// TestIntegration_DIContainerWiresEngineAndMobileFacade verifies the di
// container produces working engine and mobile facades sharing the same
// configuration.
func TestIntegration_DIContainerWiresEngineAndMobileFacade(t *testing.T) {
	keyboardPath := writeKeyboard(t)

	app := di.NewApplication()
	require.NoError(t, app.Initialize())
	defer app.Close()

	var cfg *config.Config
	require.NoError(t, app.GetTyped("config", &cfg))
	cfg.Engine.DefaultKeyboardPath = keyboardPath

	var engineFactory *di.EngineFactory
	require.NoError(t, app.GetTyped("engine_factory", &engineFactory))

	e, err := engineFactory.CreateWithConfig(cfg)
	require.NoError(t, err)

	out, err := e.ProcessKey(engine.KeyInput{KeyCode: vkey.KeyK, Character: 'k', HasChar: true})
	require.NoError(t, err)
	assert.Equal(t, engine.ActionInsert, out.Action)

	var mobileFactory *di.MobileEngineFactory
	require.NoError(t, app.GetTyped("mobile_engine_factory", &mobileFactory))
	m := mobileFactory.Create()
	require.NoError(t, m.Load(mustReadFile(t, keyboardPath)))

	mOut, err := m.ProcessKey(0x4B, 'k', true, false, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, int32(engine.ActionInsert), mOut.Action)
}

func mustReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
