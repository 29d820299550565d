package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoFeGroup/keymagic-go/config"
	"github.com/GoFeGroup/keymagic-go/engine"
	"github.com/GoFeGroup/keymagic-go/glog"
	"github.com/GoFeGroup/keymagic-go/management"
	"github.com/GoFeGroup/keymagic-go/mobile"
)

func TestContainerRegisterAndGet(t *testing.T) {
	c := NewContainer()
	c.Register("answer", 42)

	got, err := c.Get("answer")
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestContainerFactoryIsCachedAfterFirstGet(t *testing.T) {
	c := NewContainer()
	calls := 0
	c.RegisterFactory("thing", func(*Container) (interface{}, error) {
		calls++
		return calls, nil
	})

	first, err := c.Get("thing")
	require.NoError(t, err)
	second, err := c.Get("thing")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestContainerGetUnknownServiceErrors(t *testing.T) {
	c := NewContainer()
	_, err := c.Get("missing")
	assert.Error(t, err)
}

func TestContainerGetTyped(t *testing.T) {
	c := NewContainer()
	c.Register("name", "keymagic")

	var s string
	require.NoError(t, c.GetTyped("name", &s))
	assert.Equal(t, "keymagic", s)
}

func TestApplicationWiresEngineConfigLogger(t *testing.T) {
	app := NewApplication()
	require.NoError(t, app.Initialize())

	var cfg *config.Config
	require.NoError(t, app.GetTyped("config", &cfg))
	assert.NotNil(t, cfg)

	var logger *glog.StructuredLogger
	require.NoError(t, app.GetTyped("logger", &logger))
	assert.NotNil(t, logger)

	var engineFactory *EngineFactory
	require.NoError(t, app.GetTyped("engine_factory", &engineFactory))
	eng := engineFactory.Create()
	assert.IsType(t, &engine.Engine{}, eng)
}

func TestApplicationWiresManagementConsole(t *testing.T) {
	app := NewApplication()
	require.NoError(t, app.Initialize())

	var console *management.Console
	require.NoError(t, app.GetTyped("management_console", &console))
	assert.NotNil(t, console)
}

func TestApplicationWiresMobileEngineFactory(t *testing.T) {
	app := NewApplication()
	require.NoError(t, app.Initialize())

	var mobileFactory *MobileEngineFactory
	require.NoError(t, app.GetTyped("mobile_engine_factory", &mobileFactory))
	assert.IsType(t, &mobile.MobileEngine{}, mobileFactory.Create())
}
