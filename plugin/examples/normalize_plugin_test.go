package examples

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePluginTrimsTrailingZeroWidthSpace(t *testing.T) {
	p := NewNormalizePlugin()
	require.NoError(t, p.Initialize(nil))

	assert.Equal(t, "ka", p.TransformComposing("ka"+"\u200b"))
	assert.Equal(t, "ka", p.TransformComposing("ka"))
}

func TestNormalizePluginLifecycle(t *testing.T) {
	p := NewNormalizePlugin()
	require.NoError(t, p.Start(nil))
	require.Equal(t, "running", string(p.Status()))
	require.NoError(t, p.Stop())
	require.Equal(t, "stopped", string(p.Status()))
}
