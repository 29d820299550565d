// Package examples contains sample plugin.TransformPlugin implementations
// a host program can register with plugin.PluginManager.
package examples

import (
	"context"
	"strings"
	"sync"

	"github.com/GoFeGroup/keymagic-go/plugin"
)

// NormalizePlugin trims a trailing zero-width space some keyboard rule
// sets leave in the composing buffer as a state marker once it is no
// longer needed for matching.
type NormalizePlugin struct {
	info   *plugin.PluginInfo
	status plugin.PluginStatus
	mutex  sync.RWMutex
}

// NewNormalizePlugin creates a new normalize plugin
func NewNormalizePlugin() *NormalizePlugin {
	return &NormalizePlugin{
		info: &plugin.PluginInfo{
			Name:        "normalize",
			Version:     "1.0.0",
			Description: "Trims a trailing zero-width space from the composing buffer",
			Author:      "KeyMagic-Go",
			License:     "MIT",
		},
		status: plugin.PluginStatusUnloaded,
	}
}

// Info returns plugin information
func (np *NormalizePlugin) Info() *plugin.PluginInfo {
	return np.info
}

// Initialize initializes the plugin
func (np *NormalizePlugin) Initialize(config map[string]interface{}) error {
	np.mutex.Lock()
	defer np.mutex.Unlock()
	np.status = plugin.PluginStatusLoaded
	return nil
}

// Start starts the plugin
func (np *NormalizePlugin) Start(ctx context.Context) error {
	np.mutex.Lock()
	defer np.mutex.Unlock()
	np.status = plugin.PluginStatusRunning
	return nil
}

// Stop stops the plugin
func (np *NormalizePlugin) Stop() error {
	np.mutex.Lock()
	defer np.mutex.Unlock()
	np.status = plugin.PluginStatusStopped
	return nil
}

// Status returns the current status
func (np *NormalizePlugin) Status() plugin.PluginStatus {
	np.mutex.RLock()
	defer np.mutex.RUnlock()
	return np.status
}

// zeroWidthSpace is U+200B, a common state-marker character in keyboard
// rule sets that should never reach the host.
const zeroWidthSpace = "\u200b"

// TransformComposing trims a single trailing zero-width space.
func (np *NormalizePlugin) TransformComposing(buffer string) string {
	return strings.TrimSuffix(buffer, zeroWidthSpace)
}
