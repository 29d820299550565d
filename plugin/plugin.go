// Package plugin is a narrow post-processing hook for engine.Engine
// (spec.md is silent on post-processing hooks; this is purely additive and
// off by default, and changes no invariant spec.md specifies). A
// TransformPlugin's TransformComposing runs after recursive matching
// settles and before the diff step that produces ProcessKey's Output.
package plugin

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PluginStatus represents the lifecycle status of a plugin
type PluginStatus string

const (
	PluginStatusUnloaded PluginStatus = "unloaded"
	PluginStatusLoading  PluginStatus = "loading"
	PluginStatusLoaded   PluginStatus = "loaded"
	PluginStatusRunning  PluginStatus = "running"
	PluginStatusError    PluginStatus = "error"
	PluginStatusStopped  PluginStatus = "stopped"
)

// PluginInfo contains information about a plugin
type PluginInfo struct {
	Name        string                 `json:"name"`
	Version     string                 `json:"version"`
	Description string                 `json:"description"`
	Author      string                 `json:"author"`
	License     string                 `json:"license"`
	Config      map[string]interface{} `json:"config"`
}

// Plugin represents a plugin's lifecycle: every plugin can be
// initialized, started, stopped, and queried for status independently of
// what it actually does.
type Plugin interface {
	Info() *PluginInfo
	Initialize(config map[string]interface{}) error
	Start(ctx context.Context) error
	Stop() error
	Status() PluginStatus
}

// TransformPlugin is the one plugin kind engine.Engine knows how to
// invoke: a rewrite of the composing buffer applied after each key event
// settles, e.g. a rule set that normalizes Unicode forms or trims a
// trailing combining mark a keyboard's own rules leave behind.
type TransformPlugin interface {
	Plugin

	// TransformComposing returns the buffer to use in place of buffer.
	// Returning buffer unchanged is a no-op.
	TransformComposing(buffer string) string
}

// PluginManager manages all registered plugins
type PluginManager struct {
	plugins map[string]Plugin
	mutex   sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewPluginManager creates a new plugin manager
func NewPluginManager() *PluginManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &PluginManager{
		plugins: make(map[string]Plugin),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// RegisterPlugin registers a plugin
func (pm *PluginManager) RegisterPlugin(plugin Plugin) error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	info := plugin.Info()
	if info == nil {
		return fmt.Errorf("plugin info is nil")
	}

	if _, exists := pm.plugins[info.Name]; exists {
		return fmt.Errorf("plugin %s already registered", info.Name)
	}

	pm.plugins[info.Name] = plugin
	return nil
}

// UnregisterPlugin unregisters a plugin
func (pm *PluginManager) UnregisterPlugin(name string) error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	plugin, exists := pm.plugins[name]
	if !exists {
		return fmt.Errorf("plugin %s not found", name)
	}

	if plugin.Status() == PluginStatusRunning {
		if err := plugin.Stop(); err != nil {
			return fmt.Errorf("failed to stop plugin %s: %w", name, err)
		}
	}

	delete(pm.plugins, name)
	return nil
}

// GetPlugin returns a plugin by name
func (pm *PluginManager) GetPlugin(name string) (Plugin, bool) {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	plugin, exists := pm.plugins[name]
	return plugin, exists
}

// TransformPlugins returns every registered plugin that implements
// TransformPlugin, for registration with engine.Engine.AddPlugin. The order
// of the returned slice is not defined.
func (pm *PluginManager) TransformPlugins() []TransformPlugin {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	var plugins []TransformPlugin
	for _, p := range pm.plugins {
		if tp, ok := p.(TransformPlugin); ok {
			plugins = append(plugins, tp)
		}
	}
	return plugins
}

// ListPlugins returns all registered plugins
func (pm *PluginManager) ListPlugins() []Plugin {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	plugins := make([]Plugin, 0, len(pm.plugins))
	for _, plugin := range pm.plugins {
		plugins = append(plugins, plugin)
	}
	return plugins
}

// InitializePlugin initializes a plugin
func (pm *PluginManager) InitializePlugin(name string, config map[string]interface{}) error {
	plugin, exists := pm.GetPlugin(name)
	if !exists {
		return fmt.Errorf("plugin %s not found", name)
	}

	return plugin.Initialize(config)
}

// StartPlugin starts a plugin
func (pm *PluginManager) StartPlugin(name string) error {
	plugin, exists := pm.GetPlugin(name)
	if !exists {
		return fmt.Errorf("plugin %s not found", name)
	}

	return plugin.Start(pm.ctx)
}

// StopPlugin stops a plugin
func (pm *PluginManager) StopPlugin(name string) error {
	plugin, exists := pm.GetPlugin(name)
	if !exists {
		return fmt.Errorf("plugin %s not found", name)
	}

	return plugin.Stop()
}

// StartAllPlugins starts all plugins
func (pm *PluginManager) StartAllPlugins() error {
	pm.mutex.RLock()
	plugins := make([]Plugin, 0, len(pm.plugins))
	for _, plugin := range pm.plugins {
		plugins = append(plugins, plugin)
	}
	pm.mutex.RUnlock()

	for _, plugin := range plugins {
		if err := plugin.Start(pm.ctx); err != nil {
			return fmt.Errorf("failed to start plugin %s: %w", plugin.Info().Name, err)
		}
	}

	return nil
}

// StopAllPlugins stops all plugins
func (pm *PluginManager) StopAllPlugins() error {
	pm.mutex.RLock()
	plugins := make([]Plugin, 0, len(pm.plugins))
	for _, plugin := range pm.plugins {
		plugins = append(plugins, plugin)
	}
	pm.mutex.RUnlock()

	for _, plugin := range plugins {
		if err := plugin.Stop(); err != nil {
			return fmt.Errorf("failed to stop plugin %s: %w", plugin.Info().Name, err)
		}
	}

	return nil
}

// Close closes the plugin manager
func (pm *PluginManager) Close() error {
	pm.cancel()
	return pm.StopAllPlugins()
}

// PluginStats contains statistics about plugins
type PluginStats struct {
	TotalPlugins   int                   `json:"total_plugins"`
	RunningPlugins int                   `json:"running_plugins"`
	ErrorPlugins   int                   `json:"error_plugins"`
	PluginDetails  map[string]PluginInfo `json:"plugin_details"`
}

// GetStats returns statistics about all plugins
func (pm *PluginManager) GetStats() *PluginStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	stats := &PluginStats{
		TotalPlugins:  len(pm.plugins),
		PluginDetails: make(map[string]PluginInfo),
	}

	for name, plugin := range pm.plugins {
		info := plugin.Info()
		if info != nil {
			stats.PluginDetails[name] = *info
		}

		switch plugin.Status() {
		case PluginStatusRunning:
			stats.RunningPlugins++
		case PluginStatusError:
			stats.ErrorPlugins++
		}
	}

	return stats
}

// PluginEvent represents a plugin lifecycle event
type PluginEvent struct {
	PluginName string      `json:"plugin_name"`
	EventType  string      `json:"event_type"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       interface{} `json:"data"`
}

// PluginEventHandler handles plugin events
type PluginEventHandler func(event *PluginEvent) error

// PluginEventManager manages plugin events
type PluginEventManager struct {
	handlers map[string][]PluginEventHandler
	mutex    sync.RWMutex
}

// NewPluginEventManager creates a new plugin event manager
func NewPluginEventManager() *PluginEventManager {
	return &PluginEventManager{
		handlers: make(map[string][]PluginEventHandler),
	}
}

// RegisterEventHandler registers an event handler
func (pem *PluginEventManager) RegisterEventHandler(eventType string, handler PluginEventHandler) {
	pem.mutex.Lock()
	defer pem.mutex.Unlock()

	pem.handlers[eventType] = append(pem.handlers[eventType], handler)
}

// EmitEvent emits a plugin event
func (pem *PluginEventManager) EmitEvent(event *PluginEvent) error {
	pem.mutex.RLock()
	handlers := pem.handlers[event.EventType]
	pem.mutex.RUnlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			return fmt.Errorf("event handler failed: %w", err)
		}
	}

	return nil
}
