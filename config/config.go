// Package config provides configuration management for host programs that
// embed the engine (the core itself takes no configuration — spec.md §6
// keeps it free of CLI flags, environment variables, and persisted state).
// It supports loading configuration from multiple sources:
//   - JSON and YAML files
//   - Environment variables
//   - Default values
//
// Example usage:
//
//	cfg := config.DefaultConfig()
//	cfg.Engine.DefaultKeyboardPath = "myanmar3.km2"
//
//	// Or load from file
//	cfg, err := config.LoadFromFile("config.yaml")
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/GoFeGroup/keymagic-go/hotkey"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for a host program embedding the
// engine.
type Config struct {
	Engine     EngineConfig     `json:"engine" yaml:"engine"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Hotkey     HotkeyConfig     `json:"hotkey" yaml:"hotkey"`
	Management ManagementConfig `json:"management" yaml:"management"`
	Plugin     PluginConfig     `json:"plugin" yaml:"plugin"`
}

// EngineConfig selects the keyboard layout a host loads at startup and
// lets it override the layout's own auto_bksp/eat options (nil means
// "use whatever the km2 file specifies").
type EngineConfig struct {
	DefaultKeyboardPath   string `json:"default_keyboard_path" yaml:"default_keyboard_path"`
	AutoBackspaceOverride *bool  `json:"auto_backspace_override,omitempty" yaml:"auto_backspace_override,omitempty"`
	EatOverride           *bool  `json:"eat_override,omitempty" yaml:"eat_override,omitempty"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	Output     string `json:"output" yaml:"output"`
	File       string `json:"file" yaml:"file"`
	MaxSize    int    `json:"max_size" yaml:"max_size"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAge     int    `json:"max_age" yaml:"max_age"`
	Compress   bool   `json:"compress" yaml:"compress"`
}

// HotkeyConfig names the host-level hotkey string that toggles the engine
// on/off, parsed via the hotkey package.
type HotkeyConfig struct {
	ToggleHotkey string `json:"toggle_hotkey" yaml:"toggle_hotkey"`
}

// ManagementConfig configures the admin console's listen address.
type ManagementConfig struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// PluginConfig names the post-processing plugins a host should enable, by
// registered name.
type PluginConfig struct {
	Enabled []string `json:"enabled" yaml:"enabled"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		Hotkey: HotkeyConfig{
			ToggleHotkey: "ctrl+shift+space",
		},
		Management: ManagementConfig{
			ListenAddr: "127.0.0.1:4560",
		},
		Plugin: PluginConfig{},
	}
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	if strings.HasSuffix(filename, ".json") {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	} else {
		return nil, fmt.Errorf("unsupported config file format")
	}

	return config, nil
}

// LoadFromEnvironment loads configuration from KEYMAGIC_* environment
// variables.
func LoadFromEnvironment() *Config {
	config := DefaultConfig()

	if path := os.Getenv("KEYMAGIC_KEYBOARD_PATH"); path != "" {
		config.Engine.DefaultKeyboardPath = path
	}
	if v := os.Getenv("KEYMAGIC_AUTO_BACKSPACE"); v != "" {
		b := v == "true"
		config.Engine.AutoBackspaceOverride = &b
	}
	if v := os.Getenv("KEYMAGIC_EAT"); v != "" {
		b := v == "true"
		config.Engine.EatOverride = &b
	}

	if level := os.Getenv("KEYMAGIC_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("KEYMAGIC_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if hotkey := os.Getenv("KEYMAGIC_TOGGLE_HOTKEY"); hotkey != "" {
		config.Hotkey.ToggleHotkey = hotkey
	}

	if addr := os.Getenv("KEYMAGIC_MANAGEMENT_ADDR"); addr != "" {
		config.Management.ListenAddr = addr
	}

	if enabled := os.Getenv("KEYMAGIC_PLUGINS"); enabled != "" {
		config.Plugin.Enabled = strings.Split(enabled, ",")
	}

	return config
}

// Merge merges another configuration into this one, field by field,
// leaving fields other leaves at their zero value untouched.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Engine.DefaultKeyboardPath != "" {
		c.Engine.DefaultKeyboardPath = other.Engine.DefaultKeyboardPath
	}
	if other.Engine.AutoBackspaceOverride != nil {
		c.Engine.AutoBackspaceOverride = other.Engine.AutoBackspaceOverride
	}
	if other.Engine.EatOverride != nil {
		c.Engine.EatOverride = other.Engine.EatOverride
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}
	if other.Logging.Output != "" {
		c.Logging.Output = other.Logging.Output
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Logging.MaxSize != 0 {
		c.Logging.MaxSize = other.Logging.MaxSize
	}
	if other.Logging.MaxBackups != 0 {
		c.Logging.MaxBackups = other.Logging.MaxBackups
	}
	if other.Logging.MaxAge != 0 {
		c.Logging.MaxAge = other.Logging.MaxAge
	}
	if other.Logging.Compress {
		c.Logging.Compress = true
	}

	if other.Hotkey.ToggleHotkey != "" {
		c.Hotkey.ToggleHotkey = other.Hotkey.ToggleHotkey
	}

	if other.Management.ListenAddr != "" {
		c.Management.ListenAddr = other.Management.ListenAddr
	}

	if len(other.Plugin.Enabled) > 0 {
		c.Plugin.Enabled = other.Plugin.Enabled
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Engine.DefaultKeyboardPath == "" {
		return fmt.Errorf("default keyboard path is required")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Hotkey.ToggleHotkey != "" {
		if _, err := hotkey.Parse(c.Hotkey.ToggleHotkey); err != nil {
			return fmt.Errorf("invalid toggle hotkey: %w", err)
		}
	}
	return nil
}

// ToMap converts the configuration to a map for easy access
func (c *Config) ToMap() map[string]interface{} {
	data, _ := json.Marshal(c)
	var result map[string]interface{}
	json.Unmarshal(data, &result)
	return result
}

// GetString returns a string value from the configuration
func (c *Config) GetString(path string) (string, error) {
	val, err := c.lookup(path)
	if err != nil {
		return "", err
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("path %s does not point to a string value", path)
	}
	return s, nil
}

// GetInt returns an integer value from the configuration
func (c *Config) GetInt(path string) (int, error) {
	val, err := c.lookup(path)
	if err != nil {
		return 0, err
	}
	f, ok := val.(float64)
	if !ok {
		return 0, fmt.Errorf("path %s does not point to a numeric value", path)
	}
	return int(f), nil
}

// GetBool returns a boolean value from the configuration
func (c *Config) GetBool(path string) (bool, error) {
	val, err := c.lookup(path)
	if err != nil {
		return false, err
	}
	b, ok := val.(bool)
	if !ok {
		return false, fmt.Errorf("path %s does not point to a boolean value", path)
	}
	return b, nil
}

func (c *Config) lookup(path string) (interface{}, error) {
	parts := strings.Split(path, ".")
	current := c.ToMap()

	for i, part := range parts {
		if i == len(parts)-1 {
			val, ok := current[part]
			if !ok {
				return nil, fmt.Errorf("path not found: %s", path)
			}
			return val, nil
		}

		next, ok := current[part].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid path: %s", path)
		}
		current = next
	}

	return nil, fmt.Errorf("path not found: %s", path)
}
