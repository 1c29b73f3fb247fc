// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName        = "overvoice"
	configFileName = "config.json"
)

// Config represents the application configuration. The zero value for any
// field means "use the built-in default" so a hand-edited partial file works.
type Config struct {
	// ClientID overrides the application identifier sent on the RPC connection.
	ClientID string `json:"client_id,omitempty"`
	// RPCEndpoint overrides the local RPC websocket endpoint.
	RPCEndpoint string `json:"rpc_endpoint,omitempty"`
	// RPCOrigin overrides the origin header sent on the RPC connection.
	RPCOrigin string `json:"rpc_origin,omitempty"`
	// TokenURL overrides the endpoint that exchanges authorization codes.
	TokenURL string `json:"token_url,omitempty"`

	// HotkeyEnabled controls the global overlay toggle shortcut.
	HotkeyEnabled bool `json:"hotkey_enabled"`
}

// Load loads configuration from the config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// DataDir returns the directory holding the app's durable state, creating it
// if necessary.
func DataDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	path := filepath.Join(dir, appName)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return path, nil
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		HotkeyEnabled: true,
	}
}
