// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads wlproxy's YAML configuration file, overridable
// by environment variables the way adoctl's pkg/config layers profile
// and env-var overrides atop a base file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultListenName is the socket filename this proxy creates under
// $XDG_RUNTIME_DIR for clients to dial instead of the real compositor.
const DefaultListenName = "wayland-1"

// DefaultFDQueueLimit bounds how many ancillary fds a single Recvmsg
// batch may carry before endpoint.FillRead's SCM_RIGHTS buffer would
// truncate mid control-message (spec §4.2's fd backpressure note).
const DefaultFDQueueLimit = 28

// DefaultPollTimeoutMillis is how long dispatch.Loop.RunOnce blocks
// waiting for readiness when the caller doesn't override it.
const DefaultPollTimeoutMillis = -1

// Config is wlproxy's complete runtime configuration.
type Config struct {
	// ListenName is the socket filename created under $XDG_RUNTIME_DIR.
	ListenName string `yaml:"listen_name"`
	// CompositorSocketPath overrides the $XDG_RUNTIME_DIR/$WAYLAND_DISPLAY
	// resolution when set, for pointing at a non-default compositor socket.
	CompositorSocketPath string `yaml:"compositor_socket_path,omitempty"`
	FDQueueLimit         int    `yaml:"fd_queue_limit"`
	PollTimeoutMillis    int    `yaml:"poll_timeout_millis"`
	LogLevel             string `yaml:"log_level"`
}

// Default returns a Config with every field at its documented default.
func Default() *Config {
	return &Config{
		ListenName:        DefaultListenName,
		FDQueueLimit:      DefaultFDQueueLimit,
		PollTimeoutMillis: DefaultPollTimeoutMillis,
		LogLevel:          "info",
	}
}

// GetConfigPath returns the path to wlproxy's config file, under the
// user's XDG config directory.
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "wlproxy", "config.yaml"), nil
}

// Load reads the config file (if present), applies environment
// overrides, and returns a fully populated Config. A missing file is
// not an error — defaults plus env vars are enough to run.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("config: resolving config path: %w", err)
	}
	cfg := Default()
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WLPROXY_LISTEN_NAME"); v != "" {
		cfg.ListenName = v
	}
	if v := os.Getenv("WLPROXY_COMPOSITOR_SOCKET_PATH"); v != "" {
		cfg.CompositorSocketPath = v
	}
	if v := os.Getenv("WLPROXY_FD_QUEUE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FDQueueLimit = n
		}
	}
	if v := os.Getenv("WLPROXY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Save writes cfg to its default path, creating the parent directory
// if needed.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
