// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() invalid: %v", err)
	}
	if cfg.Server.URL == "" {
		t.Error("default server URL empty")
	}
}

func TestLoadFromPathTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
url = "http://backend:9000/"

[ui]
theme = "light"
sidebar_width = 40
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.URL != "http://backend:9000" {
		t.Errorf("URL = %q, want trailing slash trimmed", cfg.Server.URL)
	}
	if cfg.UI.Theme != "light" || cfg.UI.SidebarWidth != 40 {
		t.Errorf("UI = %+v", cfg.UI)
	}
}

func TestLoadFromPathJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"server":{"url":"https://api.example.com"},"ui":{"theme":"dark","sidebar_width":28}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.URL != "https://api.example.com" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("DOCCHAT_SERVER_URL", "http://from-env:8000")
	t.Setenv("DOCCHAT_THEME", "light")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[server]\nurl = \"http://from-file:8000\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.URL != "http://from-env:8000" {
		t.Errorf("URL = %q, env should override file", cfg.Server.URL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.Server.URL = "backend:9000" }},
		{"bad scheme", func(c *Config) { c.Server.URL = "ftp://x" }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"sidebar too narrow", func(c *Config) { c.UI.SidebarWidth = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted invalid config")
			}
		})
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Server.URL = "http://saved:8000"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Server.URL != "http://saved:8000" {
		t.Errorf("round trip URL = %q", loaded.Server.URL)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	updated := Default()
	updated.Server.URL = "http://changed:8000"
	if err := SaveTOML(updated, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Server.URL != "http://changed:8000" {
			t.Errorf("reloaded URL = %q", cfg.Server.URL)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never fired")
	}
}
