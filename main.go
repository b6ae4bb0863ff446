// docchat TUI - A terminal chat client for a document-grounded assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/exchange"
	"github.com/jeranaias/docchat-tui/internal/store"
	"github.com/jeranaias/docchat-tui/internal/ui/chat"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/upload"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	serverFlag := flag.String("server", "", "backend base URL (overrides config)")
	dataFlag := flag.String("data", "", "data directory (overrides config)")
	configFlag := flag.String("config", "", "explicit config file path")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("docchat %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "docchat requires an interactive terminal")
		os.Exit(1)
	}

	if err := run(*serverFlag, *dataFlag, *configFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(serverURL, dataDir, configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir, err := cfg.DataDir()
	if err != nil {
		return err
	}
	kv, err := store.OpenSQLiteKV(filepath.Join(dir, "conversations.db"))
	if err != nil {
		return fmt.Errorf("failed to open conversation database: %w", err)
	}
	defer kv.Close()

	st := store.New(kv)
	st.Restore()

	client := api.NewClient(cfg.Server.URL)
	ctrl := exchange.NewController(st, client)
	tracker := &upload.Tracker{}
	theme := styles.NewTheme(cfg.UI.Theme)

	m := chat.New(st, ctrl, client, tracker, theme, cfg.UI.SidebarWidth)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Hot-reload display preferences when the config file changes.
	if configPath == "" {
		if tomlPath, err := config.ConfigPathTOML(); err == nil {
			if _, statErr := os.Stat(tomlPath); statErr == nil {
				watcher, werr := config.NewWatcher(tomlPath, 500*time.Millisecond, func(updated *config.Config) {
					p.Send(chat.ConfigReloadedMsg{Theme: updated.UI.Theme})
				})
				if werr == nil && watcher.Watch() == nil {
					defer watcher.Close()
				}
			}
		}
	}

	_, err = p.Run()
	return err
}
