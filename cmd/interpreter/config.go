package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/polyglot-labs/interpreter/agent/openai"
	"github.com/polyglot-labs/interpreter/dialogue"
	"github.com/polyglot-labs/interpreter/server"
)

// config aggregates subsystem configuration for the binary. Each section
// delegates to that subsystem's defaults and Merge semantics.
type config struct {
	Agent    openai.Config   `json:"agent"`
	Dialogue dialogue.Config `json:"dialogue"`
	Server   server.Config   `json:"server"`
}

func defaultConfig() config {
	return config{
		Agent:    openai.DefaultConfig(),
		Dialogue: dialogue.DefaultConfig(),
		Server:   server.DefaultConfig(),
	}
}

func (c *config) merge(source *config) {
	c.Agent.Merge(&source.Agent)
	c.Dialogue.Merge(&source.Dialogue)
	c.Server.Merge(&source.Server)
}

// loadConfig returns defaults merged with the JSON file at filename, or
// plain defaults when filename is empty.
func loadConfig(filename string) (*config, error) {
	cfg := defaultConfig()
	if filename == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.merge(&loaded)
	return &cfg, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
