package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"

	"github.com/dangdungcntt/go-twigpad"
)

const defaultConfigFile = "twigpad.toml"

// cliConfig is the content of twigpad.toml.
type cliConfig struct {
	LogLevel string `toml:"log_level"`
	Color    string `toml:"color"`
	// Indent is the number of spaces per beautify level.
	Indent int                `toml:"indent"`
	Render twigpad.Config     `toml:"render"`
	Head   twigpad.HeadConfig `toml:"head"`
}

func defaultCLIConfig() *cliConfig {
	return &cliConfig{
		LogLevel: "warn",
		Color:    "auto",
		Indent:   len(twigpad.DefaultIndent),
		Render:   twigpad.DefaultConfig(),
		Head:     twigpad.HeadConfig{Viewport: "width=device-width, initial-scale=1.0"},
	}
}

// loadConfig reads the config file over the defaults. A missing file
// means the defaults.
func loadConfig(path string) (*cliConfig, error) {
	cfg := defaultCLIConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Indent < 0 {
		return nil, fmt.Errorf("invalid indent %d", cfg.Indent)
	}
	return cfg, nil
}

// writeConfig writes cfg to path in one atomic step.
func writeConfig(path string, cfg *cliConfig) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *cliConfig) indentUnit() string {
	return strings.Repeat(" ", c.Indent)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
}
