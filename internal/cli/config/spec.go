package config

import (
	"os"
	"path/filepath"
	"time"
)

// CLIConfig is the configuration for kvdis-cli.
type CLIConfig struct {
	// Server is the line protocol address.
	Server string `koanf:"server"`
	// Timeout bounds dialing and each command round trip.
	Timeout time.Duration `koanf:"timeout"`
	// Output is the reply format: text, json or yaml.
	Output string `koanf:"output"`
	// History is the REPL history file.
	History string `koanf:"history"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "127.0.0.1:7777",
		Timeout: 10 * time.Second,
		Output:  "text",
		History: filepath.Join(homeDir(), ".kvdis", "history"),
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
