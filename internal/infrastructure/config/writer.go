package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultHeader = `# famgraph configuration
#
# Precedence (highest first): command-line flags, FAMGRAPH_* environment
# variables (e.g. FAMGRAPH_SOURCE_SESSION_ID), this file, built-in defaults.
# Set source.session_id to the fssessionid cookie of a signed-in session,
# preferably through the environment.

`

// WriteDefault creates the .famgraph directory and writes a default config
// file. It returns the path written.
func WriteDefault(basePath string) (string, error) {
	configDir := ConfigDir(basePath)
	configFile := filepath.Join(configDir, DefaultConfigFile)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configFile)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configFile, append([]byte(defaultHeader), data...), 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configFile, nil
}

// Marshal renders cfg as YAML with the session id masked.
func Marshal(cfg *Config) ([]byte, error) {
	shown := *cfg
	if shown.Source.SessionID != "" {
		shown.Source.SessionID = "********"
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&shown); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return buf.Bytes(), nil
}

// Exists checks if a famgraph config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
