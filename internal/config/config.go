package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/reillywatson/doratracker/internal/github"
	"gopkg.in/yaml.v3"
)

// Config holds the optional settings file for dora-payload
type Config struct {
	GitHub  GitHubConfig  `yaml:"github"`
	Logging LoggingConfig `yaml:"logging"`
}

// GitHubConfig selects the API root used for commit lookups
type GitHubConfig struct {
	APIURL string `yaml:"api_url"` // e.g. https://ghe.example.com/api/v3/
}

// LoggingConfig holds all logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Default returns the settings used when no file is given
func Default() Config {
	return Config{
		GitHub: GitHubConfig{
			APIURL: github.DefaultBaseURL,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads a YAML settings file on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}
