// Package config loads and validates converter configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qwfang/go-md2thesis/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidField    = errors.New("invalid config field")
)

// Field limits.
const (
	MaxPathLength  = 4096
	MaxBinLength   = 255
	MaxWorkers     = 64
	MaxTimeoutSecs = 600
)

// Config holds all configuration for thesis generation.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Diagram DiagramConfig `yaml:"diagram"`
	Render  RenderConfig  `yaml:"render"`
}

// OutputConfig defines output destinations.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Output directory (empty = same as source)
}

// DiagramConfig defines mermaid rasterization options.
type DiagramConfig struct {
	Bin         string `yaml:"bin"`         // mmdc binary (default: "mmdc" on PATH)
	CacheDir    string `yaml:"cacheDir"`    // Rendered image cache (empty = temp dir)
	TimeoutSecs int    `yaml:"timeoutSecs"` // Per-diagram timeout (default: 30)
	Workers     int    `yaml:"workers"`     // Parallel renders (0 = auto)
}

// RenderConfig toggles the output formats.
type RenderConfig struct {
	DOCX bool `yaml:"docx"`
	HTML bool `yaml:"html"`
	PDF  bool `yaml:"pdf"`
}

// Validate checks field values and lengths.
// Called automatically by LoadConfig, but available for consumers who
// construct Config manually.
func (c *Config) Validate() error {
	if len(c.Output.Dir) > MaxPathLength {
		return fmt.Errorf("%w: output.dir exceeds %d chars", ErrInvalidField, MaxPathLength)
	}
	if len(c.Diagram.Bin) > MaxBinLength {
		return fmt.Errorf("%w: diagram.bin exceeds %d chars", ErrInvalidField, MaxBinLength)
	}
	if len(c.Diagram.CacheDir) > MaxPathLength {
		return fmt.Errorf("%w: diagram.cacheDir exceeds %d chars", ErrInvalidField, MaxPathLength)
	}
	if c.Diagram.TimeoutSecs < 0 || c.Diagram.TimeoutSecs > MaxTimeoutSecs {
		return fmt.Errorf("%w: diagram.timeoutSecs must be between 0 and %d, got %d",
			ErrInvalidField, MaxTimeoutSecs, c.Diagram.TimeoutSecs)
	}
	if c.Diagram.Workers < 0 || c.Diagram.Workers > MaxWorkers {
		return fmt.Errorf("%w: diagram.workers must be between 0 and %d, got %d",
			ErrInvalidField, MaxWorkers, c.Diagram.Workers)
	}
	return nil
}

// DefaultConfig returns the defaults used when no config file is given:
// DOCX output only, mmdc from PATH, auto-sized worker pool.
func DefaultConfig() *Config {
	return &Config{
		Diagram: DiagramConfig{Bin: "mmdc", TimeoutSecs: 30},
		Render:  RenderConfig{DOCX: true},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise it's treated as a config name and searched in standard
// locations. Returns an error if the file is not found (no silent
// fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name, trying .yaml and
// .yml in the current directory, then ~/.config/go-md2thesis/.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if regularFileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-md2thesis", name+ext)
			if regularFileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

func regularFileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
