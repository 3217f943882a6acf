/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/substantialcattle5/deduce/internal/constants"
)

// FileConfig holds the optional defaults read from the user's config
// file. Every field can still be overridden by a command line flag.
type FileConfig struct {
	Extension    string `yaml:"extension,omitempty"`
	MinSize      string `yaml:"min_size,omitempty"`
	Workers      int    `yaml:"workers,omitempty"`
	CachePath    string `yaml:"cache_path,omitempty"`
	CacheBackend string `yaml:"cache_backend,omitempty"`
	ManifestDir  string `yaml:"manifest_dir,omitempty"`
	LogFile      string `yaml:"log_file,omitempty"`
}

// DefaultConfigPath returns the standard location of the defaults file.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "deduce", "config.yaml")
}

// DefaultCacheDir returns the directory cache files and run manifests
// live under when no explicit path is configured.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deduce"
	}
	return filepath.Join(home, ".cache", "deduce")
}

// LoadFileConfig reads the defaults file. A missing file is not an
// error; the zero config is returned so flags and built in defaults
// apply.
func LoadFileConfig(path string) (*FileConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return &FileConfig{}, nil
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	var config FileConfig
	if err := yaml.Unmarshal(configData, &config); err != nil {
		return nil, fmt.Errorf("error parsing configuration %s: %w", path, err)
	}

	return &config, nil
}

// SaveFileConfig writes the defaults file, creating parent directories
// as needed.
func SaveFileConfig(path string, config *FileConfig) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return fmt.Errorf("no configuration path available")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.StandardDirPerms); err != nil {
		return fmt.Errorf("error creating configuration directory: %w", err)
	}

	if err := os.WriteFile(path, data, constants.StandardFilePerms); err != nil {
		return fmt.Errorf("error writing configuration: %w", err)
	}

	return nil
}
