package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the default config file name
	ConfigFileName = ".space-dns.yaml"

	// AlternateConfigFileName is an alternate config file name
	AlternateConfigFileName = "space-dns.yaml"

	// GlobalConfigDir is the global config directory
	GlobalConfigDir = ".config/space-dns"
)

// Loader loads and merges configurations from multiple sources
type Loader struct {
	workDir string
	homeDir string
}

// NewLoader creates a new config loader
func NewLoader(workDir string) (*Loader, error) {
	// Resolve absolute work directory
	absWorkDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory: %w", err)
	}

	// Get home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return &Loader{
		workDir: absWorkDir,
		homeDir: homeDir,
	}, nil
}

// Load loads and merges configurations from all sources
// Priority (highest to lowest):
// 1. Project-level config (.space-dns.yaml in workDir)
// 2. Global config (~/.config/space-dns/config.yaml)
// 3. Defaults
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	config := Defaults()

	// Load global config
	globalConfig, err := l.loadGlobalConfig()
	if err == nil && globalConfig != nil {
		config = config.Merge(globalConfig)
	}

	// Load project config
	projectConfig, err := l.loadProjectConfig()
	if err == nil && projectConfig != nil {
		config = config.Merge(projectConfig)
	}

	// Validate merged config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadFromFile loads config from a specific file, merged over defaults
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	config, err := l.parseFile(path)
	if err != nil {
		return nil, err
	}

	config = Defaults().Merge(config)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// parseFile reads and parses a single config file without validation
func (l *Loader) parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// loadGlobalConfig loads the global configuration
func (l *Loader) loadGlobalConfig() (*Config, error) {
	configPath := filepath.Join(l.homeDir, GlobalConfigDir, "config.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil // No global config is okay
	}

	return l.parseFile(configPath)
}

// loadProjectConfig loads the project-level configuration
func (l *Loader) loadProjectConfig() (*Config, error) {
	// Try .space-dns.yaml first
	configPath := filepath.Join(l.workDir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return l.parseFile(configPath)
	}

	// Try space-dns.yaml
	configPath = filepath.Join(l.workDir, AlternateConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return l.parseFile(configPath)
	}

	return nil, nil // No project config is okay
}
