// Package config provides configuration loading and structs for ragpipe.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Chat      ChatConfig      `yaml:"chat"`
	Extract   ExtractConfig   `yaml:"extract"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Watch     WatchConfig     `yaml:"watch"`
}

// LogConfig holds the optional rotating log file.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// PDFRoots limits the PDFs the API may ingest. Empty means the watch directories.
	PDFRoots []string `yaml:"pdf_roots"`
}

// PDFRootsOrDefault returns the directories API ingestion may read from.
func (c *Config) PDFRootsOrDefault() []string {
	if len(c.Server.PDFRoots) > 0 {
		return c.Server.PDFRoots
	}
	return c.Watch.Directories
}

// BackendConfig points at the context backend serving /extract-pdf,
// /generate-embedding and /query.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	// TimeoutSeconds of 0 means no client timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// ChatConfig selects the chat-completion backend.
type ChatConfig struct {
	Provider       string `yaml:"provider"` // "ollama" or "openai"
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ExtractConfig chooses local or remote PDF text extraction.
type ExtractConfig struct {
	Mode string `yaml:"mode"` // "local" or "remote"
}

// EmbeddingConfig controls embedding generation during ingestion.
type EmbeddingConfig struct {
	Enabled         bool `yaml:"enabled"`
	CacheTTLMinutes int  `yaml:"cache_ttl_minutes"`
}

// RetrievalConfig holds keyword-window settings.
type RetrievalConfig struct {
	WindowRadius int    `yaml:"window_radius"`
	Source       string `yaml:"source"` // "memory" or "processed_file"
}

// WatchConfig holds PDF drop-folder settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	OutputDir   string   `yaml:"output_dir"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Log.File = expandPath(cfg.Log.File, configDir)
	cfg.Watch.OutputDir = expandPath(cfg.Watch.OutputDir, configDir)
	for i := range cfg.Server.PDFRoots {
		cfg.Server.PDFRoots[i] = expandPath(cfg.Server.PDFRoots[i], configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns a defaulted Config when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = &Config{}
		ApplyDefaults(cfg)
		return cfg, nil
	}
	return cfg, err
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
