package config

import "os"

// Retrieval sources.
const (
	SourceMemory        = "memory"
	SourceProcessedFile = "processed_file"
)

// Extraction modes.
const (
	ExtractLocal  = "local"
	ExtractRemote = "remote"
)

// Chat providers.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvBackendURL = "RAGPIPE_BACKEND_URL"
	EnvAPIKey     = "RAGPIPE_API_KEY"
	EnvChatURL    = "RAGPIPE_CHAT_URL"
	EnvChatAPIKey = "RAGPIPE_CHAT_API_KEY"
	EnvChatModel  = "RAGPIPE_CHAT_MODEL"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:11434"
	}
	if cfg.Chat.Provider == "" {
		cfg.Chat.Provider = ProviderOllama
	}
	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = "http://localhost:11434"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "llama3.2"
	}
	if cfg.Extract.Mode == "" {
		cfg.Extract.Mode = ExtractLocal
	}
	if cfg.Embedding.CacheTTLMinutes == 0 {
		cfg.Embedding.CacheTTLMinutes = 60
	}
	if cfg.Retrieval.WindowRadius == 0 {
		cfg.Retrieval.WindowRadius = 300
	}
	if cfg.Retrieval.Source == "" {
		cfg.Retrieval.Source = SourceMemory
	}
	if cfg.Log.File != "" {
		if cfg.Log.MaxSizeMB == 0 {
			cfg.Log.MaxSizeMB = 10
		}
		if cfg.Log.MaxBackups == 0 {
			cfg.Log.MaxBackups = 5
		}
		if cfg.Log.MaxAgeDays == 0 {
			cfg.Log.MaxAgeDays = 30
		}
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf"}
	}
	if cfg.Watch.OutputDir == "" {
		cfg.Watch.OutputDir = "./bin"
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}

// ApplyEnv overrides credentials and endpoints from the environment.
// Unset variables leave cfg untouched.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv(EnvChatURL); v != "" {
		cfg.Chat.BaseURL = v
	}
	if v := os.Getenv(EnvChatAPIKey); v != "" {
		cfg.Chat.APIKey = v
	}
	if v := os.Getenv(EnvChatModel); v != "" {
		cfg.Chat.Model = v
	}
}
