// Package config loads the service configuration from the platform-native
// backend, environment variables, and the platform secret store.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Config struct {
	Server    ServerConfig
	Ollama    OllamaConfig
	Storage   StorageConfig
	Catalog   CatalogConfig
	Agent     AgentConfig
	Retrieval RetrievalConfig
	Chat      ChatConfig
	Favorites FavoritesConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port    int
	MCPPort int
	Token   string
}

type OllamaConfig struct {
	BaseURL    string
	EmbedModel string
}

type StorageConfig struct {
	DataDir string
}

type CatalogConfig struct {
	TMDBAPIKey string
}

type AgentConfig struct {
	GroqAPIKey string
	Model      string
}

type RetrievalConfig struct {
	TopK int
}

type ChatConfig struct {
	MaxHistory int
}

type FavoritesConfig struct {
	Path string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Port:    8000,
			MCPPort: 8001,
		},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			EmbedModel: "nomic-embed-text",
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Agent: AgentConfig{
			Model: "llama-3.3-70b-versatile",
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Chat: ChatConfig{
			MaxHistory: 10,
		},
		Favorites: FavoritesConfig{
			Path: filepath.Join(dataDir, "favourite.json"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.cinetech.app) and
// secrets fall back to macOS Keychain (service: cinetech).
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/cinetech/config.json
// and secrets fall back to $XDG_DATA_HOME/cinetech/secrets.json.
//
// Environment variables (CINETECH_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret-store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try the platform secret store for API keys still empty after env.
	if cfg.Catalog.TMDBAPIKey == "" {
		if key, err := kc.Get("cinetech", "tmdb_api_key"); err == nil && key != "" {
			cfg.Catalog.TMDBAPIKey = key
		}
	}
	if cfg.Agent.GroqAPIKey == "" {
		if key, err := kc.Get("cinetech", "groq_api_key"); err == nil && key != "" {
			cfg.Agent.GroqAPIKey = key
		}
	}

	if cfg.Catalog.TMDBAPIKey == "" {
		msg := "missing required config: TMDb API key. " +
			"Set it via environment variable CINETECH_TMDB_API_KEY" +
			apiKeyHint("tmdb_api_key")
		return Config{}, fmt.Errorf("%s", msg)
	}
	if cfg.Agent.GroqAPIKey == "" {
		msg := "missing required config: Groq API key. " +
			"Set it via environment variable CINETECH_GROQ_API_KEY" +
			apiKeyHint("groq_api_key")
		return Config{}, fmt.Errorf("%s", msg)
	}

	return cfg, nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
