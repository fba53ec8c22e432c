package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

// keySpec defines a configurable key: where it lives in Config, its env
// override, and how to apply and read it.
type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, s string, n int)
	extract func(cfg Config) string
}

var specs = []keySpec{
	{
		key: "server_port", typ: kInt, env: "CINETECH_SERVER_PORT",
		apply:   func(cfg *Config, _ string, n int) { cfg.Server.Port = n },
		extract: func(cfg Config) string { return strconv.Itoa(cfg.Server.Port) },
	},
	{
		key: "mcp_port", typ: kInt, env: "CINETECH_MCP_PORT",
		apply:   func(cfg *Config, _ string, n int) { cfg.Server.MCPPort = n },
		extract: func(cfg Config) string { return strconv.Itoa(cfg.Server.MCPPort) },
	},
	{
		key: "server_token", typ: kString, env: "CINETECH_SERVER_TOKEN", secret: true,
		apply:   func(cfg *Config, s string, _ int) { cfg.Server.Token = s },
		extract: func(cfg Config) string { return cfg.Server.Token },
	},
	{
		key: "ollama_base_url", typ: kString, env: "CINETECH_OLLAMA_BASE_URL",
		apply:   func(cfg *Config, s string, _ int) { cfg.Ollama.BaseURL = s },
		extract: func(cfg Config) string { return cfg.Ollama.BaseURL },
	},
	{
		key: "embed_model", typ: kString, env: "CINETECH_EMBED_MODEL",
		apply:   func(cfg *Config, s string, _ int) { cfg.Ollama.EmbedModel = s },
		extract: func(cfg Config) string { return cfg.Ollama.EmbedModel },
	},
	{
		key: "data_dir", typ: kString, env: "CINETECH_DATA_DIR",
		apply:   func(cfg *Config, s string, _ int) { cfg.Storage.DataDir = s },
		extract: func(cfg Config) string { return cfg.Storage.DataDir },
	},
	{
		key: "tmdb_api_key", typ: kString, env: "CINETECH_TMDB_API_KEY", secret: true,
		apply:   func(cfg *Config, s string, _ int) { cfg.Catalog.TMDBAPIKey = s },
		extract: func(cfg Config) string { return cfg.Catalog.TMDBAPIKey },
	},
	{
		key: "groq_api_key", typ: kString, env: "CINETECH_GROQ_API_KEY", secret: true,
		apply:   func(cfg *Config, s string, _ int) { cfg.Agent.GroqAPIKey = s },
		extract: func(cfg Config) string { return cfg.Agent.GroqAPIKey },
	},
	{
		key: "agent_model", typ: kString, env: "CINETECH_AGENT_MODEL",
		apply:   func(cfg *Config, s string, _ int) { cfg.Agent.Model = s },
		extract: func(cfg Config) string { return cfg.Agent.Model },
	},
	{
		key: "retrieval_top_k", typ: kInt, env: "CINETECH_RETRIEVAL_TOP_K",
		apply:   func(cfg *Config, _ string, n int) { cfg.Retrieval.TopK = n },
		extract: func(cfg Config) string { return strconv.Itoa(cfg.Retrieval.TopK) },
	},
	{
		key: "max_history", typ: kInt, env: "CINETECH_MAX_HISTORY",
		apply:   func(cfg *Config, _ string, n int) { cfg.Chat.MaxHistory = n },
		extract: func(cfg Config) string { return strconv.Itoa(cfg.Chat.MaxHistory) },
	},
	{
		key: "favorites_path", typ: kString, env: "CINETECH_FAVORITES_PATH",
		apply:   func(cfg *Config, s string, _ int) { cfg.Favorites.Path = s },
		extract: func(cfg Config) string { return cfg.Favorites.Path },
	},
	{
		key: "log_level", typ: kString, env: "CINETECH_LOG_LEVEL",
		apply:   func(cfg *Config, s string, _ int) { cfg.Log.Level = s },
		extract: func(cfg Config) string { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, spec := range specs {
		switch spec.typ {
		case kString:
			s, ok, err := b.GetString(spec.key)
			if err != nil {
				return fmt.Errorf("reading config key %s: %w", spec.key, err)
			}
			if ok {
				spec.apply(cfg, s, 0)
			}
		case kInt:
			n, ok, err := b.GetInt(spec.key)
			if err != nil {
				return fmt.Errorf("reading config key %s: %w", spec.key, err)
			}
			if ok {
				spec.apply(cfg, "", n)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, spec := range specs {
		v := os.Getenv(spec.env)
		if v == "" {
			continue
		}
		switch spec.typ {
		case kString:
			spec.apply(cfg, v, 0)
		case kInt:
			if n, err := strconv.Atoi(v); err == nil {
				spec.apply(cfg, "", n)
			}
		}
	}
}
