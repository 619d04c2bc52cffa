package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Server          ServerConfig              `json:"server"`
	Database        DatabaseConfig            `json:"database"`
	Providers       map[string]ProviderConfig `json:"providers"`
	DefaultProvider string                    `json:"default_provider"`
	DefaultModel    string                    `json:"default_model"`
	Cache           CacheConfig               `json:"cache"`
	Pricing         PricingConfig             `json:"pricing"`
	Skills          SkillsConfig              `json:"skills"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

type ProviderConfig struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	BaseURL      string `json:"base_url,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
	DefaultModel string `json:"default_model"`
	MaxTokens    int    `json:"max_tokens"`
}

// CacheConfig controls the conversation core's caching policy. The defaults
// are deliberately small and session-independent; nothing downstream depends
// on their specific values.
type CacheConfig struct {
	// SideTTLSeconds is how long session side data stays fresh, measured
	// from write time.
	SideTTLSeconds int `json:"side_ttl_seconds"`
	// FreshnessWindow is how many trailing turns are always re-sent fresh
	// instead of being marked cacheable.
	FreshnessWindow int `json:"freshness_window"`
	// SessionMaxIdleSeconds is the inactivity threshold past which a
	// session is reaped.
	SessionMaxIdleSeconds int `json:"session_max_idle_seconds"`
	// ReapIntervalSeconds is how often the background sweep runs.
	ReapIntervalSeconds int `json:"reap_interval_seconds"`
}

// PricingConfig holds per-million-token rates for the cost ledger.
type PricingConfig struct {
	InputPerMTok      float64 `json:"input_per_mtok"`
	CacheWritePerMTok float64 `json:"cache_write_per_mtok"`
	CacheReadPerMTok  float64 `json:"cache_read_per_mtok"`
	OutputPerMTok     float64 `json:"output_per_mtok"`
}

type SkillsConfig struct {
	Dir string `json:"dir"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".librarian"))
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file: run on defaults.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("database.host", "")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "librarian")
	viper.SetDefault("database.database", "librarian")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("default_provider", "anthropic")
	viper.SetDefault("default_model", "claude-sonnet-4-20250514")

	viper.SetDefault("providers.anthropic.type", "anthropic")
	viper.SetDefault("providers.anthropic.name", "Anthropic")
	viper.SetDefault("providers.anthropic.default_model", "claude-sonnet-4-20250514")
	viper.SetDefault("providers.anthropic.max_tokens", 4000)

	viper.SetDefault("cache.side_ttl_seconds", 300)
	viper.SetDefault("cache.freshness_window", 2)
	viper.SetDefault("cache.session_max_idle_seconds", 3600)
	viper.SetDefault("cache.reap_interval_seconds", 300)

	viper.SetDefault("pricing.input_per_mtok", 3.00)
	viper.SetDefault("pricing.cache_write_per_mtok", 3.75)
	viper.SetDefault("pricing.cache_read_per_mtok", 0.30)
	viper.SetDefault("pricing.output_per_mtok", 15.00)

	viper.SetDefault("skills.dir", "./skills")
}

func loadEnvOverrides(cfg *Config) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	if port := os.Getenv("LIBRARIAN_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("LIBRARIAN_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if dir := os.Getenv("LIBRARIAN_SKILLS_DIR"); dir != "" {
		cfg.Skills.Dir = dir
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		provider := cfg.Providers["anthropic"]
		provider.APIKey = key
		cfg.Providers["anthropic"] = provider
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		provider := cfg.Providers["openai"]
		if provider.Type == "" {
			provider.Type = "openai"
			provider.Name = "OpenAI"
		}
		provider.APIKey = key
		cfg.Providers["openai"] = provider
	}

	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}
}
