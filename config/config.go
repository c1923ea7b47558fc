package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Session   SessionConfig   `mapstructure:"session"`
	LLM       LLMConfig       `mapstructure:"llm"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug            bool   `mapstructure:"debug"`
	LogLevel         string `mapstructure:"log_level"`
	DefaultAppliance string `mapstructure:"default_appliance"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// CatalogConfig locates the parts-catalog snapshot and its HTML sources.
// SnapshotPath is preferred; HTMLSources is the one-time rebuild fallback,
// keyed by appliance kind. SourcePages holds live URLs for the ingest command.
type CatalogConfig struct {
	SnapshotPath string            `mapstructure:"snapshot_path"`
	HTMLSources  map[string]string `mapstructure:"html_sources"`
	SourcePages  map[string]string `mapstructure:"source_pages"`
}

// KnowledgeConfig locates the retrieval corpus
type KnowledgeConfig struct {
	Path     string `mapstructure:"path"`
	HTMLGlob string `mapstructure:"html_glob"`
}

// SessionConfig selects the session store backend
type SessionConfig struct {
	StoreType string      `mapstructure:"store_type"` // inmemory, redis
	Shards    int         `mapstructure:"shards"`
	Redis     RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return fmt.Sprintf("%s:%s", r.Host, port)
}

// LLMConfig contains the generative-answer provider configuration
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // gemini
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	TopP        float64       `mapstructure:"top_p"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (s SessionConfig) Validate() error {
	switch s.StoreType {
	case "inmemory", "":
	case "redis":
		if s.Redis.Host == "" {
			return fmt.Errorf("session.redis.host is required when session.store_type is redis")
		}
	default:
		return fmt.Errorf("unsupported session store type: %s", s.StoreType)
	}
	return nil
}

// LoadConfig loads config from file with PARTSASSIST_* env overrides.
// A missing config file is not an error; defaults and env vars apply.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_appliance", "dishwasher")
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("catalog.snapshot_path", "data/parts_catalog.json")
	viper.SetDefault("knowledge.path", "data/knowledge_base.txt")
	viper.SetDefault("knowledge.html_glob", "data/*.html")
	viper.SetDefault("session.store_type", "inmemory")
	viper.SetDefault("session.shards", 16)
	viper.SetDefault("llm.provider", "gemini")
	viper.SetDefault("llm.model", "gemini-2.5-flash-preview-09-2025")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.top_p", 0.9)
	viper.SetDefault("llm.max_tokens", 1024)
	viper.SetDefault("llm.timeout", "30s")

	if path == "" {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("PARTSASSIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := config.Session.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
