package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSystemPrompt constrains the assistant to mental-health support in a Nepali context.
const DefaultSystemPrompt = "You are a mental assistant bot and help other with mental health related stuffs and clear all their problems and doubts related to this and you whole purpose to assist with this stuff and you will give answers to ppls questions mainly on the basis of country nepal and only work is on mental health nothing more than that"

// Config holds the application configuration
type Config struct {
	LLM      LLMConfig     `mapstructure:"llm"`
	Server   ServerConfig  `mapstructure:"server"`
	History  HistoryConfig `mapstructure:"history"`
	Session  SessionConfig `mapstructure:"session"`
	LogLevel string        `mapstructure:"log_level"`
}

// LLMConfig holds the chat-completion endpoint configuration
type LLMConfig struct {
	BaseURL      string  `mapstructure:"base_url"`
	APIKey       string  `mapstructure:"api_key"`
	Model        string  `mapstructure:"model"`
	Temperature  float32 `mapstructure:"temperature"`
	SystemPrompt string  `mapstructure:"system_prompt"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// HistoryConfig selects the conversation store.
type HistoryConfig struct {
	Driver string `mapstructure:"driver"`
}

// SessionConfig bounds the live chat sessions of the HTTP server. Zero
// values disable the matching limit.
type SessionConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxSessions   int           `mapstructure:"max_sessions"`
}

const (
	HistoryDriverMemory = "memory"
	HistoryDriverSQLite = "sqlite"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.base_url", "https://api.together.xyz/v1")
	v.SetDefault("llm.model", "mistralai/Mixtral-8x7B-Instruct-v0.1")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.system_prompt", DefaultSystemPrompt)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("history.driver", HistoryDriverMemory)
	v.SetDefault("session.idle_ttl", "30m")
	v.SetDefault("session.sweep_interval", "1m")
	v.SetDefault("session.max_sessions", 1000)
	v.SetDefault("log_level", "info")
}

// Load reads config.yaml (or the file named by CONFIG_PATH) and applies
// MINDCARE_* environment overrides. A missing default config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MINDCARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	switch config.History.Driver {
	case HistoryDriverMemory, HistoryDriverSQLite:
	default:
		return nil, errors.New("history.driver must be 'memory' or 'sqlite'")
	}
	if config.Session.IdleTTL < 0 || config.Session.SweepInterval < 0 || config.Session.MaxSessions < 0 {
		return nil, errors.New("session limits must not be negative")
	}

	return &config, nil
}
