package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const devSessionSecret = "dev_secret_change_me"

var ErrMissingSessionSecret = errors.New("SESSION_SECRET must be set to a non-empty, non-default value in production")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env          string        `mapstructure:"app_env"`          // local, dev, production
	Port         string        `mapstructure:"port"`             // HTTP listen port
	LogLevel     string        `mapstructure:"log_level"`        // zerolog level name
	ClientOrigin string        `mapstructure:"client_origin"`    // CORS origin allowed with credentials
	QuestionURL  string        `mapstructure:"question_api_url"` // trivia question endpoint
	WordURL      string        `mapstructure:"word_api_url"`     // random word endpoint
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`    // per outbound request
	DBPath       string        `mapstructure:"db_path"`          // round journal; empty disables it
	HistoryLimit int           `mapstructure:"history_limit"`    // max rows returned by /session/history
	Session      Session       `mapstructure:",squash"`
}

// Session contains session cookie and lifetime settings.
type Session struct {
	Secret     string        `mapstructure:"session_secret"`
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"session_ttl"`
}

// Production reports whether the server runs in production mode.
func (c *Config) Production() bool { return c.Env == "production" }

// Load reads configuration from an optional config file and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("app_env", "local")
	v.SetDefault("port", "5175")
	v.SetDefault("log_level", "info")
	v.SetDefault("client_origin", "http://localhost:5173")
	v.SetDefault("question_api_url", "https://jservice.io/api/random")
	v.SetDefault("word_api_url", "https://random-word-api.herokuapp.com/word")
	v.SetDefault("fetch_timeout", "10s")
	v.SetDefault("db_path", "./data/jeopardy.db")
	v.SetDefault("history_limit", 50)
	v.SetDefault("session_secret", devSessionSecret)
	v.SetDefault("cookie_name", "jeopardy_session")
	v.SetDefault("session_ttl", "24h")

	// Keys are env names lower-cased: PORT -> port, DB_PATH -> db_path.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true) // DB_PATH= disables the journal
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.Production() && (cfg.Session.Secret == "" || cfg.Session.Secret == devSessionSecret) {
		return nil, ErrMissingSessionSecret
	}
	return &cfg, nil
}
