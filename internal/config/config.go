package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string        `mapstructure:"app_port"`
	DatabaseURL         string        `mapstructure:"database_url"`
	TimeZone            string        `mapstructure:"time_zone"`
	SessionTTL          time.Duration `mapstructure:"session_ttl"`
	SessionCookieName   string        `mapstructure:"session_cookie_name"`
	SessionCookieSecure bool          `mapstructure:"session_cookie_secure"`
	LogLevel            string        `mapstructure:"log_level"`
	LogFormat           string        `mapstructure:"log_format"`

	location *time.Location
}

// Location is the reference time zone used to decide what "today" is.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func Load() (Config, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile reads settings from an optional YAML file and the environment.
// Environment variables take precedence over the file.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("app_port", "8080")
	v.SetDefault("time_zone", "Europe/Moscow")
	v.SetDefault("session_ttl", "336h")
	v.SetDefault("session_cookie_name", "sessionid")
	v.SetDefault("session_cookie_secure", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("database_url", "")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL required")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}

	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return Config{}, fmt.Errorf("TIME_ZONE: %w", err)
	}
	cfg.location = location

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be one of: text, json")
	}

	return cfg, nil
}
