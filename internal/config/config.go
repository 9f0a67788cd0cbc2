// Package config loads planner settings from planner.yaml, PLANNER_* environment
// variables and defaults, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// DevSecret signs tokens when server.jwt_secret is unset. Fine on a laptop only.
const DevSecret = "planner-dev-secret-change-me"

type Config struct {
	DataDir       string              `mapstructure:"data_dir"`
	Server        ServerConfig        `mapstructure:"server"`
	Client        ClientConfig        `mapstructure:"client"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Focus         FocusConfig         `mapstructure:"focus"`
	Log           LogConfig           `mapstructure:"log"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	DBPath         string        `mapstructure:"db_path"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	RequestsPerMin int           `mapstructure:"requests_per_min"`
	Burst          int           `mapstructure:"burst"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
}

type ClientConfig struct {
	URL string `mapstructure:"url"`
	// Timeout of zero means calls wait as long as the context allows.
	Timeout time.Duration `mapstructure:"timeout"`
}

type NotificationsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type FocusConfig struct {
	Pomodoro time.Duration `mapstructure:"pomodoro"`
	DeepWork time.Duration `mapstructure:"deep_work"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "~/.config/planner")
	v.SetDefault("server.addr", "127.0.0.1:8787")
	v.SetDefault("server.db_path", "")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.token_ttl", "24h")
	v.SetDefault("server.requests_per_min", 600)
	v.SetDefault("server.burst", 60)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("client.url", "http://127.0.0.1:8787")
	v.SetDefault("client.timeout", "0s")
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("focus.pomodoro", "25m")
	v.SetDefault("focus.deep_work", "90m")
	v.SetDefault("log.level", "info")
}

// Load reads planner.yaml from $PLANNER_CONFIG_PATH, ~/.config/planner or the
// working directory. An explicit file path overrides the search. A missing
// file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("planner")
		v.SetConfigType("yaml")
		if override := os.Getenv("PLANNER_CONFIG_PATH"); override != "" {
			v.AddConfigPath(override)
		}
		if dir, err := homedir.Expand("~/.config/planner"); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg.resolve()
}

func (c *Config) resolve() (*Config, error) {
	dir, err := homedir.Expand(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("expand data_dir: %w", err)
	}
	c.DataDir = dir
	if c.Server.DBPath == "" {
		c.Server.DBPath = filepath.Join(dir, "backend.db")
	} else if c.Server.DBPath, err = homedir.Expand(c.Server.DBPath); err != nil {
		return nil, fmt.Errorf("expand server.db_path: %w", err)
	}
	if c.Server.TokenTTL <= 0 {
		return nil, fmt.Errorf("server.token_ttl must be positive, got %s", c.Server.TokenTTL)
	}
	if c.Client.Timeout < 0 {
		return nil, fmt.Errorf("client.timeout must not be negative")
	}
	return c, nil
}

// PrefsDir is where local UI state, the session and settings live.
func (c *Config) PrefsDir() string { return filepath.Join(c.DataDir, "prefs") }

// LogPath is used when the terminal UI owns stderr.
func (c *Config) LogPath() string { return filepath.Join(c.DataDir, "planner.log") }

// Secret returns the JWT signing secret and whether it is the dev fallback.
func (c *Config) Secret() (string, bool) {
	if c.Server.JWTSecret == "" {
		return DevSecret, true
	}
	return c.Server.JWTSecret, false
}

// Level parses log.level, falling back to info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
