package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/jdelaire/notebot/internal/keychain"
)

const (
	configName    = ".notebot" // .yaml is implicit
	envPrefix     = "NOTEBOT"
	configPathEnv = "NOTEBOT_CONFIG_PATH"
)

// ErrNoToken is returned by RequireToken when no bot token is configured.
var ErrNoToken = errors.New("telegram token not configured (set NOTEBOT_TELEGRAM_TOKEN or run `notebot token set`)")

// Config is the resolved runtime configuration.
type Config struct {
	Telegram   Telegram
	Database   Database
	Log        Log
	Session    Session
	Notes      Notes
	Dispatcher Dispatcher

	// File is the config file that was read, empty if none.
	File string
}

type Telegram struct {
	Token   string
	BaseURL string
}

type Database struct {
	Path string
}

type Log struct {
	Level  string
	Format string
}

type Session struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type Notes struct {
	Cooldown time.Duration
}

type Dispatcher struct {
	Workers int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.base_url", "https://api.telegram.org")
	v.SetDefault("database.path", "notebot.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.sweep_interval", 10*time.Minute)
	v.SetDefault("notes.cooldown", 5*time.Minute)
	v.SetDefault("dispatcher.workers", 8)
}

// Load reads configuration from defaults, the optional config file and
// NOTEBOT_* environment variables, in increasing priority. file, if set,
// names the config file explicitly; otherwise .notebot.yaml is looked up in
// $NOTEBOT_CONFIG_PATH and the working directory. The keychain is not
// consulted here; see RequireToken.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		if override := os.Getenv(configPathEnv); override != "" {
			v.AddConfigPath(override)
		}
		v.AddConfigPath("./")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	dbPath, err := homedir.Expand(v.GetString("database.path"))
	if err != nil {
		return nil, fmt.Errorf("expand database.path: %w", err)
	}

	cfg := &Config{
		Telegram: Telegram{
			Token:   v.GetString("telegram.token"),
			BaseURL: v.GetString("telegram.base_url"),
		},
		Database: Database{Path: dbPath},
		Log: Log{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Session: Session{
			TTL:           v.GetDuration("session.ttl"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
		},
		Notes:      Notes{Cooldown: v.GetDuration("notes.cooldown")},
		Dispatcher: Dispatcher{Workers: v.GetInt("dispatcher.workers")},
		File:       v.ConfigFileUsed(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	if c.Database.Path == "" {
		return errors.New("database.path must not be empty")
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must not be negative, got %s", c.Session.TTL)
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive, got %s", c.Session.SweepInterval)
	}
	if c.Notes.Cooldown < 0 {
		return fmt.Errorf("notes.cooldown must not be negative, got %s", c.Notes.Cooldown)
	}
	if c.Dispatcher.Workers <= 0 {
		return fmt.Errorf("dispatcher.workers must be positive, got %d", c.Dispatcher.Workers)
	}
	return nil
}

// SlogLevel maps the configured level name to a slog level.
func (l Log) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RequireToken makes sure a bot token is set. An empty token is filled from
// the OS keychain; ErrNoToken is returned if it is still missing.
func (c *Config) RequireToken() error {
	if c.Telegram.Token == "" {
		tok, err := keychain.Token()
		if err != nil {
			return fmt.Errorf("read token from keychain: %w", err)
		}
		c.Telegram.Token = tok
	}
	if c.Telegram.Token == "" {
		return ErrNoToken
	}
	return nil
}
