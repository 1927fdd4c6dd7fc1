package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// webhookURLPrefix seeds the discord field of a template config so the
// operator sees where the webhook URL belongs.
const webhookURLPrefix = "https://discord.com/api/webhooks/"

// ErrTemplateCreated signals that no config file existed and a template was
// written. The caller must exit without contacting any network endpoint.
var ErrTemplateCreated = errors.New("config template created")

// Config is the on-disk JSON configuration.
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	TargetUser   string `json:"target_user"`
	Discord      string `json:"discord"`
	LogLevel     string `json:"log_level,omitempty"`
	LogFormat    string `json:"log_format,omitempty"`
}

// Env holds process-environment overrides.
type Env struct {
	ConfigPath string `env:"CONFIG_PATH" default:"config.json"`
	StatePath  string `env:"STATE_PATH" default:"state.json"`
	LogLevel   string `env:"LOG_LEVEL"`
	LogFormat  string `env:"LOG_FORMAT"`
}

// LoadEnv reads overrides from the environment, seeded from .env when one
// exists.
func LoadEnv() (*Env, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var e Env
	if err := env.Load(&e, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}
	return &e, nil
}

// Load reads the JSON config file at path. When the file does not exist, a
// template with empty credential fields is written and ErrTemplateCreated
// returned.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if werr := writeTemplate(path); werr != nil {
			return nil, fmt.Errorf("create template config: %w", werr)
		}
		return nil, ErrTemplateCreated
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func writeTemplate(path string) error {
	raw, err := json.MarshalIndent(Config{Discord: webhookURLPrefix}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// Validate checks the fields a run requires. login is the resolved target
// user, from the command line or the config file.
func (c *Config) Validate(login string) error {
	if c.ClientID == "" {
		return errors.New("client_id is required")
	}
	if c.ClientSecret == "" {
		return errors.New("client_secret is required")
	}
	if c.Discord == "" || c.Discord == webhookURLPrefix {
		return errors.New("discord webhook URL is required")
	}
	if login == "" {
		return errors.New("target user is required, via argument or target_user in config")
	}
	return nil
}
