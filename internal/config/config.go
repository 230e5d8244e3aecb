package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PanelConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type ProvidersConfig struct {
	Active   string      `yaml:"active"` // boostapi | smmglow
	BoostAPI PanelConfig `yaml:"boostapi"`
	SMMGlow  PanelConfig `yaml:"smmglow"`
}

type WebhookConfig struct {
	Port    int    `yaml:"port"`
	Secret  string `yaml:"secret"`  // HMAC secret shared with the payment gateway
	Workers int    `yaml:"workers"` // async fulfillment workers
}

type AdminConfig struct {
	Port      int           `yaml:"port"`
	Password  string        `yaml:"password"` // login password for minting sessions
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type NotifyConfig struct {
	SMTP     SMTPConfig     `yaml:"smtp"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type SweepConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"stale_after"` // pending orders older than this get resubmitted
	BatchSize  int           `yaml:"batch_size"`
}

type FreeTrialConfig struct {
	Platform  string        `yaml:"platform"`
	Service   string        `yaml:"service"`
	Quantity  int           `yaml:"quantity"`
	PerIPRate int           `yaml:"per_ip_rate"` // requests per window per IP
	Window    time.Duration `yaml:"window"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Providers ProvidersConfig `yaml:"providers"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Admin     AdminConfig     `yaml:"admin"`
	Notify    NotifyConfig    `yaml:"notify"`
	Sweep     SweepConfig     `yaml:"sweep"`
	FreeTrial FreeTrialConfig `yaml:"free_trial"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Webhook.Port == 0 {
		cfg.Webhook.Port = 8081
	}
	if cfg.Webhook.Workers <= 0 {
		cfg.Webhook.Workers = 8
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8082
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 30 * time.Minute
	}
	if cfg.Sweep.Interval <= 0 {
		cfg.Sweep.Interval = 5 * time.Minute
	}
	if cfg.Sweep.StaleAfter <= 0 {
		cfg.Sweep.StaleAfter = 10 * time.Minute
	}
	if cfg.Sweep.BatchSize <= 0 {
		cfg.Sweep.BatchSize = 200
	}
	if cfg.Providers.Active == "" {
		cfg.Providers.Active = "boostapi"
	}
	if cfg.FreeTrial.Platform == "" {
		cfg.FreeTrial.Platform = "instagram"
	}
	if cfg.FreeTrial.Service == "" {
		cfg.FreeTrial.Service = "likes"
	}
	if cfg.FreeTrial.Quantity <= 0 {
		cfg.FreeTrial.Quantity = 50
	}
	if cfg.FreeTrial.PerIPRate <= 0 {
		cfg.FreeTrial.PerIPRate = 3
	}
	if cfg.FreeTrial.Window <= 0 {
		cfg.FreeTrial.Window = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Webhook.Secret == "" {
		return nil, errors.New("webhook.secret is required")
	}
	if cfg.Providers.Active != "boostapi" && cfg.Providers.Active != "smmglow" {
		return nil, fmt.Errorf("providers.active %q is not a known panel", cfg.Providers.Active)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
