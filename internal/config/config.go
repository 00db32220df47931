// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
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
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type IdentityConfig struct {
	BaseURL    string `yaml:"base_url"`    // GoTrue-compatible identity service
	ServiceKey string `yaml:"service_key"` // admin API key
	JWTSecret  string `yaml:"jwt_secret"`  // HS256 secret the provider signs tokens with
}

type AlipayConfig struct {
	AppID           string `yaml:"app_id"`
	PrivateKey      string `yaml:"private_key"`       // merchant RSA private key, PEM
	AlipayPublicKey string `yaml:"alipay_public_key"` // gateway RSA public key, PEM
	GatewayURL      string `yaml:"gateway_url"`
	NotifyURL       string `yaml:"notify_url"`
	Sandbox         bool   `yaml:"sandbox"`
}

type PaymentConfig struct {
	Alipay AlipayConfig `yaml:"alipay"`

	// Plan prices in fen. Amounts submitted by clients must match exactly.
	AnnualPriceFen   int64 `yaml:"annual_price_fen"`
	LifetimePriceFen int64 `yaml:"lifetime_price_fen"`
	AgentPriceFen    int64 `yaml:"agent_price_fen"`
}

type AIConfig struct {
	OpenAIKey    string `yaml:"openai_key"`
	GeminiKey    string `yaml:"gemini_key"`
	DefaultModel string `yaml:"default_model"`
}

type RateLimitConfig struct {
	GeneratePerMinute int `yaml:"generate_per_minute"`
	OrdersPerMinute   int `yaml:"orders_per_minute"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Identity  IdentityConfig  `yaml:"identity"`
	Payment   PaymentConfig   `yaml:"payment"`
	AI        AIConfig        `yaml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Identity.JWTSecret == "" {
		return nil, errors.New("identity.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Payment.Alipay.GatewayURL == "" {
		if cfg.Payment.Alipay.Sandbox {
			cfg.Payment.Alipay.GatewayURL = "https://openapi-sandbox.dl.alipaydev.com/gateway.do"
		} else {
			cfg.Payment.Alipay.GatewayURL = "https://openapi.alipay.com/gateway.do"
		}
	}
	if cfg.Payment.AnnualPriceFen <= 0 {
		cfg.Payment.AnnualPriceFen = 9900
	}
	if cfg.Payment.LifetimePriceFen <= 0 {
		cfg.Payment.LifetimePriceFen = 39900
	}
	if cfg.Payment.AgentPriceFen <= 0 {
		cfg.Payment.AgentPriceFen = 199900
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gemini-2.5-flash"
	}
	if cfg.RateLimit.GeneratePerMinute <= 0 {
		cfg.RateLimit.GeneratePerMinute = 20
	}
	if cfg.RateLimit.OrdersPerMinute <= 0 {
		cfg.RateLimit.OrdersPerMinute = 5
	}
}
