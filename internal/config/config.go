package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// defaultTokenSecret is the development-only signing secret. Production
// startup refuses to run with it.
const defaultTokenSecret = "dev-insecure-secret"

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	RedisURL  string `mapstructure:"REDIS_URL"`
	QueueMode string `mapstructure:"QUEUE_MODE"`
	QueueName string `mapstructure:"QUEUE_NAME"`

	ModelPath    string `mapstructure:"MODEL_PATH"`
	ModelName    string `mapstructure:"MODEL_NAME"`
	FeaturesPath string `mapstructure:"FEATURES_PATH"`

	AuthTokenSecret     string `mapstructure:"AUTH_TOKEN_SECRET"`
	AuthTokenTTLSeconds int    `mapstructure:"AUTH_TOKEN_TTL_SECONDS"`

	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("QUEUE_MODE", "inline")
	v.SetDefault("QUEUE_NAME", "ironrisk:analyses")
	v.SetDefault("MODEL_NAME", "fallback-v1")
	v.SetDefault("AUTH_TOKEN_SECRET", defaultTokenSecret)
	v.SetDefault("AUTH_TOKEN_TTL_SECONDS", 86400)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("QUEUE_MODE")
	v.BindEnv("QUEUE_NAME")
	v.BindEnv("MODEL_PATH")
	v.BindEnv("MODEL_NAME")
	v.BindEnv("FEATURES_PATH")
	v.BindEnv("AUTH_TOKEN_SECRET")
	v.BindEnv("AUTH_TOKEN_TTL_SECONDS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch c.QueueMode {
	case "inline":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when QUEUE_MODE is \"redis\"")
		}
	default:
		return fmt.Errorf("QUEUE_MODE must be \"inline\" or \"redis\", got %q", c.QueueMode)
	}

	if c.IsProduction() && c.AuthTokenSecret == defaultTokenSecret {
		return fmt.Errorf("AUTH_TOKEN_SECRET must be set in production; refusing to sign tokens with the development secret")
	}
	if c.AuthTokenTTLSeconds <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL_SECONDS must be positive, got %d", c.AuthTokenTTLSeconds)
	}
	return nil
}
