package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"julianmorley.ca/con-plar/petmart/pkg/global"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devSessionSecret = "dev-session-secret-change-me"
	devJWTSecret     = "dev-jwt-secret-change-me"
)

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CartConfig struct {
	TTL                 time.Duration `yaml:"ttl"`
	LastOrderTTL        time.Duration `yaml:"last_order_ttl"`
	ProductCacheTTL     time.Duration `yaml:"product_cache_ttl"`
	PersistentRetention time.Duration `yaml:"persistent_retention"`
}

type SecurityConfig struct {
	SessionSecret string `yaml:"session_secret"`
	JWTSecret     string `yaml:"jwt_secret"`
}

type LoggerConfig struct {
	Mode     string `yaml:"mode"`
	Filename string `yaml:"filename"`
}

type Config struct {
	Env         string         `yaml:"env"`
	Port        string         `yaml:"port"`
	Mongo       MongoConfig    `yaml:"mongo"`
	Redis       RedisConfig    `yaml:"redis"`
	Cart        CartConfig     `yaml:"cart"`
	Security    SecurityConfig `yaml:"security"`
	CORSOrigins []string       `yaml:"cors_origins"`
	Logger      LoggerConfig   `yaml:"logger"`
}

func Default() *Config {
	return &Config{
		Env:  EnvDevelopment,
		Port: "8000",
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017/?replicaSet=rs0",
			Database: "petmart",
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Cart: CartConfig{
			TTL:                 time.Hour,
			LastOrderTTL:        15 * time.Minute,
			ProductCacheTTL:     24 * time.Hour,
			PersistentRetention: 30 * 24 * time.Hour,
		},
		Security: SecurityConfig{
			SessionSecret: devSessionSecret,
			JWTSecret:     devJWTSecret,
		},
		CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		Logger: LoggerConfig{
			Mode: EnvDevelopment,
		},
	}
}

// Load starts from Default, overlays the optional YAML file at path, then
// applies environment variables
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Env = global.GetEnvOrDefault("ENV", c.Env)
	c.Port = global.GetEnvOrDefault("PORT", c.Port)

	c.Mongo.URI = global.GetEnvOrDefault("MONGODB_URI", c.Mongo.URI)
	c.Mongo.Database = global.GetEnvOrDefault("MONGODB_DATABASE", c.Mongo.Database)

	c.Redis.Address = global.GetEnvOrDefault("REDIS_ADDRESS", c.Redis.Address)
	c.Redis.Password = global.GetEnvOrDefault("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = global.GetEnvInt("REDIS_DB", c.Redis.DB)

	c.Cart.TTL = global.GetEnvDuration("CART_TTL", c.Cart.TTL)
	c.Cart.LastOrderTTL = global.GetEnvDuration("LAST_ORDER_TTL", c.Cart.LastOrderTTL)
	c.Cart.ProductCacheTTL = global.GetEnvDuration("PRODUCT_CACHE_TTL", c.Cart.ProductCacheTTL)
	c.Cart.PersistentRetention = global.GetEnvDuration("PERSISTENT_CART_RETENTION", c.Cart.PersistentRetention)

	c.Security.SessionSecret = global.GetEnvOrDefault("SESSION_SECRET", c.Security.SessionSecret)
	c.Security.JWTSecret = global.GetEnvOrDefault("JWT_SECRET", c.Security.JWTSecret)

	c.CORSOrigins = global.GetEnvList("CORS_ORIGINS", c.CORSOrigins)

	c.Logger.Mode = global.GetEnvOrDefault("LOG_MODE", c.Logger.Mode)
	c.Logger.Filename = global.GetEnvOrDefault("LOG_FILE", c.Logger.Filename)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Validate reports every problem at once
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Mongo.URI) == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if strings.TrimSpace(c.Mongo.Database) == "" {
		errs = append(errs, errors.New("MONGODB_DATABASE is required"))
	}
	if strings.TrimSpace(c.Redis.Address) == "" {
		errs = append(errs, errors.New("REDIS_ADDRESS is required"))
	}
	if c.Cart.TTL <= 0 || c.Cart.LastOrderTTL <= 0 || c.Cart.ProductCacheTTL <= 0 || c.Cart.PersistentRetention <= 0 {
		errs = append(errs, errors.New("cart and cache durations must be positive"))
	}
	if c.IsProduction() {
		if c.Security.SessionSecret == "" || c.Security.SessionSecret == devSessionSecret {
			errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
		}
		if c.Security.JWTSecret == "" || c.Security.JWTSecret == devJWTSecret {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		}
	}
	return errors.Join(errs...)
}
