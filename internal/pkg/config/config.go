package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API      APIConfig
	Activity ActivityConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// APIConfig points at the backend data service.
type APIConfig struct {
	BaseURL        string        `env:"API_BASE_URL, required"`
	AnonKey        string        `env:"API_ANON_KEY, required"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT,    default=15s"`
	RefreshTimeout time.Duration `env:"REFRESH_TIMEOUT, default=30s"`
	// CredentialKey names the slot the credential pair is persisted under.
	CredentialKey string `env:"CREDENTIAL_KEY, default=kiki_packaging_auth_tokens"`
}

type ActivityConfig struct {
	Workers int `env:"ACTIVITY_WORKERS, default=4"`
	// Mirror also writes every audit record to MongoDB.
	Mirror bool `env:"ACTIVITY_MIRROR, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=kiki_backoffice"`
}

// RedisConfig is optional; an empty address keeps credentials and
// idempotency keys in memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := load(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
