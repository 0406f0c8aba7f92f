package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// CookieSecret signs the session cookie (HS256).
	CookieSecret string        `env:"COOKIE_SECRET"`
	SessionTTL   time.Duration `env:"SESSION_TTL, default=24h"`

	Platform PlatformConfig
	Redis    RedisConfig
	Mongo    MongoConfig

	AnalyticsWorkers int `env:"ANALYTICS_WORKERS, default=4"`
}

type PlatformConfig struct {
	BaseURL string        `env:"PLATFORM_BASE_URL, default=http://localhost:9000"`
	Timeout time.Duration `env:"PLATFORM_TIMEOUT,  default=10s"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=client_gateway"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
