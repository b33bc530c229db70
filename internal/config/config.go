package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL         string `mapstructure:"DATABASE_URL"`
	DatabaseAutoMigrate bool   `mapstructure:"DATABASE_AUTO_MIGRATE"`

	RedisAddr                string `mapstructure:"REDIS_ADDR"`
	RedisPassword            string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                  int    `mapstructure:"REDIS_DB"`
	DashboardCacheTTLSeconds int    `mapstructure:"DASHBOARD_CACHE_TTL_SECONDS"`

	// KafkaBrokers is a comma separated host:port list. Empty disables publishing.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	AuthSecret        string `mapstructure:"AUTH_SECRET"`
	DefaultLocationID string `mapstructure:"DEFAULT_LOCATION_ID"`
}

var defaults = map[string]any{
	"PORT":                        "8080",
	"APP_ENV":                     "development",
	"LOG_LEVEL":                   "info",
	"DATABASE_URL":                "",
	"DATABASE_AUTO_MIGRATE":       true,
	"REDIS_ADDR":                  "",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"DASHBOARD_CACHE_TTL_SECONDS": 30,
	"KAFKA_BROKERS":               "",
	"KAFKA_TOPIC":                 "retailpos.events",
	"AUTH_SECRET":                 "",
	"DEFAULT_LOCATION_ID":         "main-store",
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.AuthSecret = strings.TrimSpace(cfg.AuthSecret)
	if cfg.DashboardCacheTTLSeconds < 1 {
		cfg.DashboardCacheTTLSeconds = 30
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTLSeconds) * time.Second
}

func (c Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
