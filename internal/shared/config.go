package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// ConfigPathEnvVar names an optional YAML file layered under the environment.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config keys are the lower-cased environment variable names, so
// TM_API_KEY sets tm_api_key both from the environment and from YAML.
type Config struct {
	AppEnv      string `koanf:"app_env" validate:"required"`
	LogLevel    string `koanf:"log_level"`
	HTTPAddr    string `koanf:"http_addr" validate:"required"`
	MetricsAddr string `koanf:"metrics_addr"`

	MySQLDSN  string        `koanf:"mysql_dsn"`
	RedisAddr string        `koanf:"redis_addr"`
	RedisDB   int           `koanf:"redis_db" validate:"gte=0"`
	RedisPass string        `koanf:"redis_password"`
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gte=0"`

	TMBaseURL string        `koanf:"tm_base_url" validate:"required,url"`
	TMAPIKey  string        `koanf:"tm_api_key"`
	TMRPS     int           `koanf:"tm_rps" validate:"gte=1"`
	TMTimeout time.Duration `koanf:"tm_timeout" validate:"gt=0"`

	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitPerMin int           `koanf:"rate_limit_per_min" validate:"gte=0"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gt=0"`

	WarmWorkers  int           `koanf:"warm_workers" validate:"gte=1"`
	WarmTopN     int           `koanf:"warm_top_n" validate:"gte=0"`
	WarmSince    time.Duration `koanf:"warm_since" validate:"gte=0"`
	WarmKeywords []string      `koanf:"warm_keywords"`
	LogRetention time.Duration `koanf:"log_retention" validate:"gte=0"` // 0 keeps the search log forever

	APIBaseURL      string        `koanf:"api_base_url" validate:"required,url"`
	SuggestDebounce time.Duration `koanf:"suggest_debounce" validate:"gt=0"`
}

// sliceKeys may arrive from the environment as comma-separated strings.
var sliceKeys = []string{"cors_origins", "warm_keywords"}

func defaults() Config {
	return Config{
		AppEnv:          "prod",
		LogLevel:        "info",
		HTTPAddr:        ":5000",
		RedisAddr:       "localhost:6379",
		CacheTTL:        5 * time.Minute,
		TMBaseURL:       "https://app.ticketmaster.com/discovery/v2",
		TMRPS:           5,
		TMTimeout:       20 * time.Second,
		CORSOrigins:     []string{"http://localhost:4200"},
		RateLimitPerMin: 120,
		RequestTimeout:  15 * time.Second,
		WarmWorkers:     4,
		WarmTopN:        50,
		WarmSince:       7 * 24 * time.Hour,
		LogRetention:    30 * 24 * time.Hour,
		APIBaseURL:      "http://localhost:5000",
		SuggestDebounce: 250 * time.Millisecond,
	}
}

// Load layers struct defaults, the optional YAML file at $CONFIG_PATH and
// the environment, then validates the result.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSlices(k); err != nil {
		return Config{}, err
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if c.TMAPIKey == "" {
		log.Warn().Msg("TM_API_KEY is empty; event searches will fail with a configuration error")
	}
	return c, nil
}

// MustLoad is Load for commands that cannot run without configuration.
func MustLoad() Config {
	c, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	return c
}

func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}
