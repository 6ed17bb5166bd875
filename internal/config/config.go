// Package config loads the process configuration from environment variables
// and validates it before anything starts polling. A validation failure here
// is fatal: the process must exit with a descriptive message rather than run
// half-configured.
package config

import (
	"fmt"

	"github.com/chainbell/chainbell/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable of the process. Addresses and Names are
// positionally paired: Names[i] labels Addresses[i], and the two lists must
// have the same length.
type Config struct {
	// Node provider
	InfuraProjectID string `envconfig:"INFURA_PROJECT_ID" validate:"required"`

	// Telegram delivery
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" validate:"required"`
	ChatID           string `envconfig:"CHAT_ID" validate:"required"`

	// Monitored addresses
	Addresses []string `envconfig:"ADDRESSES_TO_MONITOR" validate:"required,min=1,dive,required"`
	Names     []string `envconfig:"ADDRESS_NAMES" validate:"required,min=1,dive,required"`

	// Explorer
	EtherscanAPIKey string `envconfig:"ETHERSCAN_API_KEY" validate:"required"`

	// Polling cadence in seconds
	PollIntervalSeconds int `envconfig:"POLL_INTERVAL" default:"12" validate:"gt=0"`

	// Optional durable storage; in-memory fallbacks are used when unset
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Observability
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	OtelEnabled bool   `envconfig:"OTEL_ENABLED" default:"false"`
}

// ProviderEndpoint returns the JSON-RPC endpoint for the configured Infura
// project.
func (c Config) ProviderEndpoint() string {
	return fmt.Sprintf("https://mainnet.infura.io/v3/%s", c.InfuraProjectID)
}

// Load reads the configuration from the environment and validates it. The
// returned error describes every failed constraint, including positionally
// mismatched address and name lists.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	if len(cfg.Addresses) != len(cfg.Names) {
		return Config{}, fmt.Errorf(
			"ADDRESSES_TO_MONITOR and ADDRESS_NAMES must pair up: got %d addresses and %d names",
			len(cfg.Addresses), len(cfg.Names),
		)
	}

	return cfg, nil
}
