package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config is the service configuration, populated from the environment.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	CommerceEndpoint string `envconfig:"COMMERCE_ENDPOINT" required:"true"`
	StorefrontToken  string `envconfig:"STOREFRONT_TOKEN" required:"true"`
	// CheckoutDomain is the public domain backend checkout URLs are
	// rewritten onto.
	CheckoutDomain string `envconfig:"CHECKOUT_DOMAIN" required:"true"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	KeyPrefix     string `envconfig:"KEY_PREFIX" default:"storefront"`
	// CartTTL is the persisted cart/favorites expiry window.
	CartTTL        time.Duration `envconfig:"CART_TTL" default:"720h"`
	CartCookieName string        `envconfig:"CART_COOKIE_NAME" default:"storefront_cart_id"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load populates the config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}
