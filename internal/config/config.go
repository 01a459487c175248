package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Piamias-Victor/maju/pkg/circuitbreaker"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingValue = errors.New("required value is empty")

// Server configures the checkout API.
type Server struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	StripeSecretKey string        `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	SiteURL         string        `envconfig:"SITE_URL" required:"true"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON         bool          `envconfig:"LOG_JSON" default:"true"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	RateLimitRPS     float64  `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst   int      `envconfig:"RATE_LIMIT_BURST" default:"10"`
	TrustProxy       bool     `envconfig:"TRUST_PROXY_HEADERS" default:"false"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"checkout-events"`

	BreakerMaxFailures uint32        `envconfig:"BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s"`
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := envconfig.Process("", &cfg); err != nil {
		return Server{}, fmt.Errorf("load server config: %w", err)
	}
	// envconfig treats a set but empty variable as present.
	cfg.StripeSecretKey = strings.TrimSpace(cfg.StripeSecretKey)
	if cfg.StripeSecretKey == "" {
		return Server{}, fmt.Errorf("load server config: %w: STRIPE_SECRET_KEY", ErrMissingValue)
	}
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	if cfg.SiteURL == "" {
		return Server{}, fmt.Errorf("load server config: %w: SITE_URL", ErrMissingValue)
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	cfg.CORSAllowOrigins = compact(cfg.CORSAllowOrigins)
	return cfg, nil
}

func (c Server) BreakerOptions() circuitbreaker.Options {
	return circuitbreaker.Options{
		MaxFailures: c.BreakerMaxFailures,
		OpenTimeout: c.BreakerOpenTimeout,
	}
}

// Shop configures the terminal storefront.
type Shop struct {
	APIURL          string        `envconfig:"API_URL" default:"http://localhost:8080"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	TimerTTL        time.Duration `envconfig:"TIMER_TTL" default:"48h"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"warn"`
	FormSubmitDelay time.Duration `envconfig:"FORM_SUBMIT_DELAY" default:"800ms"`
	ModalResetDelay time.Duration `envconfig:"MODAL_RESET_DELAY" default:"300ms"`
}

func LoadShop() (Shop, error) {
	var cfg Shop
	if err := envconfig.Process("", &cfg); err != nil {
		return Shop{}, fmt.Errorf("load shop config: %w", err)
	}
	return cfg, nil
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
