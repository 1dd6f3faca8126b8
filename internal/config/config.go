package config

import (
	"fmt"
	"time"

	"p24-gateway/internal/p24"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string `env:"APP_ENV" env-default:"development"`
	AppPort string `env:"APP_PORT" env-default:"8080"`

	DBHost     string `env:"DB_HOST" validate:"required"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`

	// HS256 key for service tokens on POST /p24/checkout.
	ServiceTokenSecret string `env:"SERVICE_TOKEN_SECRET" validate:"required,min=32"`

	P24 P24Config
}

// P24Config holds the merchant credentials and gateway environment.
type P24Config struct {
	Mode       string        `env:"P24_MODE" env-default:"test" validate:"oneof=test production"`
	MerchantID string        `env:"P24_MERCHANT_ID" validate:"required"`
	CRCKey     string        `env:"P24_CRC_KEY" validate:"required"`
	NotifyURL  string        `env:"P24_NOTIFY_URL" validate:"omitempty,url"`
	ReturnURL  string        `env:"P24_RETURN_URL" validate:"omitempty,url"`
	AckTimeout time.Duration `env:"P24_ACK_TIMEOUT" env-default:"30s"`

	TestURL                   string `env:"P24_TEST_URL" validate:"omitempty,url"`
	ProductionURL             string `env:"P24_PRODUCTION_URL" validate:"omitempty,url"`
	TestVerificationURL       string `env:"P24_TEST_VERIFICATION_URL" validate:"omitempty,url"`
	ProductionVerificationURL string `env:"P24_PRODUCTION_VERIFICATION_URL" validate:"omitempty,url"`
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Endpoints converts the P24 section into the adapter's environment value.
func (c *Config) Endpoints() p24.Endpoints {
	return p24.Endpoints{
		Mode:                      p24.Mode(c.P24.Mode),
		TestURL:                   c.P24.TestURL,
		ProductionURL:             c.P24.ProductionURL,
		TestVerificationURL:       c.P24.TestVerificationURL,
		ProductionVerificationURL: c.P24.ProductionVerificationURL,
	}
}
