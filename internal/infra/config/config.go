package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// MongoURI empty selects the in-memory repositories.
	MongoURI string `envconfig:"MONGO_URI"`
	MongoDB  string `envconfig:"MONGO_DB" default:"tourhub"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	KafkaBrokers       []string        `envconfig:"KAFKA_BROKERS"`
	KafkaTopicPrefix   string          `envconfig:"KAFKA_TOPIC_PREFIX"`
	OutboxPollInterval time.Duration   `envconfig:"OUTBOX_POLL_INTERVAL" default:"500ms"`
	RetryBackoff       []time.Duration `envconfig:"RETRY_BACKOFF" default:"1s,5s,30s"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	StripeSecretKey  string  `envconfig:"STRIPE_SECRET_KEY"`
	PaymentCurrency  string  `envconfig:"PAYMENT_CURRENCY" default:"usd"`
	PaymentMinAmount float64 `envconfig:"PAYMENT_MIN_AMOUNT" default:"0.50"`

	S3Endpoint       string `envconfig:"S3_ENDPOINT"`
	S3PublicEndpoint string `envconfig:"S3_PUBLIC_ENDPOINT"`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey      string `envconfig:"S3_SECRET_KEY"`
	S3Bucket         string `envconfig:"S3_BUCKET" default:"tourhub-photos"`
	S3UseSSL         bool   `envconfig:"S3_USE_SSL" default:"false"`

	VerificationCodeTTL time.Duration `envconfig:"VERIFICATION_CODE_TTL" default:"10m"`
	AuthRateLimitRPS    float64       `envconfig:"AUTH_RATE_LIMIT_RPS" default:"5"`
	AuthRateLimitBurst  int           `envconfig:"AUTH_RATE_LIMIT_BURST" default:"10"`

	// EnforceAvailability turns on overlap checks when bookings and orders are created.
	EnforceAvailability bool `envconfig:"ENFORCE_AVAILABILITY" default:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns the configuration used when the environment cannot be parsed.
func Defaults() Config {
	cfg := Config{
		Env:                 "dev",
		HTTPAddr:            ":8080",
		MongoDB:             "tourhub",
		OutboxPollInterval:  500 * time.Millisecond,
		RetryBackoff:        []time.Duration{time.Second, 5 * time.Second, 30 * time.Second},
		JWTSecret:           "dev-secret-change-me",
		JWTTTL:              24 * time.Hour,
		PaymentCurrency:     "usd",
		PaymentMinAmount:    0.50,
		S3Bucket:            "tourhub-photos",
		VerificationCodeTTL: 10 * time.Minute,
		AuthRateLimitRPS:    5,
		AuthRateLimitBurst:  10,
	}
	cfg.normalize()
	return cfg
}

// UseMongo reports whether a Mongo URI is configured.
func (c Config) UseMongo() bool { return c.MongoURI != "" }

// UseKafka reports whether brokers are configured.
func (c Config) UseKafka() bool { return len(c.KafkaBrokers) > 0 }

// UseS3 reports whether photo storage is configured.
func (c Config) UseS3() bool { return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != "" }

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.PaymentCurrency = strings.ToLower(strings.TrimSpace(c.PaymentCurrency))
	brokers := c.KafkaBrokers[:0]
	for _, b := range c.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.KafkaBrokers = brokers
	if c.S3PublicEndpoint == "" {
		c.S3PublicEndpoint = c.S3Endpoint
	}
}

func (c Config) validate() error {
	switch {
	case c.PaymentMinAmount <= 0:
		return fmt.Errorf("PAYMENT_MIN_AMOUNT must be positive, got %v", c.PaymentMinAmount)
	case c.JWTTTL <= 0:
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	case c.VerificationCodeTTL <= 0:
		return fmt.Errorf("VERIFICATION_CODE_TTL must be positive, got %s", c.VerificationCodeTTL)
	case strings.TrimSpace(c.JWTSecret) == "":
		return errors.New("JWT_SECRET is required")
	}
	return nil
}
