package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "harambee/pkg/platform/strings"
)

// Config captures server level configuration. FromEnv keeps main lean; every
// field has a development default so the binary starts with no env at all.
type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string

	Redis RedisConfig

	Gateway GatewayConfig

	Kafka KafkaConfig

	// OTPTTL bounds challenge validity; the product contract is ten minutes.
	OTPTTL time.Duration

	// SlotCapacity is the program-wide ceiling on fundable slots.
	SlotCapacity int
}

// RedisConfig configures the optional Redis-backed OTP store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GatewayConfig configures the external payment gateway client.
type GatewayConfig struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
}

// KafkaConfig configures the funding event publisher. Empty brokers disable
// publishing (events go to the in-process no-op publisher).
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          envOr("HARAMBEE_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Gateway: GatewayConfig{
			BaseURL:       envOr("PAYMENT_GATEWAY_URL", "https://api.stripe.com"),
			SecretKey:     os.Getenv("PAYMENT_GATEWAY_SECRET_KEY"),
			WebhookSecret: os.Getenv("PAYMENT_GATEWAY_WEBHOOK_SECRET"),
			Timeout:       envDurationOr("PAYMENT_GATEWAY_TIMEOUT", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_FUNDING_TOPIC", "harambee.funding"),
		},
		OTPTTL:       envDurationOr("OTP_TTL", 10*time.Minute),
		SlotCapacity: envIntOr("SLOT_CAPACITY", 2000),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	out := platformstrings.DedupeAndTrim(strings.Split(v, ","))
	if len(out) == 0 {
		return nil
	}
	return out
}
