package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv builds it so main stays
// lean; every field has a development default.
type Server struct {
	Addr          string
	PostgresDSN   string
	Redis         RedisConfig
	KafkaBrokers  []string
	KafkaTopic    string
	StubProviders bool
	Providers     ProviderConfig
}

// ProviderConfig holds the upstream registry endpoints.
type ProviderConfig struct {
	CompanyRegistryURL string
	VATRegistryURL     string
	BlacklistURL       string
	Timeout            time.Duration
}

// RedisConfig holds connection settings for the shared cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("SECUREDEAL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	var brokers []string
	if raw := os.Getenv("SECUREDEAL_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("SECUREDEAL_KAFKA_TOPIC")
	if topic == "" {
		topic = "validation.runs"
	}

	return Server{
		Addr:        addr,
		PostgresDSN: os.Getenv("SECUREDEAL_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("SECUREDEAL_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
		StubProviders: os.Getenv("SECUREDEAL_STUB_PROVIDERS") == "true",
		Providers: ProviderConfig{
			CompanyRegistryURL: os.Getenv("SECUREDEAL_COMPANY_REGISTRY_URL"),
			VATRegistryURL:     os.Getenv("SECUREDEAL_VAT_REGISTRY_URL"),
			BlacklistURL:       os.Getenv("SECUREDEAL_BLACKLIST_URL"),
			Timeout:            10 * time.Second,
		},
	}
}
