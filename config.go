package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/providers"
)

// Config holds all configuration for the dropship service.
type Config struct {
	Port string
	Env  string

	MongoURL string
	MongoDB  string

	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	// Alibaba adapter credentials
	AlibabaAPIKey      string
	AlibabaAppSecret   string
	AlibabaAccessToken string
	AlibabaBaseURL     string

	// Import tuning
	MarkupFactor   float64
	ImportPageSize int
	ImportMaxPages int
	ImportWorkers  int

	// Provider rate limiting
	ProviderRateRPS   float64
	ProviderRateBurst int

	// Cron expression for the scheduled inventory reconcile pass
	ReconcileCron string
}

// AlibabaConfig builds the adapter config from the credential values.
func (c *Config) AlibabaConfig() providers.AlibabaConfig {
	return providers.AlibabaConfig{
		APIKey:      c.AlibabaAPIKey,
		AppSecret:   c.AlibabaAppSecret,
		AccessToken: c.AlibabaAccessToken,
		BaseURL:     c.AlibabaBaseURL,
		Timeout:     30 * time.Second,
	}
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8095"),
		Env:  getEnv("ENV", "development"),

		MongoURL: os.Getenv("MONGO_URL"),
		MongoDB:  getEnv("MONGO_DB", "dropship"),

		RedisURL:   os.Getenv("REDIS_URL"),
		KafkaTopic: getEnv("KAFKA_TOPIC", "dropship-events"),

		AlibabaAPIKey:      os.Getenv("ALIBABA_API_KEY"),
		AlibabaAppSecret:   os.Getenv("ALIBABA_APP_SECRET"),
		AlibabaAccessToken: os.Getenv("ALIBABA_ACCESS_TOKEN"),
		AlibabaBaseURL:     os.Getenv("ALIBABA_BASE_URL"),

		MarkupFactor:   getEnvFloat("MARKUP_FACTOR", 1.3),
		ImportPageSize: getEnvInt("IMPORT_PAGE_SIZE", 20),
		ImportMaxPages: getEnvInt("IMPORT_MAX_PAGES", 5),
		ImportWorkers:  getEnvInt("IMPORT_WORKERS", 3),

		ProviderRateRPS:   getEnvFloat("PROVIDER_RATE_RPS", 5),
		ProviderRateBurst: getEnvInt("PROVIDER_RATE_BURST", 10),

		ReconcileCron: getEnv("RECONCILE_CRON", "0 */6 * * *"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.MongoURL == "" {
		return nil, fmt.Errorf("MONGO_URL is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
