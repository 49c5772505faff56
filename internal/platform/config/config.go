package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Kafka settings for the reconciliation consumer. Leaving KafkaBrokers empty
	// disables the consumer.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Rate limiting, expressed as requests per period.
	RateLimitRequests int64
	RateLimitPeriod   time.Duration

	// SweepInterval controls the background overdue-invoice sweep. Zero disables it.
	SweepInterval time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "payment-events")
	viper.SetDefault("KAFKA_GROUP_ID", "accounting-reconciliation")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_PERIOD", "1m")
	viper.SetDefault("SWEEP_INTERVAL", "1h")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL not set; falling back to in-memory storage.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	if brokers := viper.GetString("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	} else {
		log.Println("Warning: KAFKA_BROKERS not set; reconciliation consumer disabled.")
	}
	cfg.KafkaTopic = viper.GetString("KAFKA_TOPIC")
	cfg.KafkaGroupID = viper.GetString("KAFKA_GROUP_ID")

	cfg.RateLimitRequests = viper.GetInt64("RATE_LIMIT_REQUESTS")
	rateLimitPeriod, err := time.ParseDuration(viper.GetString("RATE_LIMIT_PERIOD"))
	if err != nil {
		rateLimitPeriod = time.Minute
		log.Printf("Warning: Invalid RATE_LIMIT_PERIOD. Defaulting to %s.\n", rateLimitPeriod)
	}
	cfg.RateLimitPeriod = rateLimitPeriod

	sweepInterval, err := time.ParseDuration(viper.GetString("SWEEP_INTERVAL"))
	if err != nil {
		sweepInterval = time.Hour
		log.Printf("Warning: Invalid SWEEP_INTERVAL. Defaulting to %s.\n", sweepInterval)
	}
	cfg.SweepInterval = sweepInterval

	return cfg, nil
}
