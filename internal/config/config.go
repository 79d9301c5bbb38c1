package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Gateway  GatewayConfig
	Tickets  TicketConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr            string
	AvailabilityTTL time.Duration
}

type KafkaConfig struct {
	Brokers  []string
	Enabled  bool
	MockMode bool
	Topics   TopicConfig
}

type TopicConfig struct {
	PurchaseNotifications string
	PurchaseCompleted     string
}

// GatewayConfig points at the payment provider's verification endpoint.
// The gateway's redirect/UI flow lives in the outer web app; this
// service only confirms a reference when the caller hasn't already.
type GatewayConfig struct {
	Enabled   bool
	VerifyURL string
	SecretKey string
}

type TicketConfig struct {
	NumberPrefix  string
	QRSize        int
	AccessURLBase string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "boxoffice"),
			Password:     getEnv("DB_PASSWORD", "boxoffice"),
			Database:     getEnv("DB_NAME", "boxoffice"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "localhost:6379"),
			AvailabilityTTL: time.Duration(getEnvInt("AVAILABILITY_CACHE_TTL_SECONDS", 10)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled:  getEnvBool("KAFKA_ENABLED", true),
			MockMode: getEnvBool("KAFKA_MOCK_MODE", false),
			Topics: TopicConfig{
				PurchaseNotifications: getEnv("KAFKA_TOPIC_NOTIFICATIONS", "purchase-notifications"),
				PurchaseCompleted:     getEnv("KAFKA_TOPIC_PURCHASES", "purchase-completed"),
			},
		},
		Gateway: GatewayConfig{
			Enabled:   getEnvBool("GATEWAY_VERIFY_ENABLED", false),
			VerifyURL: getEnv("GATEWAY_VERIFY_URL", "https://api.paystack.co/transaction/verify"),
			SecretKey: getEnv("GATEWAY_SECRET_KEY", ""),
		},
		Tickets: TicketConfig{
			NumberPrefix:  getEnv("TICKET_NUMBER_PREFIX", "TKT"),
			QRSize:        getEnvInt("TICKET_QR_SIZE", 256),
			AccessURLBase: getEnv("TICKET_ACCESS_URL_BASE", "https://example.com/my-tickets"),
		},
	}
}

// DSN builds the Postgres connection string for lib/pq.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
