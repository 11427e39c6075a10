package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Cart    CartConfig
	Kafka   KafkaConfig
	Observ  ObservabilityConfig
	Payment PaymentConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// RedisConfig points the cart cache at redis. An empty Addr keeps the cart in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CartConfig struct {
	CacheKey string
}

// KafkaConfig is optional; with no brokers configured events are dropped.
type KafkaConfig struct {
	Brokers       []string
	TopicOrder    string
	TopicPayment  string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type PaymentConfig struct {
	Provider      string
	KeyID         string
	Currency      string
	MerchantName  string
	Description   string
	Image         string
	ThemeColor    string
	SuccessRate   float64
	LatencyMillis int

	// SessionRetention is how long settled checkout sessions stay readable
	SessionRetention time.Duration
}

// Enabled reports whether any kafka broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	successRate, err := strconv.ParseFloat(getEnv("PAYMENT_SUCCESS_RATE", "1"), 64)
	if err != nil {
		successRate = 1
	}
	latency, _ := strconv.Atoi(getEnv("PAYMENT_LATENCY_MS", "0"))
	retention, err := time.ParseDuration(getEnv("CHECKOUT_SESSION_RETENTION", "24h"))
	if err != nil {
		retention = 24 * time.Hour
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Cart: CartConfig{
			CacheKey: getEnv("CART_CACHE_KEY", "cart"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitCSV(getEnv("KAFKA_BROKERS", "")),
			TopicOrder:    getEnv("KAFKA_TOPIC_ORDER_EVENTS", "cartease-order-events"),
			TopicPayment:  getEnv("KAFKA_TOPIC_PAYMENT_EVENTS", "cartease-payment-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "cartease-checkout-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
		Payment: PaymentConfig{
			Provider:      getEnv("PAYMENT_PROVIDER", "mock"),
			KeyID:         getEnv("PAYMENT_KEY_ID", "rzp_test_YOUR_KEY_ID"),
			Currency:      getEnv("PAYMENT_CURRENCY", "INR"),
			MerchantName:  getEnv("PAYMENT_MERCHANT_NAME", "CartEase"),
			Description:   getEnv("PAYMENT_DESCRIPTION", "Purchase from CartEase"),
			Image:         getEnv("PAYMENT_IMAGE", ""),
			ThemeColor:    getEnv("PAYMENT_THEME_COLOR", "#9b87f5"),
			SuccessRate:   successRate,
			LatencyMillis: latency,

			SessionRetention: retention,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, payment=%s", cfg.Server.Env, cfg.Server.Port, cfg.Payment.Provider)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
