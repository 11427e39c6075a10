package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("PAYMENT_SUCCESS_RATE", "")
	t.Setenv("CHECKOUT_SESSION_RETENTION", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "cart", cfg.Cart.CacheKey)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "mock", cfg.Payment.Provider)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.Equal(t, 1.0, cfg.Payment.SuccessRate)
	assert.Equal(t, 24*time.Hour, cfg.Payment.SessionRetention)
}

func TestLoadSessionRetention(t *testing.T) {
	t.Setenv("CHECKOUT_SESSION_RETENTION", "90m")
	assert.Equal(t, 90*time.Minute, Load().Payment.SessionRetention)

	t.Setenv("CHECKOUT_SESSION_RETENTION", "forever")
	assert.Equal(t, 24*time.Hour, Load().Payment.SessionRetention)
}

func TestLoadKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("PAYMENT_SUCCESS_RATE", "not-a-number")

	cfg := Load()

	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 1.0, cfg.Payment.SuccessRate)
}
