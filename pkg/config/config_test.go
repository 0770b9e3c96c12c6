package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.App.StoreDriver)
	assert.Equal(t, "DEFAULT", cfg.Inventory.DefaultLocation)
	assert.Equal(t, 15*time.Minute, cfg.Inventory.ReservationTTL)
	assert.True(t, cfg.Inventory.SweepEnabled)
	assert.Equal(t, 5*time.Second, cfg.Outbox.PollInterval, "el poller corre cada 5s por defecto")
	assert.Equal(t, 50, cfg.Outbox.BatchSize)
	assert.Equal(t, 3, cfg.Outbox.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Outbox.RetryBackoff)
	assert.Empty(t, cfg.Kafka.Brokers, "sin brokers se usa el notificador de log")
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Sobrescrituras(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "MEMORY")
	v.Set("RESERVATION_TTL", "90")
	v.Set("OUTBOX_POLL_INTERVAL", "2s")
	v.Set("RESERVATION_SWEEP_ENABLED", "false")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.App.StoreDriver)
	assert.Equal(t, 90*time.Second, cfg.Inventory.ReservationTTL, "un entero se interpreta en segundos")
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.False(t, cfg.Inventory.SweepEnabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestFromViper_Invalida(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "redis")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("OUTBOX_BATCH_SIZE", "0")
	_, err = fromViper(v)
	assert.Error(t, err)
}

func TestDSN_EscapaCredenciales(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss word", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/stock?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
