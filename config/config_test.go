package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, TransportAMQP, cfg.Messaging.Transport)
	assert.Equal(t, 300*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Redis.OpTimeout)
	assert.Equal(t, "catalog-service", cfg.Messaging.ServiceName)
	assert.Equal(t, 20.0, cfg.Business.SignificantPriceChangePercent)
	assert.False(t, cfg.Server.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_SERVICE_URL", "http://auth:8001/api/v1/auth")
	t.Setenv("NOTIFY_TRANSPORT", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("NOTIFY_DESTINATIONS", "http://orders:8002/api/v1/orders,http://inventory:8003/api/v1/stock")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, TransportKafka, cfg.Messaging.Transport)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Messaging.KafkaBrokers)
	assert.Len(t, cfg.Messaging.Destinations, 2)
	assert.True(t, cfg.Server.IsProduction())
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("NOTIFY_TRANSPORT", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresIdentitySource(t *testing.T) {
	t.Setenv("AUTH_SERVICE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDatabaseIgnoresServiceSettings(t *testing.T) {
	t.Setenv("AUTH_SERVICE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("DATABASE_URL", "postgres://migrator@db:5432/catalog")

	cfg, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, "postgres://migrator@db:5432/catalog", cfg.URL)
	assert.Equal(t, 25, cfg.MaxOpenConns)
}
