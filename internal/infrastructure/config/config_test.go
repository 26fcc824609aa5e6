package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cassiomorais/hutko-gateway/internal/hutko"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "test",
			Password: "test",
			Database: "test_db",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Gateway: GatewayConfig{
			TestMode:        true,
			IntegrationType: "hosted",
			RequestTimeout:  70 * time.Second,
			LockTTL:         30 * time.Second,
		},
		Worker: WorkerConfig{
			RenewalBatchSize: 20,
		},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 99999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_InvalidTimeouts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ReadTimeout = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read_timeout")

	cfg = validConfig()
	cfg.Server.WriteTimeout = 0
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "write_timeout")
}

func TestConfig_Validate_MissingDatabaseHost(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database.host")
}

func TestConfig_Validate_InvalidRedisPort(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Port = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis.port")
}

func TestConfig_Validate_InvalidGatewayLockTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.LockTTL = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gateway.lock_ttl")
}

func TestConfig_Validate_InvalidRequestTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.RequestTimeout = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gateway.request_timeout")
}

func TestConfig_Validate_InvalidIntegrationType(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.IntegrationType = "iframe"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "integration_type")
}

func TestConfig_Validate_InvalidWorkerBatchSize(t *testing.T) {
	cfg := validConfig()
	cfg.Worker.RenewalBatchSize = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "worker.renewal_batch_size")
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "server.port")
	assert.Contains(t, errStr, "read_timeout")
	assert.Contains(t, errStr, "database.host")
	assert.Contains(t, errStr, "redis.port")
	assert.Contains(t, errStr, "gateway.lock_ttl")
	assert.Contains(t, errStr, "worker.renewal_batch_size")
}

func TestGatewayConfig_Credentials_TestMode(t *testing.T) {
	cfg := GatewayConfig{
		TestMode:   true,
		MerchantID: 9999999,
		SecretKey:  "production-secret",
	}

	creds := cfg.Credentials()
	assert.Equal(t, hutko.TestMerchantID, creds.MerchantID)
	assert.Equal(t, hutko.TestSecretKey, creds.SecretKey)
}

func TestGatewayConfig_Credentials_LiveMode(t *testing.T) {
	cfg := GatewayConfig{
		TestMode:   false,
		MerchantID: 9999999,
		SecretKey:  "production-secret",
	}

	creds := cfg.Credentials()
	assert.Equal(t, 9999999, creds.MerchantID)
	assert.Equal(t, "production-secret", creds.SecretKey)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.example.com",
		Port:     5432,
		User:     "app_user",
		Password: "secret",
		Database: "hutko_gateway",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.example.com port=5432 user=app_user password=secret dbname=hutko_gateway sslmode=require",
		cfg.DatabaseDSN(),
	)
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.example.com", Port: 6379}
	assert.Equal(t, "redis.example.com:6379", cfg.RedisAddr())
}
