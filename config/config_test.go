package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Load_UsesLegacyNames", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "mongo")
		t.Setenv("PORT", "9090")
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("DB_NAME", "blockflow")
		t.Setenv("JWT_SECRET", "s3cret")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 9090, cfg.HTTP.Port)
		require.Equal(t, "mongo", cfg.Database.Driver)
		require.Equal(t, "mongodb://localhost:27017", cfg.Database.Mongo.URI)
		require.Equal(t, "blockflow", cfg.Database.Mongo.Database)
		require.Equal(t, 24*time.Hour, cfg.JWT.TTL)
		require.False(t, cfg.Kafka.Enabled())
		require.Equal(t, "/metrics", cfg.Metrics.Path)
	})

	t.Run("Load_NestedKeysFromEnvironment", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "sqlite")
		t.Setenv("DATABASE_DSN", "file:blockflow.db")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("JWT_TTL", "2h")
		t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
		t.Setenv("LOGGER_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "sqlite", cfg.Database.SQL().Driver)
		require.Equal(t, "file:blockflow.db", cfg.Database.SQL().DSN)
		require.Equal(t, 2*time.Hour, cfg.JWT.TTL)
		require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		require.Equal(t, "debug", cfg.Logger.Level)
	})

	t.Run("Load_RejectsIncompleteSettings", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "oracle")
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported database.driver")
		require.Contains(t, err.Error(), "JWT_SECRET is required")
	})

	t.Run("Validate_MemoryDriverNeedsOnlySecret", func(t *testing.T) {
		cfg := Config{
			HTTP:     HTTPConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "memory"},
			JWT:      JWTConfig{Secret: "x"},
		}
		require.NoError(t, cfg.Validate())
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BLOCKFLOW_TEST_VALUE=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BLOCKFLOW_TEST_VALUE") })

	require.NoError(t, LoadEnv(path))
	require.Equal(t, "from-dotenv", GetEnv("BLOCKFLOW_TEST_VALUE", "fallback"))
	require.Equal(t, "fallback", GetEnv("BLOCKFLOW_TEST_MISSING", "fallback"))

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))
}
