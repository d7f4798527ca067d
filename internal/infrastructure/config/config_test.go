package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"LOKA_APP_NAME":                os.Getenv("LOKA_APP_NAME"),
		"LOKA_APP_ENV":                 os.Getenv("LOKA_APP_ENV"),
		"LOKA_APP_PORT":                os.Getenv("LOKA_APP_PORT"),
		"LOKA_DATABASE_HOST":           os.Getenv("LOKA_DATABASE_HOST"),
		"LOKA_DATABASE_PORT":           os.Getenv("LOKA_DATABASE_PORT"),
		"LOKA_DATABASE_USER":           os.Getenv("LOKA_DATABASE_USER"),
		"LOKA_DATABASE_PASSWORD":       os.Getenv("LOKA_DATABASE_PASSWORD"),
		"LOKA_DATABASE_DBNAME":         os.Getenv("LOKA_DATABASE_DBNAME"),
		"LOKA_DATABASE_SSLMODE":        os.Getenv("LOKA_DATABASE_SSLMODE"),
		"LOKA_DATABASE_MAX_OPEN_CONNS": os.Getenv("LOKA_DATABASE_MAX_OPEN_CONNS"),
		"LOKA_DATABASE_MAX_IDLE_CONNS": os.Getenv("LOKA_DATABASE_MAX_IDLE_CONNS"),
		"LOKA_STORAGE_BUCKET":          os.Getenv("LOKA_STORAGE_BUCKET"),
		"LOKA_OIDC_BASE_URL":           os.Getenv("LOKA_OIDC_BASE_URL"),
		"LOKA_OIDC_REALM":              os.Getenv("LOKA_OIDC_REALM"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "loka-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "loka", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "loka-images", cfg.Storage.Bucket)
		assert.Equal(t, "loka", cfg.OIDC.Realm)
		assert.Empty(t, cfg.HTTP.CORSAllowOrigins, "CORS origins must be opt-in")
	})

	t.Run("loads values from environment variables with LOKA prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("LOKA_APP_NAME", "test-app")
		os.Setenv("LOKA_APP_PORT", "9000")
		os.Setenv("LOKA_DATABASE_HOST", "testdb.local")
		os.Setenv("LOKA_DATABASE_PORT", "5433")
		os.Setenv("LOKA_STORAGE_BUCKET", "test-bucket")
		os.Setenv("LOKA_OIDC_REALM", "test-realm")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "test-bucket", cfg.Storage.Bucket)
		assert.Equal(t, "test-realm", cfg.OIDC.Realm)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("LOKA_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("LOKA_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("LOKA_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})
}

func TestOIDCEndpoints(t *testing.T) {
	o := OIDCConfig{BaseURL: "http://keycloak:8081/", Realm: "loka"}

	assert.Equal(t, "http://keycloak:8081/realms/loka/protocol/openid-connect/certs", o.JWKSURL())
	assert.Equal(t, "http://keycloak:8081/realms/loka", o.Issuer())
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "loka",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "sslmode=disable")
	// special characters must be escaped, not embedded raw
	assert.NotContains(t, dsn, "p@ss/word")
}
