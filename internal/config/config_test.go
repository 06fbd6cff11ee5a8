package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_ACCESS_TOKEN_LIFETIME_MINUTES", "")
	t.Setenv("JWT_REFRESH_TOKEN_LIFETIME_DAYS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, ":8080", cfg.Address())
}

func TestLoadTokenLifetimes(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_ACCESS_TOKEN_LIFETIME_MINUTES", "15")
	t.Setenv("JWT_REFRESH_TOKEN_LIFETIME_DAYS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenTTL)
}

func TestLoadRejectsInvalidLifetime(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_ACCESS_TOKEN_LIFETIME_MINUTES", "-1")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/wallet")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET_KEY", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadAutoMigrate(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_AUTO_MIGRATE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AutoMigrate)

	t.Setenv("DATABASE_AUTO_MIGRATE", "maybe")
	_, err = Load()
	require.Error(t, err)
}
