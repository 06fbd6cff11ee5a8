package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName         = "WalletAPI"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultAccessMinutes   = 60
	defaultRefreshDays     = 7
	defaultCORSOrigins     = "*"
	defaultCredentialLimit = 5
	defaultAnonymousLimit  = 30
	developmentSecret      = "development-only-secret-change-me"
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	jwtSecretEnvVar        = "JWT_SECRET_KEY"
	accessLifetimeEnvVar   = "JWT_ACCESS_TOKEN_LIFETIME_MINUTES"
	refreshLifetimeEnvVar  = "JWT_REFRESH_TOKEN_LIFETIME_DAYS"
	credentialLimitEnvVar  = "RATE_LIMIT_CREDENTIALS_PER_MINUTE"
	anonymousWriteLimitVar = "RATE_LIMIT_ANONYMOUS_WRITES_PER_MINUTE"
	autoMigrateEnvVar      = "DATABASE_AUTO_MIGRATE"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	// AutoMigrate applies the embedded schema on startup.
	AutoMigrate bool

	// JWTSecret signs both access and refresh tokens. Rotating it invalidates
	// every outstanding token.
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CORSAllowOrigins          string
	CredentialChecksPerMinute int
	AnonymousWritesPerMinute  int
}

// Load reads configuration values from the environment and populates a Config instance.
// A .env file in the working directory is honoured when present; real environment
// variables take precedence over it.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:                   getEnv("APP_NAME", defaultAppName),
		AppEnv:                    getEnv("APP_ENV", defaultAppEnv),
		Port:                      getEnv("PORT", defaultPort),
		LogLevel:                  strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		RedisURL:                  os.Getenv("REDIS_URL"),
		ShutdownPeriod:            defaultShutdownDelay,
		IdempotencyTTL:            defaultIdempotencyTTL,
		JWTSecret:                 os.Getenv(jwtSecretEnvVar),
		AccessTokenTTL:            defaultAccessMinutes * time.Minute,
		RefreshTokenTTL:           defaultRefreshDays * 24 * time.Hour,
		CORSAllowOrigins:          getEnv("CORS_ALLOW_ORIGINS", defaultCORSOrigins),
		CredentialChecksPerMinute: defaultCredentialLimit,
		AnonymousWritesPerMinute:  defaultAnonymousLimit,
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	minutes, err := positiveInt(accessLifetimeEnvVar, defaultAccessMinutes)
	if err != nil {
		return Config{}, err
	}
	cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute

	days, err := positiveInt(refreshLifetimeEnvVar, defaultRefreshDays)
	if err != nil {
		return Config{}, err
	}
	cfg.RefreshTokenTTL = time.Duration(days) * 24 * time.Hour

	if cfg.CredentialChecksPerMinute, err = positiveInt(credentialLimitEnvVar, defaultCredentialLimit); err != nil {
		return Config{}, err
	}
	if cfg.AnonymousWritesPerMinute, err = positiveInt(anonymousWriteLimitVar, defaultAnonymousLimit); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(autoMigrateEnvVar); v != "" {
		if cfg.AutoMigrate, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", autoMigrateEnvVar, err)
		}
	}

	if cfg.IsDevelopment() {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = developmentSecret
		}
		return cfg, nil
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("%s must be set", jwtSecretEnvVar)
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDevelopment reports whether the app runs in a local/dev environment where
// in-memory stores are acceptable.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func positiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return n, nil
}
