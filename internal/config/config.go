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
	defaultAppName         = "CongoPay"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultBackendURL      = "http://localhost:8080"
	defaultPINLength       = 4
	defaultRequestTimeout  = 15 * time.Second
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	requestSecondsEnvVar   = "REQUEST_TIMEOUT_SECONDS"
	requestDurationEnvVar  = "REQUEST_TIMEOUT"
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Credential store backends selectable through CREDENTIAL_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config captures runtime configuration for the PIN pad client and the local
// registration stub, loaded from environment variables.
type Config struct {
	AppName             string
	AppEnv              string
	Port                string
	LogLevel            string
	LogFormat           string
	BackendURL          string
	PINLength           int
	RequestTimeout      time.Duration
	CredentialStore     string
	CredentialNamespace string
	DatabaseURL         string
	RedisURL            string
	ShutdownPeriod      time.Duration
	IdempotencyTTL      time.Duration
}

// Load reads an optional .env file, then populates a Config from the environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv populates a Config from the current process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		AppName:             getEnv("APP_NAME", defaultAppName),
		AppEnv:              getEnv("APP_ENV", defaultAppEnv),
		Port:                getEnv("PORT", defaultPort),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		BackendURL:          strings.TrimRight(getEnv("BACKEND_URL", defaultBackendURL), "/"),
		PINLength:           defaultPINLength,
		CredentialStore:     strings.ToLower(getEnv("CREDENTIAL_STORE", StoreMemory)),
		CredentialNamespace: os.Getenv("CREDENTIAL_NAMESPACE"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
	}

	if v := os.Getenv("PIN_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PIN_LENGTH: %w", err)
		}
		cfg.PINLength = n
	}
	if cfg.PINLength != 4 && cfg.PINLength != 6 {
		return Config{}, fmt.Errorf("PIN_LENGTH must be 4 or 6, got %d", cfg.PINLength)
	}

	var err error
	if cfg.RequestTimeout, err = durationFromEnv(requestSecondsEnvVar, requestDurationEnvVar, defaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationFromEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationFromEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", requestDurationEnvVar)
	}

	switch cfg.CredentialStore {
	case StoreMemory:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when CREDENTIAL_STORE=%s", StoreRedis)
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when CREDENTIAL_STORE=%s", StorePostgres)
		}
	default:
		return Config{}, fmt.Errorf("unknown CREDENTIAL_STORE %q", cfg.CredentialStore)
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("unknown LOG_FORMAT %q", cfg.LogFormat)
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

func durationFromEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
