package config

import (
	"testing"
	"time"
)

var envKeys = []string{
	"APP_NAME", "APP_ENV", "PORT", "LOG_LEVEL", "LOG_FORMAT", "BACKEND_URL", "PIN_LENGTH",
	"CREDENTIAL_STORE", "CREDENTIAL_NAMESPACE", "DATABASE_URL", "REDIS_URL",
	requestSecondsEnvVar, requestDurationEnvVar, idemTTLSecondsEnvVar, idemTTLDurEnvVar,
	shutdownSecondsEnvVar, shutdownDurationEnvVar,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.PINLength != 4 {
		t.Fatalf("expected PIN length 4, got %d", cfg.PINLength)
	}
	if cfg.CredentialStore != StoreMemory {
		t.Fatalf("expected memory store, got %s", cfg.CredentialStore)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("expected request timeout %s, got %s", defaultRequestTimeout, cfg.RequestTimeout)
	}
	if cfg.BackendURL != "http://localhost:8080" {
		t.Fatalf("unexpected backend url %s", cfg.BackendURL)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	t.Setenv("PIN_LENGTH", "6")
	t.Setenv(requestSecondsEnvVar, "3")
	t.Setenv(requestDurationEnvVar, "1m")
	t.Setenv(idemTTLDurEnvVar, "90s")
	t.Setenv("CREDENTIAL_STORE", "REDIS")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.BackendURL != "https://api.example.com" {
		t.Fatalf("trailing slash should be trimmed, got %s", cfg.BackendURL)
	}
	if cfg.PINLength != 6 {
		t.Fatalf("expected PIN length 6, got %d", cfg.PINLength)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("seconds variable should win, got %s", cfg.RequestTimeout)
	}
	if cfg.IdempotencyTTL != 90*time.Second {
		t.Fatalf("expected idempotency ttl 90s, got %s", cfg.IdempotencyTTL)
	}
	if cfg.CredentialStore != StoreRedis {
		t.Fatalf("expected redis store, got %s", cfg.CredentialStore)
	}
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"pin length":        {"PIN_LENGTH": "5"},
		"pin length parse":  {"PIN_LENGTH": "four"},
		"timeout parse":     {requestDurationEnvVar: "soon"},
		"timeout zero":      {requestSecondsEnvVar: "0"},
		"redis without url": {"CREDENTIAL_STORE": StoreRedis},
		"pg without url":    {"CREDENTIAL_STORE": StorePostgres},
		"unknown store":     {"CREDENTIAL_STORE": "sqlite"},
		"unknown format":    {"LOG_FORMAT": "xml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}
