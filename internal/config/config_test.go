package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendTimeout != 10*time.Second {
		t.Errorf("backend timeout: got %v, want 10s", cfg.BackendTimeout)
	}
	if cfg.SearchDebounce != 500*time.Millisecond {
		t.Errorf("search debounce: got %v, want 500ms", cfg.SearchDebounce)
	}
	if cfg.SessionStore != StoreMemory {
		t.Errorf("session store: got %q", cfg.SessionStore)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendTimeout != 3*time.Second {
		t.Errorf("got %v", cfg.BackendTimeout)
	}
	if cfg.SessionStore != StoreRedis {
		t.Errorf("got %q", cfg.SessionStore)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("origins: got %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "mongo")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TOKEN_SEAL_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error with default secrets in production")
	}
}
