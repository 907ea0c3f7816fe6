package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"DB_PATH", "SERVER_PORT", "LOG_LEVEL", "SENTRY_DSN", "ENV",
		"JWT_SECRET", "TOKEN_TTL",
		"GROQ_API_KEY", "GROQ_BASE_URL", "GROQ_MODEL",
		"REFINE_API_KEYS", "REFINE_BASE_URL", "REFINE_MODEL",
		"TAVILY_API_KEY", "TAVILY_BASE_URL",
		"IMAGE_API_KEY", "IMAGE_BASE_URL", "IMAGE_MODEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBPath != defaultDBPath {
		t.Errorf("expected default DB path %q, got %q", defaultDBPath, cfg.DBPath)
	}

	if cfg.ServerPort != defaultServerPort {
		t.Errorf("expected default server port %d, got %d", defaultServerPort, cfg.ServerPort)
	}

	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}

	if cfg.TokenTTL != defaultTokenTTL {
		t.Errorf("expected default token TTL %s, got %s", defaultTokenTTL, cfg.TokenTTL)
	}

	if cfg.DraftBaseURL != defaultDraftBaseURL {
		t.Errorf("expected default draft base URL %q, got %q", defaultDraftBaseURL, cfg.DraftBaseURL)
	}

	if cfg.RefineAPIKeys != nil {
		t.Errorf("expected nil refine API keys, got %v", cfg.RefineAPIKeys)
	}

	if cfg.ShutdownGrace != defaultShutdownGrace {
		t.Errorf("expected shutdown grace %s, got %s", defaultShutdownGrace, cfg.ShutdownGrace)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoadParsesRefineKeysFromJSON(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REFINE_API_KEYS", `["key-one","key-two"]`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(cfg.RefineAPIKeys) != 2 || cfg.RefineAPIKeys[0] != "key-one" || cfg.RefineAPIKeys[1] != "key-two" {
		t.Fatalf("unexpected refine API keys: %v", cfg.RefineAPIKeys)
	}
}

func TestLoadParsesRefineKeysFromCommaList(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REFINE_API_KEYS", " key-one , key-two ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(cfg.RefineAPIKeys) != 2 || cfg.RefineAPIKeys[0] != "key-one" || cfg.RefineAPIKeys[1] != "key-two" {
		t.Fatalf("unexpected refine API keys: %v", cfg.RefineAPIKeys)
	}
}

func TestLoadRejectsMalformedRefineKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REFINE_API_KEYS", `["broken`)

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for malformed key list")
	}

	if !strings.Contains(err.Error(), "REFINE_API_KEYS") {
		t.Fatalf("expected error to mention REFINE_API_KEYS, got %v", err)
	}
}

func TestLoadParsesTokenTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TOKEN_TTL", "48h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.TokenTTL != 48*time.Hour {
		t.Fatalf("expected 48h token TTL, got %s", cfg.TokenTTL)
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid port")
	}
}
