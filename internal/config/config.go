package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the NechGen server.
type Config struct {
	DBPath        string
	ServerPort    int
	LogLevel      string
	SentryDSN     string
	Environment   string
	ShutdownGrace time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	DraftAPIKey  string
	DraftBaseURL string
	DraftModel   string

	RefineAPIKeys []string
	RefineBaseURL string
	RefineModel   string

	TavilyAPIKey  string
	TavilyBaseURL string

	ImageAPIKey  string
	ImageBaseURL string
	ImageModel   string

	RateLimitPerSecond float64
	RateLimitBurst     int
	RateLimitTTL       time.Duration
}

const (
	defaultDBPath        = "./data/nechgen.db"
	defaultServerPort    = 5000
	defaultLogLevel      = "info"
	defaultShutdownGrace = 10 * time.Second
	defaultTokenTTL      = 30 * 24 * time.Hour

	defaultDraftBaseURL  = "https://api.groq.com/openai/v1"
	defaultDraftModel    = "llama-3.3-70b-versatile"
	defaultRefineBaseURL = "https://openrouter.ai/api/v1"
	defaultRefineModel   = "google/gemini-2.0-flash-001"
	defaultTavilyBaseURL = "https://api.tavily.com"
	defaultImageBaseURL  = "https://api.openai.com/v1"
	defaultImageModel    = "dall-e-3"

	defaultRateLimitPerSecond = 5.0
	defaultRateLimitBurst     = 10
	defaultRateLimitTTL       = 5 * time.Minute
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:        getEnv("DB_PATH", defaultDBPath),
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Environment:   os.Getenv("ENV"),
		ShutdownGrace: defaultShutdownGrace,

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  defaultTokenTTL,

		DraftAPIKey:  os.Getenv("GROQ_API_KEY"),
		DraftBaseURL: getEnv("GROQ_BASE_URL", defaultDraftBaseURL),
		DraftModel:   getEnv("GROQ_MODEL", defaultDraftModel),

		RefineBaseURL: getEnv("REFINE_BASE_URL", defaultRefineBaseURL),
		RefineModel:   getEnv("REFINE_MODEL", defaultRefineModel),

		TavilyAPIKey:  os.Getenv("TAVILY_API_KEY"),
		TavilyBaseURL: getEnv("TAVILY_BASE_URL", defaultTavilyBaseURL),

		ImageAPIKey:  os.Getenv("IMAGE_API_KEY"),
		ImageBaseURL: getEnv("IMAGE_BASE_URL", defaultImageBaseURL),
		ImageModel:   getEnv("IMAGE_MODEL", defaultImageModel),

		RateLimitPerSecond: defaultRateLimitPerSecond,
		RateLimitBurst:     defaultRateLimitBurst,
		RateLimitTTL:       defaultRateLimitTTL,
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, eris.New("JWT_SECRET is required")
	}

	if keysRaw := os.Getenv("REFINE_API_KEYS"); keysRaw != "" {
		keys, err := parseKeyList(keysRaw)
		if err != nil {
			return nil, eris.Wrap(err, "parsing REFINE_API_KEYS")
		}
		cfg.RefineAPIKeys = keys
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	if ttlValue := os.Getenv("TOKEN_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid TOKEN_TTL value: %s", ttlValue)
		}
		cfg.TokenTTL = ttl
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseKeyList(raw string) ([]string, error) {
	// Accept either a JSON array of strings or a comma separated list.
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "[") {
		var keys []string
		if err := json.Unmarshal([]byte(trimmed), &keys); err != nil {
			return nil, eris.Wrap(err, "decoding JSON key list")
		}
		if len(keys) == 0 {
			return nil, eris.New("key list is empty")
		}
		return keys, nil
	}

	var keys []string
	for _, part := range strings.Split(trimmed, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		return nil, eris.New("key list is empty")
	}

	return keys, nil
}
