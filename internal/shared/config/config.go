package config

import (
	"os"
	"strconv"
	"strings"

	"resolution-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	DatabaseURL     string
	Env             string

	TemplatesDir  string
	EntitiesFile  string
	RegisterStore string
	RegisterPath  string
	// TemplatesWatch reloads TemplatesDir when its files change.
	TemplatesWatch bool

	// GenerateRatePerSec and GenerateBurst limit POST /documents per client. Zero disables.
	GenerateRatePerSec float64
	GenerateBurst      int
}

// Register store kinds.
const (
	RegisterStoreFile     = "file"
	RegisterStoreObject   = "object"
	RegisterStorePostgres = "postgres"
)

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:        dbURL,
		Env:                env,
		TemplatesDir:       getEnv("TEMPLATES_DIR", "./templates"),
		EntitiesFile:       getEnv("ENTITIES_FILE", ""),
		RegisterStore:      normalizeRegisterStore(getEnv("REGISTER_STORE", RegisterStoreFile)),
		RegisterPath:       getEnv("REGISTER_PATH", "./data/resolution_register.json"),
		TemplatesWatch:     getEnvBool("TEMPLATES_WATCH", false),
		GenerateRatePerSec: getEnvFloat("GENERATE_RATE_PER_SEC", 0),
		GenerateBurst:      getEnvInt("GENERATE_BURST", 0),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.env_invalid", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.env_invalid", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.env_invalid", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeRegisterStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "object", "s3":
		return RegisterStoreObject
	case "postgres", "pg", "db":
		return RegisterStorePostgres
	default:
		return RegisterStoreFile
	}
}
