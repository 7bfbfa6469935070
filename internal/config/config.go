package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// BackendURL is the base URL of the marksheet backend (students and marksheets API).
	BackendURL string
	// BackendTimeout bounds every single backend call. Zero disables the timeout.
	BackendTimeout time.Duration

	// RedisURL enables the template option cache. Empty disables it.
	RedisURL         string
	TemplateCacheTTL time.Duration

	// SubmitRatePerMinute limits bulk submissions per client IP.
	SubmitRatePerMinute int

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string

	Defaults FormDefaults
}

// FormDefaults are the values a freshly opened template form starts with.
type FormDefaults struct {
	College     string
	Department  string
	TestName    string
	Remarks     string
	FromAddress string
	TotalMark   int
	PassingMark int
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "pretty"),
		BackendURL:          strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000/api"), "/"),
		BackendTimeout:      time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 30)) * time.Second,
		RedisURL:            getEnv("REDIS_URL", ""),
		TemplateCacheTTL:    time.Duration(getEnvInt("TEMPLATE_CACHE_TTL_SECONDS", 60)) * time.Second,
		SubmitRatePerMinute: getEnvInt("SUBMIT_RATE_PER_MINUTE", 10),
		AllowedOrigins:      parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		Defaults: FormDefaults{
			College:     getEnv("DEFAULT_COLLEGE", "Dr. Sivanthi Aditanar College of Engineering , Tiruchendur"),
			Department:  getEnv("DEFAULT_DEPARTMENT", "Information Technology"),
			TestName:    getEnv("DEFAULT_TEST_NAME", "Periodical Test 1"),
			Remarks:     getEnv("DEFAULT_REMARKS", "Work Hard. Study well and can do better"),
			FromAddress: getEnv("DEFAULT_FROM_ADDRESS", "The Principal Dr. Sivanthi Aditanar College of Engineering, Tirunelveli Road, Tiruchendur - 628 215"),
			TotalMark:   getEnvInt("DEFAULT_TOTAL_MARK", 100),
			PassingMark: getEnvInt("DEFAULT_PASSING_MARK", 50),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
