package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                 string
	AllowedOrigins       []string
	BootstrapAdminEmails []string
	DefaultDailyLimit    int
	AnonymousDailyLimit  int
	AdminDailyLimit      int
	MaxImageBytes        int64
	GenerationTimeout    time.Duration
	GenAIModel           string
}

func NewConfig() *Config {
	return &Config{
		Port:                 envOr("PORT", "3000"),
		AllowedOrigins:       splitList(envOr("ALLOWED_ORIGINS", "http://localhost:5173")),
		BootstrapAdminEmails: splitList(os.Getenv("BOOTSTRAP_ADMIN_EMAILS")),
		DefaultDailyLimit:    envIntOr("DEFAULT_DAILY_GENERATION_LIMIT", 10),
		AnonymousDailyLimit:  envIntOr("ANONYMOUS_DAILY_GENERATION_LIMIT", 1),
		AdminDailyLimit:      999999,
		MaxImageBytes:        2 << 20,
		GenerationTimeout:    30 * time.Second,
		GenAIModel:           envOr("GENAI_MODEL", "gemini-1.5-flash"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
