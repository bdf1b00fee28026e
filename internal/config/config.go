package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the process-level settings read from the environment.
type Config struct {
	Env       string
	HTTPAddr  string
	CORSAllow []string
	MongoURI  string // empty means built-in race texts only
}

// Load reads .env (if present) and the environment.
func Load() Config {
	godotenv.Load()

	cfg := Config{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		MongoURI: getEnv("MONGO_URI", ""),
	}
	cfg.CORSAllow = splitCSV(getEnv("CORS_ALLOW", "http://localhost:3000"))
	return cfg
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NewLogger returns a slog.Logger with formatting + level based on env:
// prod gets JSON at INFO, everything else text at DEBUG.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler
	if env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(handler)
}
