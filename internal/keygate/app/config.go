package app

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ConfigDir string // Directory holding keygate.properties and connection files (default: .)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: text)
}

// LoadConfig reads configuration from the environment, after folding in a
// .env file when one sits in the working directory.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		ConfigDir: getEnvOrDefault("KEYGATE_CONFIG_DIR", "."),
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
