// Package config provides functionality for loading environment variables and the
// application configuration.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads environment variables from a .env file in the current or parent
// directory, if one exists. It never overrides variables already set.
// It returns the file that was loaded, or "" when none was found.
func LoadEnv() string {
	var loaded string
	envOnce.Do(func() {
		for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := godotenv.Load(candidate); err == nil {
				loaded = candidate
			}
			return
		}
	})
	return loaded
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
