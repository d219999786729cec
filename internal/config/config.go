// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string // "postgres" or "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string // sqlite file path

	// Simulation
	TickInterval  time.Duration
	StartDate     time.Time
	EventsEnabled bool
}

// Load loads configuration from environment variables, reading a .env file
// first when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "folioman"),
		DBPassword: getEnv("DB_PASSWORD", "folioman"),
		DBName:     getEnv("DB_NAME", "folioman"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "folioman.db"),

		EventsEnabled: getEnv("SIM_EVENTS_ENABLED", "true") == "true",
	}

	intervalStr := getEnv("SIM_TICK_INTERVAL", "5s")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil || interval <= 0 {
		log.Printf("Warning: invalid SIM_TICK_INTERVAL value '%s', falling back to 5s\n", intervalStr)
		interval = 5 * time.Second
	}
	config.TickInterval = interval

	startStr := getEnv("SIM_START_DATE", "")
	if startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			log.Printf("Warning: invalid SIM_START_DATE value '%s', falling back to today\n", startStr)
			start = time.Now()
		}
		config.StartDate = start
	} else {
		config.StartDate = time.Now()
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
