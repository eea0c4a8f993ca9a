package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type ClerkConfig struct {
	SecretKey string
}

// IsConfigured returns true if all required Clerk configuration is present
func (c ClerkConfig) IsConfigured() bool {
	return c.SecretKey != ""
}

// LivenessConfig tunes the heartbeat evaluation. Both values are optional;
// the defaults match the slowest supported agent sync cadence with margin.
type LivenessConfig struct {
	OnlineThreshold time.Duration
	SweepInterval   time.Duration
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL        string
	DatabaseSchema     string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	ServerLogsURL      string
	AlertWebhookURL    string
	UseStrictConfig    bool // If true, error when authentication is not fully configured

	LivenessConfig LivenessConfig
	ClerkConfig    ClerkConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	// Core required configuration
	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	onlineThreshold, err := getEnvDuration("ONLINE_THRESHOLD", 90*time.Second)
	if err != nil {
		return nil, err
	}

	sweepInterval, err := getEnvDuration("LIVENESS_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		// Core configuration
		DatabaseURL:        databaseURL,
		DatabaseSchema:     databaseSchema,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		ServerLogsURL:      getEnvWithDefault("SERVER_LOGS_URL", ""),
		AlertWebhookURL:    os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "true") == "true",

		LivenessConfig: LivenessConfig{
			OnlineThreshold: onlineThreshold,
			SweepInterval:   sweepInterval,
		},

		// Clerk configuration (optional)
		ClerkConfig: ClerkConfig{
			SecretKey: os.Getenv("CLERK_SECRET_KEY"),
		},
	}

	if config.ClerkConfig.IsConfigured() {
		log.Printf("✅ Clerk authentication configured")
	} else {
		log.Printf("⚠️ Clerk authentication not configured - Dashboard authentication will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("clerk authentication is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	log.Printf(
		"✅ Liveness configured: online threshold %s, sweep interval %s",
		config.LivenessConfig.OnlineThreshold,
		config.LivenessConfig.SweepInterval,
	)

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return parsed, nil
}
