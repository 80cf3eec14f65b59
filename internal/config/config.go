// Package config reads the application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret     string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	SMSDryRun        bool

	GCSBucket     string
	GCSAccessID   string
	GCSPrivateKey string
	SignedURLTTL  time.Duration

	ChatBackendURL  string
	MeetAccessToken string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         "8080",
		AccessTTL:    time.Hour,
		RefreshTTL:   30 * 24 * time.Hour,
		SignedURLTTL: 15 * time.Minute,
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg.RefreshSecret = os.Getenv("REFRESH_SECRET")
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("REFRESH_SECRET environment variable is required")
	}

	if v := os.Getenv("ACCESS_EXPIRES_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("ACCESS_EXPIRES_SECONDS must be a positive integer, got %q", v)
		}
		cfg.AccessTTL = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv("REFRESH_TTL_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("REFRESH_TTL_DAYS must be a positive integer, got %q", v)
		}
		cfg.RefreshTTL = time.Duration(days) * 24 * time.Hour
	}

	cfg.TwilioAccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.TwilioFrom = os.Getenv("TWILIO_FROM_NUMBER")
	cfg.SMSDryRun = os.Getenv("SMS_DRY_RUN") == "true"
	if !cfg.SMSDryRun && (cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFrom == "") {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER are required unless SMS_DRY_RUN=true")
	}

	cfg.GCSBucket = os.Getenv("GCS_BUCKET")
	cfg.GCSAccessID = os.Getenv("GCS_ACCESS_ID")
	cfg.GCSPrivateKey = os.Getenv("GCS_PRIVATE_KEY")

	cfg.ChatBackendURL = os.Getenv("CHAT_BACKEND_URL")
	if cfg.ChatBackendURL == "" {
		cfg.ChatBackendURL = "http://localhost:8000"
	}

	cfg.MeetAccessToken = os.Getenv("MEET_ACCESS_TOKEN")

	return cfg, nil
}
