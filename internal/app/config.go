package app

import (
	"fmt"
	"time"

	"github.com/yungbote/learnbridge-backend/internal/delivery"
	"github.com/yungbote/learnbridge-backend/internal/platform/envutil"
)

const minSecretLen = 32

// Config is the full environment surface. Everything here is read once
// at startup; nothing re-reads the environment later.
type Config struct {
	Port string

	AccessSecret  string
	RefreshSecret string
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	AdminEmails      []string
	InstructorEmails []string

	DeliveryBaseURL    string
	DeliverySecret     string
	DeliveryTTLSeconds int

	AllowedOrigins []string

	GCSBucket string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Port: envutil.String("HTTP_PORT", "8080"),

		AccessSecret:  envutil.String("ACCESS_TOKEN_SECRET", ""),
		RefreshSecret: envutil.String("REFRESH_TOKEN_SECRET", ""),
		Issuer:        envutil.String("TOKEN_ISSUER", "learnbridge"),
		Audience:      envutil.String("TOKEN_AUDIENCE", "learnbridge-api"),
		AccessTTL:     time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 900)) * time.Second,
		RefreshTTL:    time.Duration(envutil.Int("REFRESH_TOKEN_TTL", 604800)) * time.Second,

		GoogleClientID:     envutil.String("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envutil.String("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  envutil.String("GOOGLE_REDIRECT_URI", ""),

		AdminEmails:      envutil.List("ADMIN_EMAILS"),
		InstructorEmails: envutil.List("INSTRUCTOR_EMAILS"),

		DeliveryBaseURL:    envutil.String("DELIVERY_BASE_URL", "http://localhost:8080"),
		DeliverySecret:     envutil.String("DELIVERY_SIGNING_SECRET", ""),
		DeliveryTTLSeconds: envutil.Int("DELIVERY_URL_TTL", delivery.MaxTTLSeconds),

		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS"),

		GCSBucket: envutil.String("GCS_BUCKET", ""),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if len(c.AccessSecret) < minSecretLen {
		return fmt.Errorf("ACCESS_TOKEN_SECRET must be at least %d bytes", minSecretLen)
	}
	if len(c.RefreshSecret) < minSecretLen {
		return fmt.Errorf("REFRESH_TOKEN_SECRET must be at least %d bytes", minSecretLen)
	}
	if len(c.DeliverySecret) < minSecretLen {
		return fmt.Errorf("DELIVERY_SIGNING_SECRET must be at least %d bytes", minSecretLen)
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.DeliveryTTLSeconds <= 0 || c.DeliveryTTLSeconds > delivery.MaxTTLSeconds {
		return fmt.Errorf("DELIVERY_URL_TTL must be between 1 and %d seconds", delivery.MaxTTLSeconds)
	}
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" || c.GoogleRedirectURI == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URI are required")
	}
	return nil
}
