package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configuration for the application. By centralizing these
// settings, we make the application easier to manage and deploy.
type Config struct {
	// --- Server & Paths ---
	ServerAddr  string
	DataPath    string
	DbPath      string
	FrontendURL string

	// --- Security ---
	JwtSecret string

	// --- Email (SMTP) ---
	SmtpHost   string
	SmtpPort   int
	SmtpUser   string
	SmtpPass   string
	SmtpSender string
	AdminEmail string // Inbox that receives new contact message notifications

	// --- Object Storage (S3-compatible, e.g. Cloudflare R2) ---
	StorageAccountID    string
	StorageAccessKeyID  string
	StorageAccessSecret string
	StorageBucket       string
	StoragePublicURL    string // Public base URL for uploaded objects, with a %s key placeholder

	// --- Google OAuth 2.0 ---
	GoogleOauthClientID     string
	GoogleOauthClientSecret string
	GoogleOauthRedirectURL  string

	// --- Parsed & Derived Fields ---
	// Parsed version of FrontendURL for easy access to its components (scheme, host, etc.).
	// This is used for CORS and the SSE Access-Control-Allow-Origin header.
	ParsedFrontendURL *url.URL
}

// New creates a new Config instance by loading values from environment variables.
// It validates that critical variables are present and will return an error if
// the configuration is invalid, preventing the server from starting.
func New() (*Config, error) {
	// Attempt to parse the SMTP port from the environment.
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	// Load all configuration values directly from environment variables.
	cfg := &Config{
		ServerAddr:              os.Getenv("SERVER_ADDR"),
		DataPath:                os.Getenv("DATA_PATH"),
		JwtSecret:               os.Getenv("JWT_SECRET"),
		FrontendURL:             os.Getenv("FRONTEND_URL"),
		SmtpHost:                os.Getenv("SMTP_HOST"),
		SmtpPort:                port,
		SmtpUser:                os.Getenv("SMTP_USER"),
		SmtpPass:                os.Getenv("SMTP_PASS"),
		SmtpSender:              os.Getenv("SMTP_SENDER"),
		AdminEmail:              os.Getenv("ADMIN_EMAIL"),
		StorageAccountID:        os.Getenv("STORAGE_ACCOUNT_ID"),
		StorageAccessKeyID:      os.Getenv("STORAGE_ACCESS_KEY_ID"),
		StorageAccessSecret:     os.Getenv("STORAGE_ACCESS_KEY_SECRET"),
		StorageBucket:           os.Getenv("STORAGE_BUCKET"),
		StoragePublicURL:        os.Getenv("STORAGE_PUBLIC_URL"),
		GoogleOauthClientID:     os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
		GoogleOauthClientSecret: os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
		GoogleOauthRedirectURL:  os.Getenv("GOOGLE_OAUTH_REDIRECT_URL"),
	}

	// --- Provide sensible defaults for non-critical values ---
	if cfg.DataPath == "" {
		cfg.DataPath = "./data"
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}

	// --- Validate critical required values ---
	// The application will "fail fast" if these are not set.
	if cfg.JwtSecret == "" {
		return nil, errors.New("FATAL: JWT_SECRET environment variable is not set")
	}
	if cfg.FrontendURL == "" {
		return nil, errors.New("FATAL: FRONTEND_URL environment variable is not set")
	}

	// --- Parse and derive necessary fields ---
	parsedURL, err := url.Parse(cfg.FrontendURL)
	if err != nil {
		return nil, errors.New("FATAL: Invalid FRONTEND_URL format")
	}
	cfg.ParsedFrontendURL = parsedURL

	cfg.DbPath = filepath.Join(cfg.DataPath, "databases")

	return cfg, nil
}

// StorageConfigured reports whether the object storage credentials are present.
// Upload endpoints answer 503 when storage is not configured, instead of the
// whole server refusing to start: the rest of the site works without it.
func (c *Config) StorageConfigured() bool {
	return c.StorageAccountID != "" && c.StorageAccessKeyID != "" &&
		c.StorageAccessSecret != "" && c.StorageBucket != ""
}

// OauthConfigured reports whether Google OAuth login is available.
func (c *Config) OauthConfigured() bool {
	return c.GoogleOauthClientID != "" && c.GoogleOauthClientSecret != ""
}

// EmailConfigured reports whether outbound SMTP email is available.
func (c *Config) EmailConfigured() bool {
	return c.SmtpHost != "" && c.SmtpSender != ""
}
