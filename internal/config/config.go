package config

import (
	"errors"
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
	// CleanupSecret gates the expiration sweep endpoint. It is compared with
	// constant-time equality against the bearer token supplied by the
	// scheduler (or a manual trigger).
	CleanupSecret string

	// --- Limits ---
	// MaxUploadBytes caps the size of a base64-encoded image or logo payload.
	MaxUploadBytes int64
}

// defaultMaxUploadBytes is 5 MiB, generous for event branding images while
// keeping a single row from ballooning the database file.
const defaultMaxUploadBytes = 5 << 20

// New creates a new Config instance by loading values from environment variables.
// It validates that critical variables are present and will return an error if
// the configuration is invalid, preventing the server from starting.
func New() (*Config, error) {
	cfg := &Config{
		ServerAddr:    os.Getenv("SERVER_ADDR"),
		DataPath:      os.Getenv("DATA_PATH"),
		FrontendURL:   os.Getenv("FRONTEND_URL"),
		CleanupSecret: os.Getenv("CLEANUP_SECRET"),
	}

	// --- Provide sensible defaults for non-critical values ---
	if cfg.DataPath == "" {
		cfg.DataPath = "./data"
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}
	// The tracker map and beacon clients can be served from anywhere by
	// default, matching the open CORS policy of the public API.
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "*"
	}

	cfg.MaxUploadBytes = defaultMaxUploadBytes
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return nil, errors.New("FATAL: MAX_UPLOAD_BYTES must be a positive integer")
		}
		cfg.MaxUploadBytes = n
	}

	// --- Validate critical required values ---
	// The application will "fail fast" if this is not set. There is no
	// fallback secret: an unset CLEANUP_SECRET would otherwise leave the
	// sweep endpoint open to anyone who can guess a default.
	if cfg.CleanupSecret == "" {
		return nil, errors.New("FATAL: CLEANUP_SECRET environment variable is not set")
	}

	cfg.DbPath = filepath.Join(cfg.DataPath, "databases")

	return cfg, nil
}
