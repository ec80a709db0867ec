// Package config loads configuration from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all server configuration.
type Config struct {
	// Server
	ListenAddr  string
	MetricsAddr string

	// Logging
	LogLevel  string
	LogFormat string

	// FTP content store
	FTPHost     string
	FTPUser     string
	FTPPass     string
	FTPBasePath string

	// TLS (optional; if both set, the server uses HTTPS)
	TLSCertFile string
	TLSKeyFile  string

	// Browser clients
	CORSOrigins []string

	// CSRF protection. When no secret is configured one is generated
	// at startup; CSRFSecretGenerated marks that case so the server
	// can warn that tokens will not survive restarts.
	CSRFSecret          string
	CSRFSecretGenerated bool

	// AI image generation
	BananaAPIKey string
	BananaAPIURL string

	// Uploads
	MaxUploadSize int64
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:    envOr("LISTEN_ADDR", ":8080"),
		MetricsAddr:   envOr("METRICS_ADDR", ":9090"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		LogFormat:     envOr("LOG_FORMAT", "json"),
		FTPHost:       envOr("FTP_HOST", "localhost"),
		FTPUser:       envOr("FTP_USER", "anonymous"),
		FTPPass:       envOr("FTP_PASS", ""),
		FTPBasePath:   envOr("FTP_BASE_PATH", "/"),
		TLSCertFile:   envOr("TLS_CERT_FILE", ""),
		TLSKeyFile:    envOr("TLS_KEY_FILE", ""),
		CORSOrigins:   envList("CORS_ORIGINS", "http://localhost:5173"),
		CSRFSecret:    envOr("CSRF_SECRET", ""),
		BananaAPIKey:  envOr("BANANA_API_KEY", ""),
		BananaAPIURL:  envOr("BANANA_API_URL", "https://api.nanobanana.com/v1"),
		MaxUploadSize: envInt64("MAX_UPLOAD_SIZE", 100*1024*1024), // 100MB default
	}

	if cfg.CSRFSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate csrf secret: %w", err)
		}
		cfg.CSRFSecret = secret
		cfg.CSRFSecretGenerated = true
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

// envList reads a comma-separated environment variable, trimming
// whitespace and dropping empty items.
func envList(key, fallback string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
