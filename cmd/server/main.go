// CMS Bridge Server
//
// Features:
// - FTP-backed file listing, reading and writing for the editor frontend
// - Automatic character encoding detection and conversion (Shift_JIS, EUC-JP, ...)
// - Binary image upload over FTP
// - AI image generation proxy (text-to-image, image-to-image, multi-image)
// - Stateless CSRF protection and CORS for the browser frontend
// - Prometheus metrics & structured logging (zap)
package main

import (
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/marbeau17/cms-app/internal/api"
	"github.com/marbeau17/cms-app/internal/config"
	"github.com/marbeau17/cms-app/internal/ftp"
	"github.com/marbeau17/cms-app/internal/logging"
	"github.com/marbeau17/cms-app/internal/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	// Initialize structured logging
	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("CMS Bridge Server starting...",
		zap.String("listen", cfg.ListenAddr),
		zap.String("metrics", cfg.MetricsAddr),
		zap.String("ftp_host", cfg.FTPHost),
		zap.String("ftp_base", cfg.FTPBasePath))

	if cfg.CSRFSecretGenerated {
		logging.Warn("CSRF_SECRET not set, generated an ephemeral secret; tokens will not survive a restart")
	}

	// FTP bridge: one session per request, no pooling
	dialer := ftp.NewServerDialer(cfg.FTPHost, cfg.FTPUser, cfg.FTPPass)
	bridge := ftp.NewBridge(dialer, cfg.FTPBasePath)

	// AI image generation proxy
	images := api.NewImageClient(cfg.BananaAPIURL, cfg.BananaAPIKey)

	// Create API server
	srv := api.NewServer(bridge, images, cfg)

	// Start metrics server
	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metrics.Handler(),
	}
	go func() {
		logging.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("metrics server error", zap.Error(err))
		}
	}()

	// Start HTTP(S) server
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
	if useTLS {
		httpServer.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS13,
		}
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logging.Info("shutting down...")
		httpServer.Close()
		metricsServer.Close()
	}()

	if useTLS {
		logging.Info("server listening (TLS 1.3)",
			zap.String("addr", cfg.ListenAddr),
			zap.String("cert", cfg.TLSCertFile))
		if err := httpServer.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile); err != http.ErrServerClosed {
			logging.Fatal("server error", zap.Error(err))
		}
	} else {
		logging.Info("server listening (HTTP)", zap.String("addr", cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logging.Fatal("server error", zap.Error(err))
		}
	}
}
