package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/vitraforge/atelier/internal/api"
	"github.com/vitraforge/atelier/internal/config"
	"github.com/vitraforge/atelier/internal/database"
	"github.com/vitraforge/atelier/internal/email"
	"github.com/vitraforge/atelier/internal/realtime"
	"github.com/vitraforge/atelier/internal/storage"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	}

	// Load .env in development; in production variables come from the
	// environment and the file is simply absent.
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables")
	}

	cfg, err := config.New()
	if err != nil {
		log.WithError(err).Fatal("Configuration error")
	}

	if err := os.MkdirAll(cfg.DbPath, 0o755); err != nil {
		log.WithError(err).Fatal("Could not create data directory")
	}

	db, err := database.NewService(filepath.Join(cfg.DbPath, "atelier.db"), log)
	if err != nil {
		log.WithError(err).Fatal("Could not open database")
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.WithError(err).Fatal("Could not initialize database schema")
	}

	broker := realtime.NewBroker(log)

	// Email and object storage are optional: without them the related
	// endpoints degrade (no outbound mail, uploads answer 503) but the rest
	// of the site runs.
	var emailSvc *email.EmailService
	if cfg.EmailConfigured() {
		emailSvc = email.NewEmailService(email.SMTPServerConfig{
			Host:     cfg.SmtpHost,
			Port:     cfg.SmtpPort,
			Username: cfg.SmtpUser,
			Password: cfg.SmtpPass,
			Sender:   cfg.SmtpSender,
		})
		log.Info("Email service configured")
	} else {
		log.Warn("SMTP not configured, outbound email disabled")
	}

	var uploader *storage.Uploader
	if cfg.StorageConfigured() {
		uploader, err = storage.NewUploader(context.Background(), cfg, log)
		if err != nil {
			log.WithError(err).Fatal("Could not configure object storage")
		}
		log.Info("Object storage configured")
	} else {
		log.Warn("Object storage not configured, uploads disabled")
	}

	server := api.NewServer(cfg, db, broker, emailSvc, uploader, log)

	router := chi.NewRouter()
	server.RegisterRoutes(router)

	log.WithField("addr", cfg.ServerAddr).Info("Starting server")
	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
