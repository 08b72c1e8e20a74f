package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fairsplit/fairsplit/internal/amqp"
	"github.com/fairsplit/fairsplit/internal/config"
	"github.com/fairsplit/fairsplit/internal/mail"
	"github.com/fairsplit/fairsplit/internal/storage/sqlite"
	"github.com/fairsplit/fairsplit/internal/worker"
	"github.com/fairsplit/fairsplit/pkg/logging"
)

// The notifier consumes ledger events from the broker and mails group
// members about activity. It runs as a separate process from the API
// server so slow SMTP conversations never block request handling.
func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if !cfg.EventsEnabled() {
		slog.Error("AMQP_URL is required for the notifier")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("Failed to connect to message broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	var mailer mail.Mailer = mail.NopMailer{}
	if cfg.MailEnabled() {
		smtp, err := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			slog.Error("Failed to configure mailer", "error", err)
			os.Exit(1)
		}
		mailer = smtp
	} else {
		slog.Warn("SMTP_HOST not set, notifications will be dropped")
	}

	notifier := worker.NewNotifier(store, client, mailer)
	slog.Info("Notifier starting", "queue", cfg.AMQPQueue)
	if err := notifier.Run(ctx); err != nil {
		slog.Error("Notifier failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Notifier stopped")
}
