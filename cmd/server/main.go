package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/fairsplit/fairsplit/internal/amqp"
	"github.com/fairsplit/fairsplit/internal/auth"
	"github.com/fairsplit/fairsplit/internal/config"
	"github.com/fairsplit/fairsplit/internal/events"
	fairsplithttp "github.com/fairsplit/fairsplit/internal/http"
	"github.com/fairsplit/fairsplit/internal/mail"
	"github.com/fairsplit/fairsplit/internal/receipt/gemini"
	"github.com/fairsplit/fairsplit/internal/service"
	"github.com/fairsplit/fairsplit/internal/storage/sqlite"
	"github.com/fairsplit/fairsplit/pkg/logging"
)

// janitorInterval is how often expired reset tokens and pending receipts
// are swept from the database.
const janitorInterval = 10 * time.Minute

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
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
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("Failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		slog.Info("Event publishing enabled", "exchange", cfg.AMQPExchange)
	}

	var mailer mail.Mailer = mail.NopMailer{}
	if cfg.MailEnabled() {
		smtp, err := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			slog.Error("Failed to configure mailer", "error", err)
			os.Exit(1)
		}
		mailer = smtp
		slog.Info("Outgoing mail enabled", "host", cfg.SMTPHost)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	passwords := auth.NewPasswordAuthenticator(store, cfg.ResetTTL)

	authSvc := service.NewAuthService(store, passwords, jwtManager, mailer, cfg.BaseURL)
	groups := service.NewGroupService(store, publisher)
	ledger := service.NewLedgerService(store, publisher)

	var receipts *service.ReceiptService
	if cfg.GeminiAPIKey != "" {
		analyzer, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("Failed to initialize receipt analyzer", "error", err)
			os.Exit(1)
		}
		receipts = service.NewReceiptService(store, analyzer, ledger, cfg.ReceiptTTL)
		slog.Info("Receipt scanning enabled", "model", cfg.GeminiModel)
	} else {
		slog.Warn("GEMINI_API_KEY not set, receipt scanning disabled")
	}

	server := fairsplithttp.NewServer(store, authSvc, groups, ledger, receipts, jwtManager)

	// h2c allows HTTP/2 without TLS behind a terminating proxy.
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(server.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return runJanitor(ctx, store)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// runJanitor periodically removes expired reset tokens and pending receipts.
func runJanitor(ctx context.Context, store *sqlite.SQLiteStore) error {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := time.Now().Unix()
			if n, err := store.DeleteExpiredResetTokens(ctx, now); err != nil {
				slog.Error("Failed to purge reset tokens", "error", err)
			} else if n > 0 {
				slog.Info("Purged expired reset tokens", "count", n)
			}
			if n, err := store.DeleteExpiredPendingReceipts(ctx, now); err != nil {
				slog.Error("Failed to purge pending receipts", "error", err)
			} else if n > 0 {
				slog.Info("Purged expired pending receipts", "count", n)
			}
		}
	}
}
