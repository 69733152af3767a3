package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/mv-checkout/internal/api"
	"github.com/example/mv-checkout/internal/checkout"
	"github.com/example/mv-checkout/internal/config"
	"github.com/example/mv-checkout/internal/infrastructure/kafka"
	"github.com/example/mv-checkout/internal/payment"
	"github.com/example/mv-checkout/internal/reconcile"
	"github.com/example/mv-checkout/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := newLogger(cfg)
	log.Info().Str("addr", cfg.HTTPAddr).Strs("brokers", cfg.Brokers()).
		Str("topic", cfg.KafkaTopic).Msg("starting checkout api")

	db, err := storage.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to postgres")
	}
	defer db.Close()
	repo := storage.NewPostgresRepository(db, log)

	producer := kafka.NewProducer(cfg.Brokers(), cfg.KafkaTopic, log)
	defer producer.Close()

	fallback := payment.FallbackMockSuccess
	if cfg.IsProduction() {
		fallback = payment.FallbackFail
	}
	payer := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentAPIKey, cfg.Currency, log,
		payment.WithFallbackPolicy(fallback))

	checkoutSvc := checkout.NewService(repo, payer, producer, log)
	reconciler := reconcile.NewReconciler(repo, producer, log)

	handlers := api.NewHandlers(checkoutSvc, repo, log)
	webhook := api.NewWebhookHandler(reconciler, cfg.WebhookSecret, cfg.IsProduction(), log)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(handlers, webhook, log),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsProduction() {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.DebugLevel)
}
