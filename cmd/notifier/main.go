package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/example/mv-checkout/internal/config"
	"github.com/example/mv-checkout/internal/email"
	"github.com/example/mv-checkout/internal/infrastructure/kafka"
	"github.com/example/mv-checkout/internal/notification"
)

// Dedicated consumer group so the notifier tracks its own offsets.
const consumerGroup = "email-notifier"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Info().Strs("brokers", cfg.Brokers()).Str("topic", cfg.KafkaTopic).
		Str("group", consumerGroup).
		Str("smtp", cfg.SMTPHost+":"+cfg.SMTPPort).Msg("starting notifier")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailFrom)
	handler := notification.NewHandler(emailSvc, log)

	consumer := kafka.NewConsumer(cfg.Brokers(), cfg.KafkaTopic, consumerGroup, log)
	defer consumer.Close()

	go func() {
		log.Info().Msg("consuming checkout events")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("consumer stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	cancel()
}
