package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mlorenc/go-shop-api/internal/config"
	kafkax "github.com/mlorenc/go-shop-api/internal/kafka"
	"github.com/mlorenc/go-shop-api/internal/mailer"
	"github.com/mlorenc/go-shop-api/internal/notify"
	"github.com/mlorenc/go-shop-api/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName+"-mailer").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis (delay queue)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &mailer.Service{
		Redis:  rdb,
		Sender: &mailer.SMTPSender{Addr: cfg.SMTPAddr},
		Log:    log,
	}

	// parked-job poller
	go svc.RunDelayLoop(ctx)

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.MailerGroup, notify.TopicEmailSend, cfg.MailerWorkers, log)

	go func() {
		log.Info().
			Str("group", cfg.MailerGroup).
			Str("topic", notify.TopicEmailSend).
			Int("workers", cfg.MailerWorkers).
			Msg("mailer consumer started")
		if err := cons.Start(ctx, svc.HandleEmailJob); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down mailer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
