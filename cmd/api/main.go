package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mlorenc/go-shop-api/internal/auth"
	"github.com/mlorenc/go-shop-api/internal/config"
	"github.com/mlorenc/go-shop-api/internal/httpx"
	"github.com/mlorenc/go-shop-api/internal/images"
	kafkax "github.com/mlorenc/go-shop-api/internal/kafka"
	"github.com/mlorenc/go-shop-api/internal/notify"
	"github.com/mlorenc/go-shop-api/internal/postgres"
	"github.com/mlorenc/go-shop-api/internal/redisx"
	"github.com/mlorenc/go-shop-api/internal/shop"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for email jobs
	prod := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicEmailSend, 1024, log)
	prod.Start(ctx)

	// Repos & services
	productRepo := &shop.ProductRepo{DB: db}
	orderRepo := &shop.OrderRepo{DB: db}
	userRepo := &shop.UserRepo{DB: db}

	scheduler := &notify.EmailScheduler{
		Cfg:      notify.Config{From: cfg.SMTPFrom},
		Producer: prod,
		Log:      log,
	}
	workflow := &shop.OrderWorkflow{
		Products: productRepo,
		Orders:   orderRepo,
		Notify:   scheduler,
		Log:      log,
	}
	stats := &shop.StatsEngine{Items: orderRepo}
	tokens := &auth.TokenIssuer{Secret: []byte(cfg.JWTSecret)}
	media := &images.MediaStore{Dir: cfg.MediaDir}
	validate := httpx.NewValidator()

	router := httpx.NewRouter()
	httpx.MountMedia(router, cfg.MediaDir)

	uh := &httpx.UsersHandler{Users: userRepo, Tokens: tokens, Validate: validate, Log: log}
	uh.Register(router)
	ph := &httpx.ProductsHandler{Catalog: productRepo, Media: media, Tokens: tokens, Log: log}
	ph.Register(router)
	oh := &httpx.OrdersHandler{
		Workflow: workflow,
		Orders:   orderRepo,
		Stats:    stats,
		Users:    userRepo,
		Tokens:   tokens,
		Redis:    rdb,
		Validate: validate,
		Log:      log,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
