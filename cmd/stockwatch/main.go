package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/mbenitez/stockroom/internal/config"
	"github.com/mbenitez/stockroom/internal/events"
	kafkax "github.com/mbenitez/stockroom/internal/kafka"
	"github.com/mbenitez/stockroom/internal/redisx"
	"github.com/mbenitez/stockroom/internal/stockwatch"
	"github.com/mbenitez/stockroom/internal/storage/postgres"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	i, err := strconv.Atoi(os.Getenv(k))
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func main() {
	_ = godotenv.Load()

	log.SetFormatter(&log.JSONFormatter{})
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &stockwatch.Service{
		Products:          &postgres.ProductRepo{DB: db},
		Redis:             rdb,
		Log:               log.WithField("component", "stockwatch"),
		ServiceName:       cfg.ServiceName + "-stockwatch",
		LowStockThreshold: cfg.LowStockThreshold,
	}

	group := getenv("STOCKWATCH_GROUP", "stockwatch-svc")
	workers := getint("STOCKWATCH_WORKERS", 8)

	cEntered := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicStockEntered, workers)
	cDispatched := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicOrderDispatched, workers)

	go func() {
		log.WithFields(log.Fields{"group": group, "topic": events.TopicStockEntered, "workers": workers}).
			Info("consumer started")
		if err := cEntered.Start(ctx, svc.HandleStockEntered); err != nil {
			log.WithError(err).Error("stock.entered consumer exit")
			cancel()
		}
	}()
	go func() {
		log.WithFields(log.Fields{"group": group, "topic": events.TopicOrderDispatched, "workers": workers}).
			Info("consumer started")
		if err := cDispatched.Start(ctx, svc.HandleOrderDispatched); err != nil {
			log.WithError(err).Error("order.dispatched consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
