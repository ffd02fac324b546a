package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/mbenitez/stockroom/internal/catalog"
	"github.com/mbenitez/stockroom/internal/config"
	"github.com/mbenitez/stockroom/internal/events"
	"github.com/mbenitez/stockroom/internal/fulfillment"
	"github.com/mbenitez/stockroom/internal/httpx"
	kafkax "github.com/mbenitez/stockroom/internal/kafka"
	"github.com/mbenitez/stockroom/internal/listings"
	"github.com/mbenitez/stockroom/internal/metrics"
	"github.com/mbenitez/stockroom/internal/purchasing"
	"github.com/mbenitez/stockroom/internal/redisx"
	"github.com/mbenitez/stockroom/internal/storage/postgres"
)

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
	if err := postgres.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("db migrate")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pEntered := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicStockEntered, 1024)
	pEntered.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderStatusChanged, 1024)
	pStatus.Start(ctx)
	pDispatched := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderDispatched, 1024)
	pDispatched.Start(ctx)

	m := metrics.New()

	products := &postgres.ProductRepo{DB: db}
	orders := &postgres.OrderRepo{DB: db}
	kits := &postgres.KitRepo{DB: db}
	purchases := &postgres.PurchaseOrderRepo{DB: db}

	cat := &catalog.Service{
		Products:    products,
		Kits:        kits,
		Producer:    pEntered,
		Metrics:     m,
		Log:         log.WithField("component", "catalog"),
		ServiceName: cfg.ServiceName,
	}
	ful := &fulfillment.Service{
		Orders:      orders,
		Products:    products,
		Resolver:    cat,
		Redis:       rdb,
		Producer:    &topicRouter{status: pStatus, dispatched: pDispatched},
		Metrics:     m,
		Log:         log.WithField("component", "fulfillment"),
		ServiceName: cfg.ServiceName,
	}
	pur := &purchasing.Service{
		Repo: purchases,
		Log:  log.WithField("component", "purchasing"),
	}
	lst := &listings.Store{
		Redis: rdb,
		Log:   log.WithField("component", "listings"),
	}

	router := httpx.NewRouter()
	(&httpx.ProductsHandler{Catalog: cat}).Register(router)
	(&httpx.KitsHandler{Catalog: cat}).Register(router)
	(&httpx.OrdersHandler{Fulfillment: ful, Redis: rdb}).Register(router)
	(&httpx.PurchasingHandler{Purchasing: pur}).Register(router)
	(&httpx.ListingsHandler{Store: lst}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// close inboxes first so the loops flush what is buffered, then stop
	pEntered.Close()
	pStatus.Close()
	pDispatched.Close()
	cancel()
	pEntered.WaitClosed()
	pStatus.WaitClosed()
	pDispatched.WaitClosed()
}
