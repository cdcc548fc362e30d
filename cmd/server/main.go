// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpapi "visuplant/internal/http"
	inventorycache "visuplant/internal/inventory/cache"
	inventoryhandler "visuplant/internal/inventory/handler"
	inventorymetrics "visuplant/internal/inventory/metrics"
	inventoryservice "visuplant/internal/inventory/service"
	inventorystore "visuplant/internal/inventory/store"
	"visuplant/internal/notify"
	"visuplant/internal/platform/config"
	"visuplant/internal/platform/httpserver"
	"visuplant/internal/platform/kafka"
	"visuplant/internal/platform/logger"
	"visuplant/internal/platform/migrate"
	"visuplant/internal/platform/postgres"
	"visuplant/internal/platform/redis"
	waitlisthandler "visuplant/internal/waitlist/handler"
	waitlistmetrics "visuplant/internal/waitlist/metrics"
	waitlistservice "visuplant/internal/waitlist/service"
	waitliststore "visuplant/internal/waitlist/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrate.Up(db, cfg.MigrationsDir); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	if cfg.SeedInventory {
		if err := inventorystore.SeedDefaultBoard(ctx, db); err != nil {
			log.Error("failed to seed inventory", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	producer, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		log.Error("failed to connect to kafka", "error", err)
		os.Exit(1)
	}

	var publisher notify.Publisher = notify.NewMemoryPublisher()
	if producer != nil {
		defer producer.Close()
		publisher = notify.NewKafkaPublisher(producer)
		log.Info("unit events publishing to kafka", "topic", cfg.Kafka.Topic)
	} else {
		log.Info("kafka not configured, unit events stay in memory")
	}
	broadcaster := notify.NewBroadcaster(publisher, log)

	invOpts := []inventoryservice.Option{
		inventoryservice.WithLogger(log),
		inventoryservice.WithMetrics(inventorymetrics.New()),
	}
	if redisClient != nil {
		invOpts = append(invOpts, inventoryservice.WithBoardCache(
			inventorycache.NewBoard(redisClient, cfg.BoardCacheTTL, log)))
	}
	inventorySvc := inventoryservice.New(inventorystore.NewPostgres(db), invOpts...)
	waitlistSvc := waitlistservice.New(waitliststore.NewPostgres(db),
		waitlistservice.WithLogger(log),
		waitlistservice.WithMetrics(waitlistmetrics.New()),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Inventory:  inventoryhandler.New(inventorySvc, broadcaster, log),
		Waitlist:   waitlisthandler.New(waitlistSvc, log),
		DB:         db,
		AdminToken: cfg.AdminToken,
		Logger:     log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting visuplant", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := broadcaster.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("visuplant stopped")
}
