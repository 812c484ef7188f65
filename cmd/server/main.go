package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-table-booking/internal/booking"
	"github.com/iliyamo/restaurant-table-booking/internal/config"
	"github.com/iliyamo/restaurant-table-booking/internal/database"
	"github.com/iliyamo/restaurant-table-booking/internal/handler"
	"github.com/iliyamo/restaurant-table-booking/internal/logger"
	"github.com/iliyamo/restaurant-table-booking/internal/middleware"
	"github.com/iliyamo/restaurant-table-booking/internal/queue"
	"github.com/iliyamo/restaurant-table-booking/internal/repository"
	"github.com/iliyamo/restaurant-table-booking/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal("load config", "error", err)
	}
	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "table-booking",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", "error", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migrate database", "error", err)
	}

	// Redis is optional for the cache and rate limiter and required for the
	// redis slot lock. Keep the interface nil when there is no client.
	var rdb redis.UniversalClient
	if client, err := config.NewRedisClient(ctx); err != nil {
		if cfg.SlotLock == config.SlotLockRedis {
			log.Fatal("redis required by BOOKING_SLOT_LOCK=redis", "error", err)
		}
		log.Warn("redis unavailable; cache and rate limit disabled", "error", err)
	} else {
		rdb = client
		defer client.Close()
	}

	opts := booking.Options{
		Logger:    log,
		TxTimeout: cfg.TxTimeout,
		Location:  cfg.Location,
	}
	switch cfg.SlotLock {
	case config.SlotLockLocal:
		opts.Locker = booking.NewLocalLocker()
	case config.SlotLockRedis:
		opts.Locker = booking.NewRedisLocker(rdb, "", cfg.SlotLockTTL, log)
	}
	if cfg.EventsEnabled {
		opts.Publisher = queue.NewPublisher(cfg.RabbitURL, log)
	}
	if cfg.ConsumerEnabled {
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.BookingLogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking log consumer stopped", "error", err)
			}
		}()
	}
	svc := booking.NewService(repository.NewLedger(db), opts)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID())
	e.Use(middleware.AccessLog(log))
	e.Use(echomw.Recover())

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	bookings := handler.NewBookingHandler(svc, log)
	router.RegisterRoutes(e, db)
	router.RegisterPublic(e, handler.NewPublicHandler(svc, log), limit, cache)
	router.RegisterCustomer(e, bookings, handler.NewProfileHandler(repository.NewUserRepo(db), log), cfg.JWTSecret, limit)
	router.RegisterOwner(e, bookings, cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "slot_lock", cfg.SlotLock)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	if err := svc.Close(shutdownCtx); err != nil {
		log.Warn("booking events not flushed", "error", err)
	}
}
