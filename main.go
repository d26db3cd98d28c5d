package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/franchise-menu-sync/config"
	"github.com/yeremiapane/franchise-menu-sync/database"
	"github.com/yeremiapane/franchise-menu-sync/events"
	"github.com/yeremiapane/franchise-menu-sync/router"
	"github.com/yeremiapane/franchise-menu-sync/services"
	"github.com/yeremiapane/franchise-menu-sync/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)

	// Set gin mode
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, locker, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Event bus: local hub syncs automatic branches inline, redis moves it to the subscriber
	var (
		publisher  events.Publisher
		subscriber interface{ Subscribe(events.Handler) }
	)
	switch {
	case cfg.EventBus == "redis" && rdb != nil:
		bus := events.NewRedisBus(rdb, cfg.EventChannel)
		if err := bus.Start(ctx); err != nil {
			utils.ErrorLogger.Fatalf("Failed to start event bus: %v", err)
		}
		defer bus.Stop()
		publisher, subscriber = bus, bus
	default:
		if cfg.EventBus == "redis" {
			utils.ErrorLogger.Println("EVENT_BUS=redis needs REDIS_ADDRESS; falling back to the local bus")
		}
		hub := events.NewHub()
		publisher, subscriber = hub, hub
	}

	aggregator := services.NewDiffAggregator(db)
	applier := services.NewSyncApplier(db, aggregator).WithLockTimeout(cfg.LockTimeout)
	ledger := services.NewVersionLedger(db, publisher).WithLockTimeout(cfg.LockTimeout)
	if locker != nil {
		ledger.WithLocker(services.NewRedisAppendLocker(locker, cfg.LockTimeout))
	}
	services.NewAutoSyncTrigger(db, applier).Subscribe(subscriber)

	if cfg.SweepInterval > 0 {
		sweeper := services.NewPendingSweeper(db, applier)
		sweeper.Interval = cfg.SweepInterval
		sweeper.Start()
		defer sweeper.Stop()
	}

	r := router.SetupRouter(db, cfg, router.Services{
		MasterMenus: services.NewMasterMenuService(db),
		Ledger:      ledger,
		Branches:    services.NewBranchSyncService(db, aggregator),
		Applier:     applier,
		Overrides:   services.NewOverrideStore(db),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Server shutdown error: %v", err)
	}
}
