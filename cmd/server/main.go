package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/internal/gateway"
	"github.com/mamadbah2/stockroom/internal/inventory"
	"github.com/mamadbah2/stockroom/internal/metrics"
	"github.com/mamadbah2/stockroom/internal/repository/localstore"
	"github.com/mamadbah2/stockroom/internal/scheduler"
	"github.com/mamadbah2/stockroom/internal/server/handlers"
	"github.com/mamadbah2/stockroom/internal/server/router"
	commandsvc "github.com/mamadbah2/stockroom/internal/service/commands"
	"github.com/mamadbah2/stockroom/internal/service/notify"
	reportingsvc "github.com/mamadbah2/stockroom/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/stockroom/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/stockroom/pkg/clients/whatsapp"
	"github.com/mamadbah2/stockroom/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := localstore.Open(cfg.Local.DataDir)
	if err != nil {
		baseLogger.Fatal("failed to open local store", zap.String("dir", cfg.Local.DataDir), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close local store", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()

	gw, closeBackend, err := gateway.FromConfig(ctx, cfg, store, reg, baseLogger.Named("gateway"))
	if err != nil {
		baseLogger.Fatal("failed to init sync backend", zap.String("backend", cfg.Sync.Backend), zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeBackend(closeCtx); err != nil {
			baseLogger.Error("failed to close sync backend", zap.Error(err))
		}
	}()

	if status := gw.CheckConfiguration(ctx); !status.OK {
		baseLogger.Warn("sync backend not ready",
			zap.String("backend", status.Backend),
			zap.Strings("missing", status.Missing),
			zap.String("detail", status.Detail))
	}

	notifier := notify.FromConfig(cfg.WhatsApp, baseLogger.Named("notify"))
	inventorySvc := inventory.NewService(gw, store, notify.NewOrders(notifier), reg, baseLogger.Named("svc.inventory"))
	if err := inventorySvc.LoadCache(); err != nil {
		baseLogger.Warn("failed to restore local cache", zap.Error(err))
	}
	if err := inventorySvc.Refresh(ctx); err != nil {
		baseLogger.Warn("initial catalog refresh failed, serving cached catalog", zap.Error(err))
	}

	reportingSvc := reportingsvc.NewService(inventorySvc, store, baseLogger.Named("svc.reporting"))

	sched, err := scheduler.NewScheduler(*cfg, inventorySvc, reportingSvc, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	var webhookHandler *handlers.WebhookHandler
	if cfg.WhatsApp.CommandsEnabled() {
		commandDispatcher := commandsvc.NewService(inventorySvc, reportingSvc, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
	} else {
		baseLogger.Info("whatsapp commands disabled")
	}

	inventoryHandler := handlers.NewInventoryHandler(inventorySvc, baseLogger.Named("handlers.inventory"))
	engine := router.New(inventoryHandler, webhookHandler, reg.Handler(), baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("backend", cfg.Sync.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
