package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/config"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/consumer"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/database"
	httpapi "github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/http"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/logger"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/repository"
	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "pharmsmart")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	unitPrice, err := decimal.NewFromString(cfg.Pricing.UnitPrice)
	if err != nil {
		log.Fatal("Invalid SALE_UNIT_PRICE", zap.String("value", cfg.Pricing.UnitPrice), zap.Error(err))
	}

	pharmaciesRepo := repository.NewPharmaciesRepository(db, log)
	locationsRepo := repository.NewLocationsRepository(db, log)
	medicinesRepo := repository.NewMedicinesRepository(db, log)
	batchesRepo := repository.NewBatchesRepository(db, log)
	devicesRepo := repository.NewDevicesRepository(db, log)
	readingsRepo := repository.NewReadingsRepository(db, log)
	alertsRepo := repository.NewAlertsRepository(db, log)
	salesRepo := repository.NewSalesRepository(db, log)
	auditRepo := repository.NewAuditRepository(db, log)

	telemetrySvc := service.NewTelemetryService(devicesRepo, readingsRepo, batchesRepo, alertsRepo, auditRepo, db, log)
	alertSvc := service.NewAlertService(alertsRepo, auditRepo, db, log)
	salesSvc := service.NewSalesService(salesRepo, batchesRepo, auditRepo, service.PricingPolicy{UnitPrice: unitPrice}, db, log)
	inventorySvc := service.NewInventoryService(medicinesRepo, batchesRepo, locationsRepo, auditRepo, db, log)
	deviceSvc := service.NewDeviceService(devicesRepo, locationsRepo, log)
	pharmacySvc := service.NewPharmacyService(pharmaciesRepo, locationsRepo, log)
	auditSvc := service.NewAuditService(auditRepo, log)

	router := httpapi.NewRouter(log)
	router.RegisterIoTRoutes(
		httpapi.NewDeviceHandler(deviceSvc, log),
		httpapi.NewTelemetryHandler(telemetrySvc, log),
		httpapi.NewAlertHandler(alertSvc, log),
	)
	router.RegisterSalesRoutes(httpapi.NewSalesHandler(salesSvc, log))
	router.RegisterInventoryRoutes(httpapi.NewInventoryHandler(inventorySvc, log))
	router.RegisterAdminRoutes(
		httpapi.NewPharmacyHandler(pharmacySvc, log),
		httpapi.NewAuditHandler(auditSvc, log),
	)
	router.RegisterHealthRoutes()

	srv := service.NewServer(cfg, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient *redis.Client
	consumerErrCh := make(chan error, 1)
	if cfg.Telemetry.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		telemetryConsumer := consumer.NewTelemetryConsumer(redisClient, cfg, telemetrySvc, log)
		go func() {
			consumerErrCh <- telemetryConsumer.Start(ctx)
		}()
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-srvErrCh:
		log.Error("HTTP server failed", zap.Error(err))
	case err := <-consumerErrCh:
		log.Error("Telemetry consumer failed", zap.Error(err))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
