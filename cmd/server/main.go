package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/silofeed/internal/config"
	"github.com/mamadbah2/silofeed/internal/domain/models"
	"github.com/mamadbah2/silofeed/internal/forecast"
	"github.com/mamadbah2/silofeed/internal/ingest"
	"github.com/mamadbah2/silofeed/internal/repository/excel"
	"github.com/mamadbah2/silofeed/internal/repository/mongodb"
	"github.com/mamadbah2/silofeed/internal/repository/sheets"
	"github.com/mamadbah2/silofeed/internal/scheduler"
	"github.com/mamadbah2/silofeed/internal/server/handlers"
	"github.com/mamadbah2/silofeed/internal/server/router"
	forecastingsvc "github.com/mamadbah2/silofeed/internal/service/forecasting"
	reportingsvc "github.com/mamadbah2/silofeed/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/silofeed/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/silofeed/pkg/clients/whatsapp"
	"github.com/mamadbah2/silofeed/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aliases, err := ingest.LoadColumnAliases(cfg.Forecast.ColumnAliasesFile)
	if err != nil {
		baseLogger.Fatal("failed to load column aliases", zap.Error(err))
	}
	sensorOpts := ingest.SensorOptions{Aliases: aliases, Location: cfg.Forecast.Location()}

	var tables forecastingsvc.TableSource
	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewTableRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		tables = mongoRepo
	} else {
		tables = excel.NewTableRepository(cfg.Forecast.TablesDir, aliases, baseLogger.Named("repo.excel"))
	}

	var sensors forecastingsvc.SensorSource
	switch {
	case cfg.Sensors.CSVPath != "":
		sensors = ingest.NewCSVFileSource(cfg.Sensors.CSVPath, sensorOpts)
	case cfg.Sensors.SheetRange != "":
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sensors = sheets.NewSensorSource(sheetsRepo, cfg.Sensors.SheetRange, sensorOpts)
	}

	engine := forecast.NewEngine(forecast.Options{DeliveryThresholdKg: cfg.Forecast.DeliveryThresholdKg}, baseLogger.Named("forecast"))
	forecastingSvc := forecastingsvc.NewService(engine, tables, sensors, baseLogger.Named("svc.forecasting"))

	var notifier handlers.Notifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		notifier = whatsappsvc.NewReportNotifier(whatsClient, cfg.WhatsApp.ReportRecipient, baseLogger.Named("svc.whatsapp"))
		baseLogger.Info("whatsapp notifications enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, report notifications disabled")
	}

	forecastHandler := handlers.NewForecastHandler(forecastingSvc, notifier, sensorOpts, cfg.Forecast.DeliveryThresholdKg, baseLogger.Named("handlers.forecast"))
	httpEngine := router.New(forecastHandler, baseLogger.Named("router"))

	if cfg.Reporting.Enabled() {
		housing, err := ingest.ParseHousingDate(cfg.Reporting.HousingDate)
		if err != nil {
			baseLogger.Fatal("invalid REPORT_HOUSING_DATE", zap.Error(err))
		}
		template := models.NewForecastRun(0, housing, cfg.Reporting.Line, cfg.Reporting.BirdCount)
		template.DilutionStartAge = cfg.Reporting.DilutionStartAge
		template.InitialLeftoverKg = cfg.Reporting.LeftoverKg

		reportingSvc := reportingsvc.NewService(forecastingSvc, notifier, template, cfg.Forecast.DeliveryThresholdKg, baseLogger.Named("svc.reporting"))
		sched := scheduler.NewScheduler(cfg.Reporting.CronSchedule, cfg.Forecast.Location(), reportingSvc, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpEngine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
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
