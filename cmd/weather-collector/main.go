package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aherelle/afriweather/internal/collector"
	"github.com/aherelle/afriweather/internal/config"
	"github.com/aherelle/afriweather/internal/logger"
	"github.com/aherelle/afriweather/internal/openweather"
	"github.com/aherelle/afriweather/internal/sampler"
	"github.com/aherelle/afriweather/internal/scheduler"
	"github.com/aherelle/afriweather/internal/store"
)

func main() {
	once := flag.Bool("once", false, "run a single collection pass and exit (for external schedulers)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Configuration errors, including a missing API key, are fatal
	// before any network call happens.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		log.Fatalf("refusing to start: %v", err)
	}

	appLog := logger.New(cfg.LogLevel)

	// Shared HTTP client with an explicit timeout for all upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := openweather.NewClient(httpClient, cfg.OpenWeatherAPIKey)
	smp := sampler.New(client, cfg.SampleAttempts, cfg.SamplePause,
		logger.WithComponent(appLog, "sampler"))
	csvStore := store.NewCSVStore(cfg.DataFile)

	coll := collector.New(client, smp, csvStore, cfg.Locations, cfg.CityPause,
		logger.WithComponent(appLog, "collector"))

	if *once {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		count, err := coll.RunOnce(ctx, time.Now().UTC())
		if err != nil {
			appLog.Fatalf("collection run failed: %v", err)
		}
		appLog.WithField("rows", count).Info("collection finished")
		return
	}

	sched := scheduler.New(coll, cfg.FetchInterval,
		logger.WithComponent(appLog, "scheduler"))
	if err := sched.Start(); err != nil {
		appLog.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	appLog.WithField("interval", cfg.FetchInterval.String()).
		Info("collector daemon started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	appLog.Info("shutting down")
}
