package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samijaber1/alcometer/internal/api"
	"github.com/samijaber1/alcometer/internal/config"
	"github.com/samijaber1/alcometer/internal/level"
	"github.com/samijaber1/alcometer/internal/logger"
	"github.com/samijaber1/alcometer/internal/metrics"
	"github.com/samijaber1/alcometer/internal/recorder"
	"github.com/samijaber1/alcometer/internal/storage"
	"github.com/samijaber1/alcometer/internal/storage/memory"
	"github.com/samijaber1/alcometer/internal/storage/sqlite"
)

// memoryHistoryCapacity bounds the in-memory history when no database is configured
const memoryHistoryCapacity = 10000

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting alcometer server",
		"port", cfg.Port,
		"database", cfg.DatabasePath,
		"limit", cfg.Thresholds.Limit,
		"severe", cfg.Thresholds.Severe,
	)

	metrics.Register()

	engine, err := level.NewEngine(cfg.Thresholds)
	if err != nil {
		log.Fatal("failed to create classification engine", "error", err)
	}

	var history storage.HistoryStorage
	if cfg.DatabasePath != "" {
		store, err := sqlite.NewStore(cfg.DatabasePath)
		if err != nil {
			log.Fatal("failed to open history database", "path", cfg.DatabasePath, "error", err)
		}
		history = store
		log.Info("using sqlite history", "path", cfg.DatabasePath)
	} else {
		history = memory.NewStore(memoryHistoryCapacity)
		log.Info("using in-memory history", "capacity", memoryHistoryCapacity)
	}
	defer history.Close()

	rec := recorder.NewRecorder(history, log.With("component", "recorder"), cfg.HistoryQueue, cfg.HistoryWorkers)
	if err := rec.Start(); err != nil {
		log.Fatal("failed to start history recorder", "error", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	apiServer := api.NewServer(api.Options{
		Engine:           engine,
		History:          history,
		Recorder:         rec,
		Logger:           log.With("component", "api"),
		BatchMaxItems:    cfg.BatchMaxItems,
		BatchConcurrency: cfg.BatchConcurrency,
	}, addr)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- apiServer.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		rec.Stop()
		log.Fatal("server error", "error", err)

	case sig := <-shutdown:
		log.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
		defer cancel()

		log.Info("shutting down server")
		if err := apiServer.Shutdown(ctx); err != nil {
			log.Error("error shutting down server", "error", err)
		}

		log.Info("draining history recorder")
		rec.Stop()

		log.Info("shutdown complete")
	}
}

// parseFlags loads the config file and env file, then applies the flags that
// were set explicitly on the command line.
func parseFlags() (config.Config, error) {
	var configPath, envFile string
	flags := config.DefaultConfig()

	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&envFile, "env", ".env", "Path to .env file (ignored if missing)")
	flag.IntVar(&flags.Port, "port", flags.Port, "HTTP server port")
	flag.StringVar(&flags.Host, "host", flags.Host, "HTTP server host")
	flag.StringVar(&flags.DatabasePath, "db", flags.DatabasePath, "SQLite history database path (empty keeps history in memory)")
	flag.IntVar(&flags.HistoryQueue, "history-queue", flags.HistoryQueue, "History write queue size")
	flag.IntVar(&flags.HistoryWorkers, "history-workers", flags.HistoryWorkers, "History writer goroutines")
	flag.IntVar(&flags.BatchMaxItems, "batch-max-items", flags.BatchMaxItems, "Maximum items per batch request")
	flag.IntVar(&flags.BatchConcurrency, "batch-concurrency", flags.BatchConcurrency, "Concurrent estimations per batch request")
	flag.Float64Var(&flags.Thresholds.Limit, "limit", flags.Thresholds.Limit, "BAC at which the OVER_LIMIT level starts")
	flag.Float64Var(&flags.Thresholds.Severe, "severe", flags.Thresholds.Severe, "BAC at which the SEVERE level starts")
	flag.StringVar(&flags.LogMode, "log-mode", flags.LogMode, "Log mode (development|production)")
	flag.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level")
	flag.DurationVar(&flags.GracefulShutdownTimeout, "shutdown-timeout", flags.GracefulShutdownTimeout, "Graceful shutdown timeout")

	flag.Parse()

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return cfg, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = flags.Port
		case "host":
			cfg.Host = flags.Host
		case "db":
			cfg.DatabasePath = flags.DatabasePath
		case "history-queue":
			cfg.HistoryQueue = flags.HistoryQueue
		case "history-workers":
			cfg.HistoryWorkers = flags.HistoryWorkers
		case "batch-max-items":
			cfg.BatchMaxItems = flags.BatchMaxItems
		case "batch-concurrency":
			cfg.BatchConcurrency = flags.BatchConcurrency
		case "limit":
			cfg.Thresholds.Limit = flags.Thresholds.Limit
		case "severe":
			cfg.Thresholds.Severe = flags.Thresholds.Severe
		case "log-mode":
			cfg.LogMode = flags.LogMode
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "shutdown-timeout":
			cfg.GracefulShutdownTimeout = flags.GracefulShutdownTimeout
		}
	})

	return cfg, nil
}
