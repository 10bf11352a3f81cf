package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"StockScan/internal/batch"
	"StockScan/internal/config"
	"StockScan/internal/fetcher"
	"StockScan/internal/recorder"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockScan starting...")

	daemon := flag.Bool("daemon", false, "keep running and execute on the daily cron schedule")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var f fetcher.Fetcher
	switch cfg.Data.Source {
	case "csv":
		f = fetcher.NewCSVFetcher(cfg.Data.CSVDir)
	case "mock":
		f = &fetcher.MockFetcher{}
	default:
		f = fetcher.NewYahooFetcher(cfg.Data.TickerSuffix, cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", f.Name())

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := batch.NewRunner(cfg, f, rec)

	if !*daemon {
		if err := runner.Run(ctx); err != nil {
			log.Fatalf("[FATAL] batch run: %v", err)
		}
		log.Println("[INFO] StockScan finished")
		return
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Schedule.DailyCron, func() {
		if err := runner.Run(ctx); err != nil {
			log.Printf("[ERROR] scheduled run: %v", err)
		}
	}); err != nil {
		log.Fatalf("[FATAL] register daily run: %v", err)
	}
	c.Start()
	defer c.Stop()

	log.Printf("[INFO] StockScan is running on schedule %q. Press Ctrl+C to stop.", cfg.Schedule.DailyCron)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] StockScan stopped")
}
