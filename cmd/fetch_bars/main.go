package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mitchellsummers5280-alt/spx-algo-app/config"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/adapters/logger"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/adapters/massive"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/utils"
)

func main() {
	days := flag.Int("days", 7, "How many days of 1-minute bars to fetch")
	out := flag.String("out", "", "Output CSV path (defaults to data/<ticker>_<range>.csv)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}

	feed, err := massive.New(massive.Config{
		APIKey:  cfg.MassiveAPIKey,
		BaseURL: cfg.MassiveBaseURL,
		Timeout: cfg.FeedTimeout,
		Logger:  appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Massive client")
		log.Fatalf("FATAL: Failed to initialize Massive client: %v", err)
	}

	ctx := context.Background()
	end := time.Now()
	start := end.AddDate(0, 0, -*days)

	ticker, err := feed.ResolveContract(ctx, cfg.ProductCode, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error resolving contract")
		log.Fatalf("Error resolving contract: %v", err)
	}

	fmt.Printf("Fetching 1m bars for %s from %s to %s...\n", ticker, start.Format(time.RFC3339), end.Format(time.RFC3339))
	bars, err := feed.Bars(ctx, ticker, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching bars")
		log.Fatalf("Error fetching bars: %v", err)
	}
	appLogger.Info(ctx, "Fetched bars", map[string]interface{}{"count": len(bars)})

	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("data/%s_1m_%s_to_%s.csv", ticker, start.Format("20060102"), end.Format("20060102"))
	}
	if err := utils.WriteBarsToCSV(bars, ticker, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
}
