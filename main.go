package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"stock-report/config"
	"stock-report/scraper/page"
	"stock-report/services"
	"stock-report/storage"
	"stock-report/utils"
)

func main() {
	logger := utils.NewLogger().WithRun(uuid.NewString()[:8])
	cfg := config.Load()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	mode, err := storage.ParseCommitMode(cfg.CommitMode)
	if err != nil {
		return err
	}
	policy, err := services.ParseInvalidProductPolicy(cfg.InvalidProductPolicy)
	if err != nil {
		return err
	}

	logger.Info("=== Stock report starting ===")
	logger.Info("Config: store %s | commit per %s | invalid products: %s | data dir: %s",
		cfg.DBDriver, mode, cfg.InvalidProductPolicy, cfg.DataDir)

	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}

	store, err := openStore(ctx, cfg, mode, retry)
	if err != nil {
		return err
	}
	defer store.Close()

	loader := services.NewLoader(store, logger)
	if err := withFile(cfg.Path(config.RelationsFile), func(f io.Reader) error {
		_, err := loader.LoadRelations(ctx, f)
		return err
	}); err != nil {
		return err
	}
	if err := withFile(cfg.Path(config.LocationsFile), func(f io.Reader) error {
		_, err := loader.LoadLocations(ctx, f)
		return err
	}); err != nil {
		return err
	}

	extractor := services.NewStockExtractor(policy, logger)
	if cfg.StockSourceURL != "" {
		renderer := page.NewRenderer(cfg.ChromeBin, cfg.RenderTimeout(), retry, logger)
		doc, err := renderer.Render(ctx, cfg.StockSourceURL)
		if err != nil {
			return err
		}
		if _, err := extractor.Load(ctx, store, strings.NewReader(doc)); err != nil {
			return err
		}
	} else if err := withFile(cfg.Path(config.StockFile), func(f io.Reader) error {
		_, err := extractor.Load(ctx, store, f)
		return err
	}); err != nil {
		return err
	}

	reporter := services.NewReportService(logger)
	entries, err := reporter.Generate(ctx, store)
	if err != nil {
		return err
	}

	reportPath := cfg.Path(config.ReportFile)
	csvWriter, err := storage.NewCSVWriter(reportPath)
	if err != nil {
		return err
	}
	if err := reporter.Write(entries, csvWriter); err != nil {
		_ = csvWriter.Close()
		return err
	}
	if err := csvWriter.Close(); err != nil {
		return fmt.Errorf("report: close %s: %w", reportPath, err)
	}
	logger.Info("Report saved to %s", reportPath)

	reporter.Print(reporter.Summarize(entries))
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, mode storage.CommitMode, retry *utils.RetryConfig) (*storage.SQLStore, error) {
	if cfg.DBDriver == config.DriverPostgres {
		return storage.NewPostgresStore(ctx, cfg.DSN(), mode, retry)
	}
	return storage.NewSQLiteStore(ctx, cfg.SQLitePath, mode)
}

// withFile opens path for reading, hands it to fn and always closes it.
func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return fn(f)
}
