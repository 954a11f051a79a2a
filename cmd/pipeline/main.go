package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"edinet_analyzer/pkg/config"
	"edinet_analyzer/pkg/core/company"
	"edinet_analyzer/pkg/core/edinet"
	"edinet_analyzer/pkg/core/notify"
	"edinet_analyzer/pkg/core/pipeline"
	"edinet_analyzer/pkg/core/scrape"
	"edinet_analyzer/pkg/core/store"
	"edinet_analyzer/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	configPath := flag.String("config", "config/pipeline.yaml", "Path to the pipeline config file")
	dateStr := flag.String("date", "", "Submission date to process (YYYY-MM-DD, default: yesterday)")
	companiesCSV := flag.String("import-companies", "", "Import the EDINET code list CSV and exit")
	pricesCSV := flag.String("import-prices", "", "Import a stock price CSV (code,date,price) and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("[Pipeline] Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		fmt.Printf("[Pipeline] Logger error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := store.InitDB(ctx); err != nil {
		logger.Log.Fatalf("[Pipeline] Database init failed: %v", err)
	}
	defer store.Close()

	if *companiesCSV != "" {
		if err := importCompanies(ctx, *companiesCSV); err != nil {
			logger.Log.Fatalf("[Pipeline] Company import failed: %v", err)
		}
		return
	}
	if *pricesCSV != "" {
		if err := importPrices(ctx, *pricesCSV); err != nil {
			logger.Log.Fatalf("[Pipeline] Price import failed: %v", err)
		}
		return
	}

	date := time.Now().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	if *dateStr != "" {
		date, err = time.Parse("2006-01-02", *dateStr)
		if err != nil {
			logger.Log.Fatalf("[Pipeline] Invalid -date %q: %v", *dateStr, err)
		}
	}

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		logger.Log.Fatalf("[Pipeline] Setup failed: %v", err)
	}

	summary, err := orch.RunForDate(ctx, date)
	if err != nil {
		logger.Log.Fatalf("[Pipeline] Run failed for %s: %v", date.Format("2006-01-02"), err)
	}
	logger.Log.Infof("[Pipeline] Done: %d listed, %d target, %d scraped, %d analyzed",
		summary.CountAll, summary.CountTarget, summary.CountScraped, summary.CountAnalyzed)
}

func importCompanies(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	companies, err := company.ImportCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := store.NewCompanyRepo().UpsertAll(ctx, companies); err != nil {
		return err
	}
	logger.Log.Infof("[Pipeline] Imported %d companies from %s", len(companies), path)
	return nil
}

// importPrices loads observed market prices from a plain
// code,date,price CSV, one observation per row.
func importPrices(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	repo := store.NewStockRepo()
	reader := csv.NewReader(f)
	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if len(record) != 3 {
			return fmt.Errorf("%s: expected code,date,price rows, got %d columns", path, len(record))
		}
		targetDate, err := time.Parse("2006-01-02", record[1])
		if err != nil {
			return fmt.Errorf("%s: bad date %q: %w", path, record[1], err)
		}
		price, err := decimal.NewFromString(record[2])
		if err != nil {
			return fmt.Errorf("%s: bad price %q: %w", path, record[2], err)
		}
		if err := repo.InsertPrice(ctx, record[0], targetDate, price); err != nil {
			return err
		}
		count++
	}
	logger.Log.Infof("[Pipeline] Imported %d price observations from %s", count, path)
	return nil
}

func buildOrchestrator(cfg *config.Config) (*pipeline.Orchestrator, error) {
	if cfg.Edinet.APIKey == "" {
		return nil, fmt.Errorf("EDINET_API_KEY is not set")
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.SlackWebhookURL != "" {
		hook, err := notify.NewSlackWebhook(cfg.Notify.SlackWebhookURL)
		if err != nil {
			return nil, err
		}
		notifier = hook
	}

	fetcher := edinet.NewFetcher(edinet.NewClient(cfg.Edinet.BaseURL, cfg.Edinet.APIKey))

	orch := pipeline.NewOrchestrator(
		fetcher,
		store.NewCompanyRepo(),
		store.NewDocumentRepo(),
		store.NewStatementRepo(),
		store.NewAnalysisRepo(),
		store.NewStockRepo(),
		notifier,
	)
	orch.SetTargetRule(cfg.TargetRule())
	orch.SetWorkers(cfg.Pipeline.Workers)

	tableCfg, err := cfg.TableConfig()
	if err != nil {
		return nil, err
	}
	orch.SetExtractor(scrape.NewExtractor(tableCfg))
	return orch, nil
}
