package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"edinet_analyzer/pkg/config"
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

	configPath := "config/pipeline.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("[Scheduler] Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		fmt.Printf("[Scheduler] Logger error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := store.InitDB(ctx); err != nil {
		logger.Log.Fatalf("[Scheduler] Database init failed: %v", err)
	}
	defer store.Close()

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		logger.Log.Fatalf("[Scheduler] Setup failed: %v", err)
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.Pipeline.CronSpec, func() {
		// Process the previous day once its filings have settled.
		date := time.Now().AddDate(0, 0, -1).Truncate(24 * time.Hour)
		logger.Log.Infof("[Scheduler] Starting run for %s", date.Format("2006-01-02"))
		summary, err := orch.RunForDate(ctx, date)
		if err != nil {
			logger.Log.Errorf("[Scheduler] Run failed for %s: %v", date.Format("2006-01-02"), err)
			return
		}
		logger.Log.Infof("[Scheduler] Done: %d listed, %d target, %d scraped, %d analyzed",
			summary.CountAll, summary.CountTarget, summary.CountScraped, summary.CountAnalyzed)
	})
	if err != nil {
		logger.Log.Fatalf("[Scheduler] Invalid cron spec %q: %v", cfg.Pipeline.CronSpec, err)
	}

	c.Start()
	logger.Log.Infof("[Scheduler] Running on schedule %q", cfg.Pipeline.CronSpec)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Log.Info("[Scheduler] Shutting down")
	<-c.Stop().Done()
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
