// Package pipeline wires listing, target selection, extraction,
// analysis and valuation into the per-date run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"edinet_analyzer/pkg/core/analysis"
	"edinet_analyzer/pkg/core/company"
	"edinet_analyzer/pkg/core/edinet"
	"edinet_analyzer/pkg/core/notify"
	"edinet_analyzer/pkg/core/scrape"
	"edinet_analyzer/pkg/core/tracker"
	"edinet_analyzer/pkg/core/valuation"
	"edinet_analyzer/pkg/logger"
)

// DocumentFetcher supplies the filing list for a date and parsed
// filing documents. Implementations may fetch live from EDINET or from
// a local cache of downloaded packages.
type DocumentFetcher interface {
	List(ctx context.Context, date time.Time) ([]edinet.Filing, error)
	Fetch(ctx context.Context, documentID string) (*goquery.Document, error)
}

// CompanyStore resolves filers against the entity master.
type CompanyStore interface {
	FindByEdinetCode(ctx context.Context, edinetCode string) (*company.Company, error)
}

// DocumentStore persists filings and their processing states.
type DocumentStore interface {
	InsertListed(ctx context.Context, filings []edinet.Filing) error
	UpdateState(ctx context.Context, documentID string, to tracker.ProcessingState) error
	StatusesBySubmitDate(ctx context.Context, submitDate time.Time) ([]tracker.FilingStatus, error)
}

// StatementStore persists extracted line items.
type StatementStore interface {
	ReplaceItems(ctx context.Context, documentID string, items []scrape.LineItem) error
}

// AnalysisStore persists computed values and serves valuation series.
type AnalysisStore interface {
	Save(ctx context.Context, result analysis.Result) error
	LoadSeries(ctx context.Context, edinetCode, companyCode string) ([]valuation.ValuePoint, error)
}

// ForecastStore serves the externally sourced forecast figure.
type ForecastStore interface {
	LatestForecast(ctx context.Context, code string) (*decimal.Decimal, error)
}

// Orchestrator manages the end-to-end flow for one submission date:
// list -> select targets -> scrape workers -> analyze -> valuation.
type Orchestrator struct {
	fetcher    DocumentFetcher
	companies  CompanyStore
	documents  DocumentStore
	statements StatementStore
	analyses   AnalysisStore
	forecasts  ForecastStore
	notifier   notify.Notifier

	extractor *scrape.Extractor
	rule      company.TargetRule
	workers   int
}

// NewOrchestrator creates an orchestrator with default extraction
// configuration and target rule.
func NewOrchestrator(
	fetcher DocumentFetcher,
	companies CompanyStore,
	documents DocumentStore,
	statements StatementStore,
	analyses AnalysisStore,
	forecasts ForecastStore,
	notifier notify.Notifier,
) *Orchestrator {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Orchestrator{
		fetcher:    fetcher,
		companies:  companies,
		documents:  documents,
		statements: statements,
		analyses:   analyses,
		forecasts:  forecasts,
		notifier:   notifier,
		extractor:  scrape.NewExtractor(nil),
		rule:       company.DefaultTargetRule(),
		workers:    4,
	}
}

// SetExtractor injects a custom table configuration.
func (o *Orchestrator) SetExtractor(e *scrape.Extractor) {
	o.extractor = e
}

// SetTargetRule overrides the target selection rule.
func (o *Orchestrator) SetTargetRule(rule company.TargetRule) {
	o.rule = rule
}

// SetWorkers bounds scrape concurrency.
func (o *Orchestrator) SetWorkers(n int) {
	if n > 0 {
		o.workers = n
	}
}

// scrapeOutcome carries one filing's extraction through to analysis.
type scrapeOutcome struct {
	filing  edinet.Filing
	company *company.Company
	items   []scrape.LineItem
	shares  decimal.Decimal
	period  *scrape.ReportingPeriod
}

// RunForDate executes the full pipeline for one submission date. A
// single filing's failure never aborts the run; it surfaces in the
// returned summary instead.
func (o *Orchestrator) RunForDate(ctx context.Context, date time.Time) (tracker.DateSummary, error) {
	runID := uuid.New().String()[:8]
	start := time.Now()
	logger.Log.Infof("[Pipeline %s] starting run for %s", runID, date.Format("2006-01-02"))

	// 1. List and persist filings.
	filings, err := o.fetcher.List(ctx, date)
	if err != nil {
		return tracker.DateSummary{}, fmt.Errorf("listing filings: %w", err)
	}
	if err := o.documents.InsertListed(ctx, filings); err != nil {
		return tracker.DateSummary{}, fmt.Errorf("persisting filings: %w", err)
	}

	// 2. Target selection by business rule.
	targets := o.selectTargets(ctx, runID, filings)

	// 3. Parallel extraction. Filings are independent, so workers
	// share nothing but the job channel.
	outcomes := o.scrapeAll(ctx, runID, targets)

	// 4. Analysis of successfully scraped filings.
	analyzed := o.analyzeAll(ctx, runID, outcomes)

	// 5. Valuation views for every entity analyzed in this run.
	o.valuateAll(ctx, runID, analyzed)

	// 6. Read-side aggregation and notification.
	statuses, err := o.documents.StatusesBySubmitDate(ctx, date)
	if err != nil {
		return tracker.DateSummary{}, fmt.Errorf("aggregating statuses: %w", err)
	}
	summary := tracker.Aggregate(date, statuses)

	message := formatSummary(summary)
	if err := o.notifier.Send(ctx, message); err != nil {
		logger.Log.Warnf("[Pipeline %s] notification failed: %v", runID, err)
	}

	logger.Log.Infof("[Pipeline %s] completed in %v: %s", runID, time.Since(start), message)
	return summary, nil
}

// selectTargets applies the business rule to every listed filing and
// returns the ones to scrape, paired with their company.
func (o *Orchestrator) selectTargets(ctx context.Context, runID string, filings []edinet.Filing) []scrapeOutcome {
	var targets []scrapeOutcome
	for _, filing := range filings {
		c, err := o.companies.FindByEdinetCode(ctx, filing.EdinetCode)
		if err != nil {
			logger.Log.Warnf("[Pipeline %s] company lookup failed for %s: %v", runID, filing.DocumentID, err)
			continue
		}

		if !o.rule.IsTarget(filing, c) {
			o.markState(ctx, runID, filing.DocumentID, tracker.StateNotTarget)
			continue
		}
		o.markState(ctx, runID, filing.DocumentID, tracker.StateTarget)
		targets = append(targets, scrapeOutcome{filing: filing, company: c})
	}
	logger.Log.Infof("[Pipeline %s] selected %d of %d filings", runID, len(targets), len(filings))
	return targets
}

// scrapeAll runs extraction across worker goroutines and returns the
// successful outcomes.
func (o *Orchestrator) scrapeAll(ctx context.Context, runID string, targets []scrapeOutcome) []scrapeOutcome {
	jobs := make(chan scrapeOutcome)
	results := make(chan scrapeOutcome, len(targets))

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if outcome, ok := o.scrapeOne(ctx, runID, job); ok {
					results <- outcome
				}
			}
		}()
	}

	for _, t := range targets {
		jobs <- t
	}
	close(jobs)
	wg.Wait()
	close(results)

	outcomes := make([]scrapeOutcome, 0, len(targets))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// scrapeOne extracts a single filing. Every failure path marks the
// filing retryable and keeps the run going.
func (o *Orchestrator) scrapeOne(ctx context.Context, runID string, job scrapeOutcome) (scrapeOutcome, bool) {
	docID := job.filing.DocumentID

	doc, err := o.fetcher.Fetch(ctx, docID)
	if err != nil {
		logger.Log.Warnf("[Pipeline %s] fetch failed for %s: %v", runID, docID, err)
		o.markState(ctx, runID, docID, tracker.StateScrapeFailed)
		return job, false
	}

	items, err := o.extractor.ExtractFiling(doc, job.filing.Description)
	if err != nil {
		logger.Log.Warnf("[Pipeline %s] extraction failed for %s: %v", runID, docID, err)
		o.markState(ctx, runID, docID, tracker.StateScrapeFailed)
		return job, false
	}

	shares, err := scrape.ScrapeShares(doc)
	if err != nil {
		logger.Log.Warnf("[Pipeline %s] share count missing for %s: %v", runID, docID, err)
		o.markState(ctx, runID, docID, tracker.StateScrapeFailed)
		return job, false
	}

	if err := o.statements.ReplaceItems(ctx, docID, items); err != nil {
		logger.Log.Errorf("[Pipeline %s] persisting items failed for %s: %v", runID, docID, err)
		o.markState(ctx, runID, docID, tracker.StateScrapeFailed)
		return job, false
	}

	o.markState(ctx, runID, docID, tracker.StateScraped)

	job.items = items
	job.shares = shares
	for _, item := range items {
		if item.Period != nil {
			job.period = item.Period
			break
		}
	}
	return job, true
}

// analyzeAll computes corporate values for scraped filings. A filing
// without a usable period or required subjects stays Scraped.
func (o *Orchestrator) analyzeAll(ctx context.Context, runID string, outcomes []scrapeOutcome) []scrapeOutcome {
	var analyzed []scrapeOutcome
	for _, outcome := range outcomes {
		docID := outcome.filing.DocumentID

		if outcome.period == nil {
			logger.Log.Warnf("[Pipeline %s] no reporting period for %s, skipping analysis", runID, docID)
			continue
		}

		value, err := analysis.CorporateValue(outcome.items, outcome.shares)
		if err != nil {
			if errors.Is(err, analysis.ErrSubjectNotFound) {
				logger.Log.Warnf("[Pipeline %s] analysis skipped for %s: %v", runID, docID, err)
				continue
			}
			logger.Log.Errorf("[Pipeline %s] analysis failed for %s: %v", runID, docID, err)
			continue
		}

		result := analysis.Result{
			DocumentID:     docID,
			EdinetCode:     outcome.filing.EdinetCode,
			PeriodEnd:      outcome.period.To,
			SubmitDate:     outcome.filing.SubmitDate,
			CorporateValue: value,
		}
		if err := o.analyses.Save(ctx, result); err != nil {
			logger.Log.Errorf("[Pipeline %s] saving analysis failed for %s: %v", runID, docID, err)
			continue
		}

		o.markState(ctx, runID, docID, tracker.StateAnalyzed)
		analyzed = append(analyzed, outcome)
	}
	return analyzed
}

// valuateAll recomputes the valuation view for each entity touched in
// this run. The calculator is pure, so recomputation is always safe.
func (o *Orchestrator) valuateAll(ctx context.Context, runID string, analyzed []scrapeOutcome) {
	seen := make(map[string]bool)
	for _, outcome := range analyzed {
		if outcome.company == nil || seen[outcome.company.EdinetCode] {
			continue
		}
		seen[outcome.company.EdinetCode] = true

		series, err := o.analyses.LoadSeries(ctx, outcome.company.EdinetCode, outcome.company.Code)
		if err != nil {
			logger.Log.Warnf("[Pipeline %s] series load failed for %s: %v", runID, outcome.company.Code, err)
			continue
		}
		forecast, err := o.forecasts.LatestForecast(ctx, outcome.company.Code)
		if err != nil {
			logger.Log.Debugf("[Pipeline %s] forecast load failed for %s: %v", runID, outcome.company.Code, err)
			forecast = nil
		}

		summary := valuation.Calculate(series, forecast)
		if !summary.Available {
			logger.Log.Infof("[Pipeline %s] %s: no series yet", runID, outcome.company.Code)
			continue
		}
		if summary.HasDiscountRate {
			logger.Log.Infof("[Pipeline %s] %s: value=%s mean=%s discount=%s rate=%s",
				runID, outcome.company.Code,
				summary.LatestValue.StringFixed(2), summary.MeanValue.StringFixed(2),
				summary.DiscountValue.StringFixed(2), summary.DiscountRate.StringFixed(4))
		} else {
			logger.Log.Infof("[Pipeline %s] %s: value=%s mean=%s (discount rate unavailable)",
				runID, outcome.company.Code,
				summary.LatestValue.StringFixed(2), summary.MeanValue.StringFixed(2))
		}
	}
}

// markState advances a filing's state. Invalid transitions are logged
// and swallowed: a re-run over already processed filings must not turn
// into a failure.
func (o *Orchestrator) markState(ctx context.Context, runID string, documentID string, to tracker.ProcessingState) {
	if err := o.documents.UpdateState(ctx, documentID, to); err != nil {
		logger.Log.Debugf("[Pipeline %s] state update %s -> %s skipped: %v", runID, documentID, to, err)
	}
}

func formatSummary(s tracker.DateSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d filings, %d targets, %d scraped, %d analyzed",
		s.SubmitDate.Format("2006-01-02"), s.CountAll, s.CountTarget, s.CountScraped, s.CountAnalyzed)
	if s.CountScrapeFailed > 0 {
		fmt.Fprintf(&b, ", %d failed (first: %s)", s.CountScrapeFailed, s.FirstScrapeFailed)
	}
	if s.AllDone() {
		b.WriteString(", all done")
	}
	return b.String()
}
