package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"edinet_analyzer/pkg/core/analysis"
	"edinet_analyzer/pkg/core/valuation"
)

// AnalysisRepo stores computed corporate values and serves the series
// the valuation calculator consumes.
type AnalysisRepo struct{}

func NewAnalysisRepo() *AnalysisRepo {
	return &AnalysisRepo{}
}

// Schema assumption:
// CREATE TABLE analysis_results (
//   document_id     TEXT PRIMARY KEY REFERENCES documents (document_id),
//   edinet_code     TEXT NOT NULL,
//   period_end      DATE NOT NULL,
//   submit_date     DATE NOT NULL,
//   corporate_value NUMERIC NOT NULL
// );

// Save upserts one filing's computed value.
func (r *AnalysisRepo) Save(ctx context.Context, result analysis.Result) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	query := `
		INSERT INTO analysis_results (document_id, edinet_code, period_end, submit_date, corporate_value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id)
		DO UPDATE SET
			period_end = EXCLUDED.period_end,
			submit_date = EXCLUDED.submit_date,
			corporate_value = EXCLUDED.corporate_value;
	`
	_, err := pool.Exec(ctx, query,
		result.DocumentID, result.EdinetCode, result.PeriodEnd, result.SubmitDate, result.CorporateValue)
	if err != nil {
		return fmt.Errorf("failed to save analysis result for %s: %w", result.DocumentID, err)
	}
	return nil
}

// LoadSeries returns an entity's full (corporate value, stock price)
// series ordered by period end. Each value is paired with the last
// observed price at or before its submit date; periods with no price
// observation yet are skipped.
func (r *AnalysisRepo) LoadSeries(ctx context.Context, edinetCode, companyCode string) ([]valuation.ValuePoint, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := pool.Query(ctx, `
		SELECT a.period_end, a.corporate_value, p.price
		FROM analysis_results a
		JOIN LATERAL (
			SELECT price
			FROM stock_prices
			WHERE code = $2 AND target_date <= a.submit_date
			ORDER BY target_date DESC
			LIMIT 1
		) p ON TRUE
		WHERE a.edinet_code = $1
		ORDER BY a.period_end`,
		edinetCode, companyCode,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load series for %s: %w", edinetCode, err)
	}
	defer rows.Close()

	var series []valuation.ValuePoint
	for rows.Next() {
		var point valuation.ValuePoint
		var value, price decimal.Decimal
		if err := rows.Scan(&point.Date, &value, &price); err != nil {
			return nil, fmt.Errorf("failed to scan series row: %w", err)
		}
		point.CorporateValue = value
		point.StockPrice = price
		series = append(series, point)
	}
	return series, rows.Err()
}
