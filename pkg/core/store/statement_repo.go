package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"edinet_analyzer/pkg/core/scrape"
)

// StatementRepo stores extracted statement line items. Items are owned
// by their filing: re-scraping a filing replaces its rows wholesale.
type StatementRepo struct{}

func NewStatementRepo() *StatementRepo {
	return &StatementRepo{}
}

// Schema assumption:
// CREATE TABLE statement_items (
//   id            BIGSERIAL PRIMARY KEY,
//   document_id   TEXT NOT NULL REFERENCES documents (document_id) ON DELETE CASCADE,
//   row_order     INT NOT NULL,
//   kind          TEXT NOT NULL,
//   subject       TEXT,
//   prior_value   NUMERIC,
//   current_value NUMERIC,
//   term          TEXT,
//   period_start  DATE,
//   period_end    DATE,
//   quarter       TEXT NOT NULL
// );

// ReplaceItems swaps a filing's line items inside one transaction.
func (r *StatementRepo) ReplaceItems(ctx context.Context, documentID string, items []scrape.LineItem) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM statement_items WHERE document_id = $1`, documentID,
	); err != nil {
		return fmt.Errorf("failed to clear items of %s: %w", documentID, err)
	}

	query := `
		INSERT INTO statement_items
			(document_id, row_order, kind, subject, prior_value, current_value, term, period_start, period_end, quarter)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for i, item := range items {
		var term, periodStart, periodEnd interface{}
		if item.Period != nil {
			term = item.Period.Term
			periodStart = item.Period.From
			periodEnd = item.Period.To
		}
		if _, err := tx.Exec(ctx, query,
			documentID, i, item.Kind.String(), item.Subject,
			item.Prior, item.Current,
			term, periodStart, periodEnd, item.Quarter.String(),
		); err != nil {
			return fmt.Errorf("failed to insert item %d of %s: %w", i, documentID, err)
		}
	}

	return tx.Commit(ctx)
}

// ItemsByDocument loads a filing's line items in row order.
func (r *StatementRepo) ItemsByDocument(ctx context.Context, documentID string) ([]scrape.LineItem, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := pool.Query(ctx, `
		SELECT kind, subject, prior_value, current_value
		FROM statement_items
		WHERE document_id = $1
		ORDER BY row_order`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load items of %s: %w", documentID, err)
	}
	defer rows.Close()

	var items []scrape.LineItem
	for rows.Next() {
		var kind string
		var item scrape.LineItem
		if err := rows.Scan(&kind, &item.Subject, &item.Prior, &item.Current); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		item.Kind = kindFromString(kind)
		items = append(items, item)
	}
	return items, rows.Err()
}

func kindFromString(s string) scrape.StatementKind {
	switch s {
	case "balance_sheet":
		return scrape.BalanceSheet
	case "income_statement":
		return scrape.IncomeStatement
	case "cash_flow_statement":
		return scrape.CashFlowStatement
	default:
		return scrape.OtherStatement
	}
}
