package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// StockRepo stores observed market prices and externally sourced
// forecast figures.
type StockRepo struct{}

func NewStockRepo() *StockRepo {
	return &StockRepo{}
}

// Schema assumption:
// CREATE TABLE stock_prices (
//   code        TEXT NOT NULL,
//   target_date DATE NOT NULL,
//   price       NUMERIC NOT NULL,
//   PRIMARY KEY (code, target_date)
// );
// CREATE TABLE forecast_prices (
//   code        TEXT NOT NULL,
//   target_date DATE NOT NULL,
//   price       NUMERIC NOT NULL,
//   PRIMARY KEY (code, target_date)
// );

// InsertPrice records one observation, ignoring duplicates.
func (r *StockRepo) InsertPrice(ctx context.Context, code string, targetDate time.Time, price decimal.Decimal) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO stock_prices (code, target_date, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (code, target_date) DO NOTHING`,
		code, targetDate, price,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price for %s: %w", code, err)
	}
	return nil
}

// LatestForecast returns the newest forecast figure for a company, or
// nil when none has been imported.
func (r *StockRepo) LatestForecast(ctx context.Context, code string) (*decimal.Decimal, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var price decimal.Decimal
	err := pool.QueryRow(ctx, `
		SELECT price FROM forecast_prices
		WHERE code = $1
		ORDER BY target_date DESC
		LIMIT 1`,
		code,
	).Scan(&price)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load forecast for %s: %w", code, err)
	}
	return &price, nil
}
