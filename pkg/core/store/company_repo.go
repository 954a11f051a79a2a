package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"edinet_analyzer/pkg/core/company"
)

// CompanyRepo handles the entity master.
type CompanyRepo struct{}

func NewCompanyRepo() *CompanyRepo {
	return &CompanyRepo{}
}

// Schema assumption (managed by migrations):
// CREATE TABLE companies (
//   edinet_code TEXT PRIMARY KEY,
//   code        TEXT,
//   name        TEXT NOT NULL,
//   industry    TEXT NOT NULL DEFAULT ''
// );

// UpsertAll replaces master attributes for every imported company.
func (r *CompanyRepo) UpsertAll(ctx context.Context, companies []company.Company) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO companies (edinet_code, code, name, industry)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (edinet_code)
		DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			industry = EXCLUDED.industry;
	`
	for _, c := range companies {
		batch.Queue(query, c.EdinetCode, c.Code, c.Name, c.Industry)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for range companies {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert company: %w", err)
		}
	}
	return nil
}

// FindByEdinetCode returns the company for a filer, or nil when the
// filer is not in the master.
func (r *CompanyRepo) FindByEdinetCode(ctx context.Context, edinetCode string) (*company.Company, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var c company.Company
	err := pool.QueryRow(ctx,
		`SELECT edinet_code, code, name, industry FROM companies WHERE edinet_code = $1`,
		edinetCode,
	).Scan(&c.EdinetCode, &c.Code, &c.Name, &c.Industry)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load company %s: %w", edinetCode, err)
	}
	return &c, nil
}
