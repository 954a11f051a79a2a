package store

import (
	"context"
	"fmt"
	"time"

	"edinet_analyzer/pkg/core/edinet"
	"edinet_analyzer/pkg/core/tracker"
)

// DocumentRepo stores filings and their current processing state.
type DocumentRepo struct{}

func NewDocumentRepo() *DocumentRepo {
	return &DocumentRepo{}
}

// Schema assumption:
// CREATE TABLE documents (
//   document_id   TEXT PRIMARY KEY,
//   edinet_code   TEXT NOT NULL,
//   doc_type_code TEXT NOT NULL,
//   description   TEXT NOT NULL DEFAULT '',
//   submit_date   DATE NOT NULL,
//   state         TEXT NOT NULL
// );

// InsertListed records freshly listed filings. Already known filings
// are left untouched so re-running a date never regresses state.
func (r *DocumentRepo) InsertListed(ctx context.Context, filings []edinet.Filing) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	query := `
		INSERT INTO documents (document_id, edinet_code, doc_type_code, description, submit_date, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id) DO NOTHING;
	`
	for _, f := range filings {
		if _, err := pool.Exec(ctx, query,
			f.DocumentID, f.EdinetCode, f.DocTypeCode, f.Description, f.SubmitDate, tracker.StateListed,
		); err != nil {
			return fmt.Errorf("failed to insert filing %s: %w", f.DocumentID, err)
		}
	}
	return nil
}

// UpdateState advances a filing's state after validating the
// transition against the persisted current state.
func (r *DocumentRepo) UpdateState(ctx context.Context, documentID string, to tracker.ProcessingState) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	var current tracker.ProcessingState
	err := pool.QueryRow(ctx,
		`SELECT state FROM documents WHERE document_id = $1`, documentID,
	).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to load state of %s: %w", documentID, err)
	}

	next, err := tracker.Transition(current, to)
	if err != nil {
		return fmt.Errorf("filing %s: %w", documentID, err)
	}

	if _, err := pool.Exec(ctx,
		`UPDATE documents SET state = $2 WHERE document_id = $1`, documentID, next,
	); err != nil {
		return fmt.Errorf("failed to update state of %s: %w", documentID, err)
	}
	return nil
}

// StatusesBySubmitDate loads the state slice the tracker aggregates,
// in stable submission order.
func (r *DocumentRepo) StatusesBySubmitDate(ctx context.Context, submitDate time.Time) ([]tracker.FilingStatus, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := pool.Query(ctx,
		`SELECT document_id, state FROM documents WHERE submit_date = $1 ORDER BY document_id`,
		submitDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load statuses for %s: %w", submitDate.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var statuses []tracker.FilingStatus
	for rows.Next() {
		var st tracker.FilingStatus
		if err := rows.Scan(&st.DocumentID, &st.State); err != nil {
			return nil, fmt.Errorf("failed to scan status row: %w", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}
