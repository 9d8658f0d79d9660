// Package db persists detection runs to Postgres.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ourkan95/Duplicate-Detector/internal/debug"
	"github.com/ourkan95/Duplicate-Detector/internal/engine"
)

// Schema creates the run tables if they do not exist
const Schema = `
CREATE TABLE IF NOT EXISTS dedup_run (
	run_id      UUID PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	listings    INTEGER NOT NULL,
	candidates  INTEGER NOT NULL,
	mismatches  INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS dedup_candidate (
	run_id          UUID NOT NULL REFERENCES dedup_run(run_id) ON DELETE CASCADE,
	id1             TEXT NOT NULL,
	id2             TEXT NOT NULL,
	name1           TEXT,
	address1        TEXT,
	name2           TEXT,
	address2        TEXT,
	addr_score      DOUBLE PRECISION NOT NULL,
	geo_sim         DOUBLE PRECISION NOT NULL,
	name_score      DOUBLE PRECISION NOT NULL,
	combined_score  DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, id1, id2)
);

CREATE TABLE IF NOT EXISTS dedup_mismatch (
	run_id       UUID NOT NULL REFERENCES dedup_run(run_id) ON DELETE CASCADE,
	hotel_id     TEXT NOT NULL,
	name         TEXT,
	deal_url     TEXT,
	name_clean   TEXT,
	slug_clean   TEXT,
	similarity   DOUBLE PRECISION NOT NULL,
	is_mismatch  BOOLEAN NOT NULL,
	PRIMARY KEY (run_id, hotel_id)
);
`

// RunSummary is one row of dedup_run
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	Listings   int       `json:"listings"`
	Candidates int       `json:"candidates"`
	Mismatches int       `json:"mismatches"`
}

// Store writes and reads runs
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables used by SaveRun
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun stores a run with its candidates and mismatch records in one transaction
func (s *Store) SaveRun(ctx context.Context, res *engine.Result) error {
	localDebug := false
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	flagged := len(engine.Mismatches(res.Mismatches))
	_, err = tx.ExecContext(ctx, `
		INSERT INTO dedup_run (run_id, started_at, listings, candidates, mismatches)
		VALUES ($1, $2, $3, $4, $5)
	`, res.RunID, res.StartedAt, res.Listings, len(res.Candidates), flagged)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	candidateStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dedup_candidate (run_id, id1, id2, name1, address1, name2, address2,
			addr_score, geo_sim, name_score, combined_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return err
	}
	defer candidateStmt.Close()

	for _, c := range res.Candidates {
		_, err = candidateStmt.ExecContext(ctx, res.RunID, c.Key.ID1, c.Key.ID2,
			c.Name1, c.Address1, c.Name2, c.Address2,
			c.AddressScore, c.GeoSimilarity, c.NameScore, c.CombinedScore)
		if err != nil {
			return fmt.Errorf("failed to insert candidate %s: %w", c.Key, err)
		}
	}

	mismatchStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dedup_mismatch (run_id, hotel_id, name, deal_url, name_clean, slug_clean,
			similarity, is_mismatch)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return err
	}
	defer mismatchStmt.Close()

	for _, m := range res.Mismatches {
		_, err = mismatchStmt.ExecContext(ctx, res.RunID, m.ListingID, m.Name, m.URL,
			m.CleanedName, m.CleanedSlug, m.Similarity, m.IsMismatch)
		if err != nil {
			return fmt.Errorf("failed to insert mismatch %s: %w", m.ListingID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	debug.DebugOutput(localDebug, "Saved run %s: %d candidates, %d mismatch rows",
		res.RunID, len(res.Candidates), len(res.Mismatches))
	return nil
}

// RecentRuns returns the latest runs, newest first
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, listings, candidates, mismatches
		FROM dedup_run
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.Listings, &r.Candidates, &r.Mismatches); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
