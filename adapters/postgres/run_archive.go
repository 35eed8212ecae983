package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rotlab/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// RunArchiveImpl implements ports.RunArchive for PostgreSQL. Archiving is
// append-only: runs are never updated, so two machines archiving the same
// seed can later be compared row for row.
type RunArchiveImpl struct {
	db *sqlx.DB
}

// NewRunArchive creates a new PostgreSQL run archive
func NewRunArchive(db *sqlx.DB) ports.RunArchive {
	return &RunArchiveImpl{db: db}
}

// DSN applies the configured sslmode to a database URL unless the URL
// already pins one.
func DSN(databaseURL, sslmode string) string {
	if sslmode == "" || strings.Contains(databaseURL, "sslmode=") {
		return databaseURL
	}
	sep := "?"
	if strings.Contains(databaseURL, "?") {
		sep = "&"
	}
	return databaseURL + sep + "sslmode=" + sslmode
}

// Connect opens and pings a PostgreSQL archive connection
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect run archive: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the archive tables if they do not exist
func (a *RunArchiveImpl) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id       UUID PRIMARY KEY,
			fingerprint  TEXT NOT NULL,
			seed         BIGINT NOT NULL,
			params       JSONB NOT NULL,
			mode         TEXT NOT NULL,
			verdict      TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fit_summaries (
			run_id       UUID NOT NULL REFERENCES runs(run_id),
			condition    TEXT NOT NULL,
			n_replicates INTEGER NOT NULL,
			summary      JSONB NOT NULL,
			PRIMARY KEY (run_id, condition)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed)`,
	}
	for _, stmt := range statements {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure archive schema: %w", err)
		}
	}
	return nil
}

// SaveRun stores a run row plus one summary row per condition
func (a *RunArchiveImpl) SaveRun(ctx context.Context, rec ports.RunRecord) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, fingerprint, seed, params, mode, verdict, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.RunID.String(), rec.Fingerprint.String(), rec.Seed, rec.ParamsJSON, rec.Mode, string(rec.Verdict), rec.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}

	for _, summary := range rec.Summaries {
		payload, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("encode summary for %s: %w", summary.Condition, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO fit_summaries (run_id, condition, n_replicates, summary)
			VALUES ($1, $2, $3, $4)
		`, rec.RunID.String(), summary.Condition.String(), summary.Replicates, payload)
		if err != nil {
			return fmt.Errorf("insert summary for %s: %w", summary.Condition, err)
		}
	}

	return tx.Commit()
}
