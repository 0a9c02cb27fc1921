package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS push_gate_runs (
	run_id       TEXT PRIMARY KEY,
	branch       TEXT NOT NULL,
	old_revision TEXT NOT NULL,
	new_revision TEXT NOT NULL,
	state        TEXT NOT NULL,
	exit_code    INTEGER NOT NULL,
	violations   INTEGER NOT NULL,
	report       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
)`

const insertRunSQL = `INSERT INTO push_gate_runs
	(run_id, branch, old_revision, new_revision, state, exit_code, violations, report, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

var _ Sink = (*PostgresSink)(nil)

// PostgresSink appends records to the push_gate_runs table.
type PostgresSink struct {
	db *sql.DB
}

// OpenPostgres connects with the pgx driver, pings within pingTimeout and
// makes sure the table exists.
func OpenPostgres(ctx context.Context, url string, pingTimeout time.Duration) (*PostgresSink, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

// NewPostgresSink wraps an already open database.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Record(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, insertRunSQL,
		rec.RunID, rec.Branch, rec.OldRevision, rec.NewRevision,
		rec.State, rec.ExitCode, rec.Violations, rec.Report, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
