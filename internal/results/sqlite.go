package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/newthinker/prism/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	policy        TEXT    NOT NULL,
	num_stocks    INTEGER NOT NULL,
	duration      TEXT    NOT NULL,
	method        TEXT    NOT NULL,
	trial_count   INTEGER NOT NULL,
	valid_count   INTEGER NOT NULL,
	missing_count INTEGER NOT NULL,
	mean          REAL,
	std           REAL,
	p05           REAL,
	p50           REAL,
	p95           REAL,
	ann_mean      REAL,
	run_id        TEXT    NOT NULL,
	updated_at    TEXT    NOT NULL,
	PRIMARY KEY (policy, num_stocks, duration, method, trial_count)
);`

// SQLiteStore is the Store backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) the results database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed,
			fmt.Errorf("opening results db: %w", err))
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrStoreFailed,
			fmt.Errorf("initializing results schema: %w", err))
	}
	return &SQLiteStore{db: db}, nil
}

// Upsert implements Store with an ON CONFLICT update, so re-running a
// configuration replaces its row in place.
func (s *SQLiteStore) Upsert(ctx context.Context, row Row) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (
			policy, num_stocks, duration, method, trial_count,
			valid_count, missing_count,
			mean, std, p05, p50, p95, ann_mean,
			run_id, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (policy, num_stocks, duration, method, trial_count)
		DO UPDATE SET
			valid_count   = excluded.valid_count,
			missing_count = excluded.missing_count,
			mean          = excluded.mean,
			std           = excluded.std,
			p05           = excluded.p05,
			p50           = excluded.p50,
			p95           = excluded.p95,
			ann_mean      = excluded.ann_mean,
			run_id        = excluded.run_id,
			updated_at    = excluded.updated_at`,
		row.Policy, row.NumStocks, row.Duration, row.Method, row.Trials,
		row.ValidCount, row.MissingCount,
		nullable(row.Mean), nullable(row.Std),
		nullable(row.P05), nullable(row.P50), nullable(row.P95),
		nullable(row.AnnMean),
		row.RunID, row.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key Key) (*Row, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT policy, num_stocks, duration, method, trial_count,
		       valid_count, missing_count,
		       mean, std, p05, p50, p95, ann_mean,
		       run_id, updated_at
		FROM results
		WHERE policy = ? AND num_stocks = ? AND duration = ? AND method = ? AND trial_count = ?`,
		key.Policy, key.NumStocks, key.Duration, key.Method, key.Trials,
	)
	r, err := scanRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, core.ErrRowNotFound
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return r, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT policy, num_stocks, duration, method, trial_count,
		       valid_count, missing_count,
		       mean, std, p05, p50, p95, ann_mean,
		       run_id, updated_at
		FROM results
		ORDER BY policy, num_stocks, duration, method, trial_count`)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows.Scan)
		if err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return out, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRow(scan func(dest ...any) error) (*Row, error) {
	var r Row
	var mean, std, p05, p50, p95, annMean sql.NullFloat64
	var updatedAt string

	err := scan(
		&r.Policy, &r.NumStocks, &r.Duration, &r.Method, &r.Trials,
		&r.ValidCount, &r.MissingCount,
		&mean, &std, &p05, &p50, &p95, &annMean,
		&r.RunID, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Mean = fromNullable(mean)
	r.Std = fromNullable(std)
	r.P05 = fromNullable(p05)
	r.P50 = fromNullable(p50)
	r.P95 = fromNullable(p95)
	r.AnnMean = fromNullable(annMean)
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		r.UpdatedAt = t
	}
	return &r, nil
}

func nullable(f core.Float) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f.Value, Valid: f.Valid}
}

func fromNullable(f sql.NullFloat64) core.Float {
	if !f.Valid {
		return core.Missing()
	}
	return core.FloatOf(f.Float64)
}
