package results

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/newthinker/prism/internal/core"
)

var csvHeader = []string{
	"policy", "num_stocks", "duration", "method", "trial_count",
	"valid_count", "missing_count",
	"mean", "std", "p05", "p50", "p95", "ann_mean",
	"run_id", "updated_at",
}

// CSVStore is the Store backed by a flat CSV file: header row, one record
// per line, mergeable by key. Upserts rewrite the file through a temp-file
// rename so a crash never leaves a half-written table.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVStore creates a CSV-backed store at path. The file is created on
// first upsert.
func NewCSVStore(path string) (*CSVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed,
			fmt.Errorf("creating results dir: %w", err))
	}
	return &CSVStore{path: path}, nil
}

// Upsert implements Store: the row for an existing key is replaced, a new
// key is appended.
func (s *CSVStore) Upsert(ctx context.Context, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readAll()
	if err != nil {
		return err
	}

	replaced := false
	for i := range rows {
		if rows[i].Key == row.Key {
			rows[i] = row
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, row)
	}

	return s.writeAll(rows)
}

// Get implements Store.
func (s *CSVStore) Get(ctx context.Context, key Key) (*Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Key == key {
			return &rows[i], nil
		}
	}
	return nil, core.ErrRowNotFound
}

// List implements Store.
func (s *CSVStore) List(ctx context.Context) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Close implements Store.
func (s *CSVStore) Close() error { return nil }

// Path returns the table location, for archival.
func (s *CSVStore) Path() string { return s.path }

func (s *CSVStore) readAll() ([]Row, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row, err := decodeRecord(rec)
		if err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CSVStore) writeAll(rows []Row) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".results-*.csv")
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return core.WrapError(core.ErrStoreFailed, err)
	}
	for _, row := range rows {
		if err := w.Write(encodeRecord(row)); err != nil {
			tmp.Close()
			return core.WrapError(core.ErrStoreFailed, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return core.WrapError(core.ErrStoreFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	return nil
}

func encodeRecord(row Row) []string {
	return []string{
		row.Policy,
		strconv.Itoa(row.NumStocks),
		row.Duration,
		row.Method,
		strconv.Itoa(row.Trials),
		strconv.Itoa(row.ValidCount),
		strconv.Itoa(row.MissingCount),
		row.Mean.String(),
		row.Std.String(),
		row.P05.String(),
		row.P50.String(),
		row.P95.String(),
		row.AnnMean.String(),
		row.RunID,
		row.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func decodeRecord(rec []string) (Row, error) {
	if len(rec) != len(csvHeader) {
		return Row{}, fmt.Errorf("record has %d fields, want %d", len(rec), len(csvHeader))
	}

	numStocks, err := strconv.Atoi(rec[1])
	if err != nil {
		return Row{}, fmt.Errorf("bad num_stocks %q: %w", rec[1], err)
	}
	trials, err := strconv.Atoi(rec[4])
	if err != nil {
		return Row{}, fmt.Errorf("bad trial_count %q: %w", rec[4], err)
	}
	validCount, err := strconv.Atoi(rec[5])
	if err != nil {
		return Row{}, fmt.Errorf("bad valid_count %q: %w", rec[5], err)
	}
	missingCount, err := strconv.Atoi(rec[6])
	if err != nil {
		return Row{}, fmt.Errorf("bad missing_count %q: %w", rec[6], err)
	}

	row := Row{
		Key: Key{
			Policy:    rec[0],
			NumStocks: numStocks,
			Duration:  rec[2],
			Method:    rec[3],
			Trials:    trials,
		},
		ValidCount:   validCount,
		MissingCount: missingCount,
		Mean:         core.ParseFloat(rec[7]),
		Std:          core.ParseFloat(rec[8]),
		P05:          core.ParseFloat(rec[9]),
		P50:          core.ParseFloat(rec[10]),
		P95:          core.ParseFloat(rec[11]),
		AnnMean:      core.ParseFloat(rec[12]),
		RunID:        rec[13],
	}
	if t, err := time.Parse(time.RFC3339Nano, rec[14]); err == nil {
		row.UpdatedAt = t
	}
	return row, nil
}
