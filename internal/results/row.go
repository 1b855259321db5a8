package results

import (
	"context"
	"time"

	"github.com/newthinker/prism/internal/core"
)

// Key identifies one simulation configuration. It is the primary key of
// the results table: re-running a configuration replaces its row.
type Key struct {
	Policy    string
	NumStocks int
	Duration  string
	Method    string
	Trials    int
}

// Row is the aggregated outcome distribution of one configuration.
// Statistics are nullable: a fully-degenerate configuration still records
// its identity and counts, with every statistic missing.
type Row struct {
	Key

	ValidCount   int
	MissingCount int

	Mean    core.Float
	Std     core.Float
	P05     core.Float
	P50     core.Float
	P95     core.Float
	AnnMean core.Float

	RunID     string
	UpdatedAt time.Time
}

// Store is the durable, keyed results table. Upsert for an existing key
// replaces that row; ordering of unrelated rows is not guaranteed.
type Store interface {
	Upsert(ctx context.Context, row Row) error
	Get(ctx context.Context, key Key) (*Row, error)
	List(ctx context.Context) ([]Row, error)
	Close() error
}
