package importer

import (
	"log/slog"

	"github.com/mousdieng/neo4flix/pkg/driver"
)

const (
	// DefaultBatchSize is the number of movies written per transaction.
	DefaultBatchSize = 500
	// DefaultResetChunkSize bounds the movies deleted per reset transaction.
	DefaultResetChunkSize = 10000
)

// Options configures a Writer.
type Options struct {
	BatchSize      int
	ResetChunkSize int
	Logger         *slog.Logger
	// OnBatch is called after every batch, committed or failed.
	OnBatch func(BatchResult)
}

// Writer loads resolved movie records into the graph store. Each store
// call runs in its own session; the valid records of a batch commit or fail
// together.
type Writer struct {
	store  driver.GraphStore
	opts   Options
	logger *slog.Logger
}

// NewWriter creates a Writer over store.
func NewWriter(store driver.GraphStore, opts Options) *Writer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.ResetChunkSize <= 0 {
		opts.ResetChunkSize = DefaultResetChunkSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		store:  store,
		opts:   opts,
		logger: logger.With("component", "importer"),
	}
}
