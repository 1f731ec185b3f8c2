package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/mousdieng/neo4flix/pkg/driver"
	"github.com/mousdieng/neo4flix/pkg/types"
	"github.com/mousdieng/neo4flix/pkg/utils"
)

// BatchResult describes one written or failed batch.
type BatchResult struct {
	Index  int `json:"index"`
	Offset int `json:"offset"`
	Size   int `json:"size"`
	// Written is the number of records sent to the store; rejected records
	// are not part of the write.
	Written  int               `json:"written"`
	Rejected []RecordRejection `json:"rejected,omitempty"`
	Counters driver.Counters   `json:"counters"`
	Err      error             `json:"-"`
}

// RecordRejection records a single invalid record that was left out of its
// batch.
type RecordRejection struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

// BatchFailure records a batch that was not committed.
type BatchFailure struct {
	Index  int    `json:"index"`
	Offset int    `json:"offset"`
	Size   int    `json:"size"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

// ImportSummary aggregates an Import run.
type ImportSummary struct {
	Records         int               `json:"records"`
	Batches         int               `json:"batches"`
	Imported        int               `json:"imported"`
	FailedBatches   int               `json:"failed_batches"`
	Failures        []BatchFailure    `json:"failures,omitempty"`
	RejectedRecords int               `json:"rejected_records"`
	Rejections      []RecordRejection `json:"rejections,omitempty"`
	Counters        driver.Counters   `json:"counters"`
	Duration        time.Duration     `json:"duration"`
}

// Errors is the number of failed batches plus rejected records.
func (s *ImportSummary) Errors() int {
	return s.FailedBatches + s.RejectedRecords
}

// Import writes records in batches of the configured size. An invalid
// record, or one that panics while being converted, is rejected on its own
// and the valid rest of its batch is still written in one transaction. A
// batch that fails in the store is recorded as a whole and skipped. Import
// only returns an error when ctx is cancelled between batches.
func (w *Writer) Import(ctx context.Context, records []types.MovieRecord) (*ImportSummary, error) {
	start := time.Now()
	batches := utils.ChunkSlice(records, w.opts.BatchSize)
	summary := &ImportSummary{Records: len(records), Batches: len(batches)}

	w.logger.Info("Persisting movies",
		"records", len(records),
		"batches", len(batches),
		"batch_size", w.opts.BatchSize)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}

		res := BatchResult{Index: i, Offset: i * w.opts.BatchSize, Size: len(batch)}
		rows, rejected := w.buildRows(res.Offset, batch)
		res.Rejected = rejected
		res.Written = len(rows)
		if len(rows) > 0 {
			res.Counters, res.Err = w.store.ExecuteWrite(ctx, UpsertMoviesQuery, map[string]any{"movies": rows})
		}

		for _, r := range rejected {
			w.logger.Error("Record rejected",
				"batch", i+1,
				"record", r.Index,
				"id", r.ID,
				"error", r.Err)
		}
		summary.RejectedRecords += len(rejected)
		summary.Rejections = append(summary.Rejections, rejected...)

		if res.Err != nil {
			summary.FailedBatches++
			summary.Failures = append(summary.Failures, BatchFailure{
				Index:  res.Index,
				Offset: res.Offset,
				Size:   res.Size,
				Err:    res.Err,
				Reason: res.Err.Error(),
			})
			w.logger.Error("Batch failed",
				"batch", i+1,
				"of", len(batches),
				"offset", res.Offset,
				"size", res.Written,
				"error", res.Err)
		} else {
			summary.Imported += res.Written
			summary.Counters.Add(res.Counters)
			w.logger.Info("Persisting batch complete",
				"batch", i+1,
				"of", len(batches),
				"rejected", len(rejected),
				"imported", summary.Imported)
		}

		if w.opts.OnBatch != nil {
			w.opts.OnBatch(res)
		}
	}

	summary.Duration = time.Since(start)
	w.logger.Info("Persisting movies complete",
		"imported", summary.Imported,
		"failed_batches", summary.FailedBatches,
		"rejected_records", summary.RejectedRecords,
		"nodes_created", summary.Counters.NodesCreated,
		"relationships_created", summary.Counters.RelationshipsCreated,
		"duration", summary.Duration)
	return summary, nil
}

// buildRows turns the valid records of a batch into query parameters and
// reports the others.
func (w *Writer) buildRows(offset int, batch []types.MovieRecord) ([]map[string]any, []RecordRejection) {
	rows := make([]map[string]any, 0, len(batch))
	var rejected []RecordRejection
	for i := range batch {
		rec := &batch[i]
		row, err := w.buildRow(rec)
		if err != nil {
			err = fmt.Errorf("record %d (%s): %w", offset+i, rec.Movie.ID, err)
			rejected = append(rejected, RecordRejection{
				Index:  offset + i,
				ID:     rec.Movie.ID,
				Err:    err,
				Reason: err.Error(),
			})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rejected
}

func (w *Writer) buildRow(rec *types.MovieRecord) (row map[string]any, err error) {
	defer utils.RecoverAsErrorWith(w.logger, &err)

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":        rec.Movie.ID,
		"props":     rec.Movie.Properties(),
		"genres":    genreParams(rec.Genres),
		"directors": personParams(rec.Directors),
		"actors":    personParams(rec.Actors),
	}, nil
}

func genreParams(genres []string) []any {
	out := make([]any, 0, len(genres))
	for _, g := range genres {
		out = append(out, g)
	}
	return out
}

func personParams(people []types.Person) []any {
	out := make([]any, 0, len(people))
	for _, p := range people {
		out = append(out, map[string]any{"id": p.ID, "name": p.Name})
	}
	return out
}
