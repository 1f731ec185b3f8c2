package neo4flix

import (
	"context"
	"fmt"
	"time"

	"github.com/mousdieng/neo4flix/pkg/checkpoint"
	"github.com/mousdieng/neo4flix/pkg/importer"
	"github.com/mousdieng/neo4flix/pkg/ranking"
	"github.com/mousdieng/neo4flix/pkg/resolver"
)

// Import runs the full pipeline: rank the dataset, resolve people, reset
// the graph if requested, ensure the schema, write the records, reclaim
// orphans when no reset happened, and verify the result.
//
// Every dataset read happens before the first write, so a missing or
// malformed file never leaves the graph half cleared. A declined reset
// returns a summary with Aborted set and a nil error.
func (c *Client) Import(ctx context.Context, opts ImportOptions) (*RunSummary, error) {
	start := time.Now()
	if err := c.ensureCatalog(); err != nil {
		return nil, err
	}
	if opts.TopCast <= 0 {
		opts.TopCast = resolver.DefaultTopCast
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = importer.DefaultBatchSize
	}
	rp := opts.Ranking.WithDefaults()

	ctx, r := c.newRun(ctx, checkpoint.Params{
		Command:    "import",
		DatasetDir: opts.DatasetDir,
		Provider:   string(c.store.Provider()),
		Limit:      rp.Limit,
		MinVotes:   rp.MinVotes,
		TopCast:    opts.TopCast,
		BatchSize:  opts.BatchSize,
		YearMin:    rp.YearMin,
		YearMax:    rp.YearMax,
		Reset:      opts.Reset,
	})
	logger := r.logger
	summary := &RunSummary{RunID: r.ID()}

	// Every file is opened once so that a missing one fails the run before
	// minutes of parsing.
	if err := c.catalog.Check(ctx); err != nil {
		return summary, r.fail(ctx, err)
	}

	// Rank
	titles, err := c.catalog.LoadFeatureTitles(ctx)
	if err != nil {
		return summary, r.fail(ctx, err)
	}
	ratings, err := c.catalog.LoadRatings(ctx)
	if err != nil {
		return summary, r.fail(ctx, err)
	}
	movies, rstats := ranking.Rank(titles, ratings, rp)
	summary.Ranking = rstats
	r.cp.Counts.Selected = len(movies)
	r.step(ctx, checkpoint.StepRanked)
	logger.Info("Ranked movies",
		"titles", rstats.Titles,
		"features", rstats.Features,
		"above_min_votes", rstats.AboveMinVotes,
		"selected", rstats.Returned,
		"dropped_year", rstats.DroppedYear,
		"dropped_title", rstats.DroppedTitle,
		"mean_rating", rstats.MeanRating,
		"vote_weight", rstats.VoteWeight)

	// Resolve
	records, sstats, err := resolver.Resolve(ctx, movies, c.catalog, resolver.Params{
		TopCast: opts.TopCast,
		Logger:  logger.With("component", "resolver"),
	})
	if err != nil {
		return summary, r.fail(ctx, err)
	}
	summary.Resolution = sstats
	r.cp.Counts.Resolved = len(records)
	r.step(ctx, checkpoint.StepResolved)

	w := importer.NewWriter(c.store, importer.Options{
		BatchSize: opts.BatchSize,
		Logger:    logger,
		OnBatch:   func(res importer.BatchResult) { r.batch(ctx, res) },
	})

	// Reset
	if opts.Reset {
		if opts.Confirm != nil {
			ok, err := opts.Confirm(ctx, ResetPrompt)
			if err != nil {
				return summary, r.fail(ctx, fmt.Errorf("confirmation failed: %w", err))
			}
			if !ok {
				logger.Warn("Reset declined, nothing was written")
				summary.Aborted = true
				summary.Duration = time.Since(start)
				r.step(ctx, checkpoint.StepAborted)
				return summary, nil
			}
		}
		reset, err := w.Reset(ctx)
		summary.Reset = reset
		if err != nil {
			return summary, r.fail(ctx, err)
		}
		r.cp.Counts.MoviesDeleted = reset.MoviesDeleted
		r.cp.Counts.OrphansDeleted = reset.Orphans.Total()
		r.step(ctx, checkpoint.StepReset)
	}

	// Schema
	summary.Schema = w.EnsureSchema(ctx)
	r.step(ctx, checkpoint.StepSchema)

	// Import
	imp, err := w.Import(ctx, records)
	summary.Import = imp
	if imp != nil {
		r.cp.Counts.Imported = imp.Imported
		r.cp.Counts.FailedBatches = imp.FailedBatches
		r.cp.Counts.Rejected = imp.RejectedRecords
	}
	if err != nil {
		return summary, r.fail(ctx, err)
	}
	r.step(ctx, checkpoint.StepImported)

	if !opts.Reset {
		orphans, err := w.ReclaimOrphans(ctx)
		if err != nil {
			return summary, r.fail(ctx, err)
		}
		summary.Orphans = &orphans
		r.cp.Counts.OrphansDeleted = orphans.Total()
	}

	// Verify
	v, err := w.Verify(ctx)
	if err != nil {
		return summary, r.fail(ctx, err)
	}
	summary.Verification = v
	for i, m := range v.TopMovies {
		logger.Info("Top movie",
			"rank", i+1,
			"title", m.Title,
			"year", m.Year,
			"rating", m.Rating)
	}

	summary.Duration = time.Since(start)
	r.step(ctx, checkpoint.StepCompleted)
	logger.Info("Import complete",
		"selected", rstats.Returned,
		"imported", imp.Imported,
		"failed_batches", imp.FailedBatches,
		"rejected_records", imp.RejectedRecords,
		"movies_in_graph", v.Movies(),
		"duration", summary.Duration)
	return summary, nil
}
