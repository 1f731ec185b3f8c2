package neo4flix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mousdieng/neo4flix/pkg/checkpoint"
	"github.com/mousdieng/neo4flix/pkg/dataset"
	"github.com/mousdieng/neo4flix/pkg/driver"
	"github.com/mousdieng/neo4flix/pkg/exporter"
	"github.com/mousdieng/neo4flix/pkg/importer"
	"github.com/mousdieng/neo4flix/pkg/ranking"
	"github.com/mousdieng/neo4flix/pkg/resolver"
	"github.com/mousdieng/neo4flix/pkg/types"
)

// ResetPrompt is shown before a reset deletes the existing movie graph.
const ResetPrompt = "This will DELETE all movies from the graph. Continue? (yes/no)"

// ConfirmFunc asks the operator to approve a destructive step.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Config holds client-wide settings.
type Config struct {
	// CheckpointDir receives one JSON checkpoint per run. Empty uses the
	// default temporary directory.
	CheckpointDir string
	// DisableCheckpoints turns run checkpoints off.
	DisableCheckpoints bool
	// Clock stamps snapshots; defaults to time.Now.
	Clock func() time.Time
}

// ImportOptions are the parameters of one import run.
type ImportOptions struct {
	Ranking   ranking.Params
	TopCast   int
	BatchSize int
	// Reset clears existing movies before writing. When false, orphans are
	// reclaimed after the import instead.
	Reset bool
	// Confirm is asked before a reset. Nil means approved.
	Confirm ConfirmFunc
	// DatasetDir is recorded in the run checkpoint.
	DatasetDir string
}

// DefaultImportOptions returns the parameters of a standard import.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		Ranking:   ranking.DefaultParams(),
		TopCast:   resolver.DefaultTopCast,
		BatchSize: importer.DefaultBatchSize,
		Reset:     true,
	}
}

// RunSummary reports an import run.
type RunSummary struct {
	RunID string `json:"run_id"`
	// Aborted is set when the operator declined the reset.
	Aborted      bool                    `json:"aborted"`
	Ranking      ranking.Stats           `json:"ranking"`
	Resolution   resolver.Stats          `json:"resolution"`
	Reset        *importer.ResetSummary  `json:"reset,omitempty"`
	Orphans      *importer.OrphanSummary `json:"orphans,omitempty"`
	Schema       []importer.SchemaResult `json:"schema,omitempty"`
	Import       *importer.ImportSummary `json:"import,omitempty"`
	Verification *importer.Verification  `json:"verification,omitempty"`
	Duration     time.Duration           `json:"duration"`
}

// Client runs the import and export pipelines against one graph store.
type Client struct {
	store       driver.GraphStore
	catalog     *dataset.Catalog
	checkpoints *checkpoint.Manager
	config      *Config
	logger      *slog.Logger
}

// NewClient creates a Client. source may be nil for export-only use.
func NewClient(store driver.GraphStore, source dataset.Source, config *Config, logger *slog.Logger) (*Client, error) {
	if store == nil {
		return nil, errors.New("graph store is required")
	}
	if config == nil {
		config = &Config{}
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{store: store, config: config, logger: logger}
	if source != nil {
		c.catalog = dataset.NewCatalog(source, logger.With("component", "dataset"))
	}
	if !config.DisableCheckpoints {
		m, err := checkpoint.NewManager(config.CheckpointDir)
		if err != nil {
			return nil, err
		}
		c.checkpoints = m
	}
	return c, nil
}

// Store returns the underlying graph store.
func (c *Client) Store() driver.GraphStore { return c.store }

// Checkpoints returns the run checkpoint manager, or nil when disabled.
func (c *Client) Checkpoints() *checkpoint.Manager { return c.checkpoints }

// Close closes the graph store.
func (c *Client) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

// newRun assigns a run id and scopes ctx and the logger to it.
func (c *Client) newRun(ctx context.Context, params checkpoint.Params) (context.Context, *run) {
	id := uuid.Must(uuid.NewV7()).String()
	r := &run{
		client: c,
		cp:     checkpoint.NewRunCheckpoint(id, params),
		logger: c.logger.With("run_id", id),
	}
	r.save(ctx)
	return context.WithValue(ctx, types.ContextKeyRunID, id), r
}

// run tracks the checkpoint of one pipeline execution. Checkpoint failures
// are logged and never fail the run.
type run struct {
	client *Client
	cp     *checkpoint.RunCheckpoint
	logger *slog.Logger
}

func (r *run) ID() string { return r.cp.RunID }

func (r *run) save(ctx context.Context) {
	if r.client.checkpoints == nil {
		return
	}
	if err := r.client.checkpoints.Save(ctx, r.cp); err != nil {
		r.logger.Warn("Failed to save checkpoint", "error", err)
	}
}

func (r *run) step(ctx context.Context, step checkpoint.Step) {
	if r.client.checkpoints == nil {
		r.cp.Step = step
		return
	}
	if err := r.client.checkpoints.SaveWithStep(ctx, r.cp, step); err != nil {
		r.logger.Warn("Failed to save checkpoint", "error", err)
	}
}

func (r *run) fail(ctx context.Context, err error) error {
	if r.client.checkpoints == nil {
		return err
	}
	if serr := r.client.checkpoints.SaveWithError(ctx, r.cp, err); serr != nil {
		r.logger.Warn("Failed to save checkpoint", "error", serr)
	}
	return err
}

func (r *run) batch(ctx context.Context, res importer.BatchResult) {
	if r.client.checkpoints == nil {
		return
	}
	if err := r.client.checkpoints.RecordBatch(ctx, r.cp, res.Index, len(res.Rejected), res.Err); err != nil {
		r.logger.Warn("Failed to save checkpoint", "error", err)
	}
}

// Export writes the current graph as a JSON snapshot.
func (c *Client) Export(ctx context.Context, opts exporter.Options) (*exporter.Result, error) {
	ctx, r := c.newRun(ctx, checkpoint.Params{
		Command:  "export",
		Provider: string(c.store.Provider()),
		Output:   opts.Output,
	})
	r.logger.Info("Exporting movie graph", "output", opts.Output)

	exp := exporter.New(c.store,
		exporter.WithClock(c.config.Clock),
		exporter.WithLogger(r.logger))
	res, err := exp.Export(ctx, opts)
	if err != nil {
		return res, r.fail(ctx, err)
	}

	r.cp.Counts.Exported = res.TotalMovies
	r.step(ctx, checkpoint.StepCompleted)
	return res, nil
}

// ensureCatalog reports a missing dataset source.
func (c *Client) ensureCatalog() error {
	if c.catalog == nil {
		return errors.New("no dataset source configured")
	}
	return nil
}

func (s *RunSummary) String() string {
	if s.Aborted {
		return fmt.Sprintf("run %s aborted", s.RunID)
	}
	imported, failed, rejected := 0, 0, 0
	if s.Import != nil {
		imported, failed, rejected = s.Import.Imported, s.Import.FailedBatches, s.Import.RejectedRecords
	}
	return fmt.Sprintf("run %s: %d selected, %d imported, %d failed batches, %d rejected records in %s",
		s.RunID, s.Ranking.Returned, imported, failed, rejected, s.Duration.Round(time.Millisecond))
}
