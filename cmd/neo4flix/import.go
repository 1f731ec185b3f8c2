package neo4flix

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mousdieng/neo4flix"
	"github.com/mousdieng/neo4flix/pkg/dataset"
	"github.com/mousdieng/neo4flix/pkg/ranking"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the top IMDb movies into the graph",
	Long: `Load the top-ranked IMDb feature films into the graph.

The five IMDb TSV files (title.basics, title.ratings, title.crew,
title.principals, name.basics) are read from --data-dir, either plain or
gzipped. Movies are ranked by a Bayesian weighted rating, their directors
and top-billed actors are resolved, and everything is upserted in batches.

By default the existing movie graph is deleted first. Use --no-clean to
upsert on top of it instead; orphaned genres and people are then reclaimed
after the import. User nodes are never touched.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("data-dir", "./imdb_data", "Directory holding the IMDb TSV files")
	importCmd.Flags().Int("limit", 10000, "Number of top-ranked movies to import")
	importCmd.Flags().Int("min-votes", 10000, "Minimum IMDb votes for a movie to be considered")
	importCmd.Flags().Int("top-cast", 5, "Number of billed actors kept per movie")
	importCmd.Flags().Int("batch-size", 500, "Movies written per transaction")
	importCmd.Flags().Int("year-min", 1900, "Earliest accepted release year")
	importCmd.Flags().Int("year-max", 2030, "Latest accepted release year")
	importCmd.Flags().Bool("clean", true, "Delete existing movies before importing")
	importCmd.Flags().Bool("no-clean", false, "Keep existing movies and upsert on top of them")
	importCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation before deleting")
	importCmd.MarkFlagsMutuallyExclusive("clean", "no-clean")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, flush, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer flush()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to graph", "error", err)
		return err
	}

	client, err := neo4flix.NewClient(store, dataset.NewDirSource(cfg.Dataset.Dir), &neo4flix.Config{
		CheckpointDir: cfg.Checkpoint.Dir,
	}, log)
	if err != nil {
		_ = store.Close(ctx)
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	defer client.Close(context.Background())

	opts := neo4flix.ImportOptions{
		Ranking: ranking.Params{
			Limit:    cfg.Import.Limit,
			MinVotes: cfg.Import.MinVotes,
			YearMin:  cfg.Import.YearMin,
			YearMax:  cfg.Import.YearMax,
		},
		TopCast:    cfg.Import.TopCast,
		BatchSize:  cfg.Import.BatchSize,
		Reset:      cfg.Import.Reset,
		DatasetDir: cfg.Dataset.Dir,
	}
	if !cfg.Import.AssumeYes {
		opts.Confirm = stdinConfirm(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	summary, err := client.Import(ctx, opts)
	if err != nil {
		log.Error("Import failed", "error", err)
		notify(context.Background(), cfg, log, "Import failed", importReport(summary, err))
		return err
	}
	if summary.Import != nil && summary.Import.Errors() > 0 {
		notify(ctx, cfg, log, "Import finished with errors", importReport(summary, nil))
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary.String())
	return nil
}

// importReport renders a run for an alert body.
func importReport(summary *neo4flix.RunSummary, err error) string {
	var b strings.Builder
	if summary != nil {
		fmt.Fprintln(&b, summary.String())
	}
	if err != nil {
		fmt.Fprintf(&b, "error: %v\n", err)
	}
	if summary != nil && summary.Import != nil {
		for _, f := range summary.Import.Failures {
			fmt.Fprintf(&b, "batch %d (records %d-%d): %s\n",
				f.Index, f.Offset, f.Offset+f.Size-1, f.Reason)
		}
		for _, r := range summary.Import.Rejections {
			fmt.Fprintf(&b, "record %d rejected: %s\n", r.Index, r.Reason)
		}
	}
	return b.String()
}

// stdinConfirm prompts on out and accepts only "yes" from in. End of input
// counts as a refusal.
func stdinConfirm(in io.Reader, out io.Writer) neo4flix.ConfirmFunc {
	return func(ctx context.Context, prompt string) (bool, error) {
		fmt.Fprint(out, prompt+" ")

		answer := make(chan string, 1)
		errc := make(chan error, 1)
		go func() {
			line, err := bufio.NewReader(in).ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				errc <- err
				return
			}
			answer <- line
		}()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		case line := <-answer:
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "yes":
				return true, nil
			default:
				return false, nil
			}
		}
	}
}
