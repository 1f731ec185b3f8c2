package neo4flix

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mousdieng/neo4flix"
	"github.com/mousdieng/neo4flix/pkg/exporter"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the movie graph as a JSON seed file",
	Long: `Read every movie with its genres, directors and actors from the graph
and write a deterministic JSON snapshot. Two exports of the same graph
differ only in exported_at.

With --parquet-dir a columnar copy of the movies is written as well.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "movies_seed.json", "Path of the JSON snapshot")
	exportCmd.Flags().String("parquet-dir", "", "Directory for an additional movies.parquet copy")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	client, err := neo4flix.NewClient(store, nil, &neo4flix.Config{
		CheckpointDir: cfg.Checkpoint.Dir,
	}, log)
	if err != nil {
		_ = store.Close(ctx)
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	defer client.Close(context.Background())

	res, err := client.Export(ctx, exporter.Options{
		Output:     cfg.Export.Output,
		ParquetDir: cfg.Export.ParquetDir,
	})
	if err != nil {
		log.Error("Export failed", "error", err)
		notify(context.Background(), cfg, log, "Export failed", err.Error())
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d movies and %d genres to %s\n", res.TotalMovies, res.TotalGenres, res.Output)
	if res.ParquetPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Parquet copy: %s\n", res.ParquetPath)
	}
	return nil
}
