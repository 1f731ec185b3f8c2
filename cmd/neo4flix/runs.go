package neo4flix

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mousdieng/neo4flix/pkg/checkpoint"
	"github.com/mousdieng/neo4flix/pkg/telemetry"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect import and export run checkpoints",
	RunE:  runListRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var runsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete run checkpoints not updated within --older-than",
	RunE:  runCleanRuns,
}

var runsStalledCmd = &cobra.Command{
	Use:   "stalled",
	Short: "List unfinished runs not updated within --after",
	RunE:  runListStalled,
}

var runsErrorsCmd = &cobra.Command{
	Use:   "errors [run-id]",
	Short: "List error records captured by telemetry",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runListErrors,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd, runsCleanCmd, runsStalledCmd, runsErrorsCmd)

	runsCmd.Flags().Duration("stalled-after", time.Hour, "Age after which an unfinished run counts as stalled")
	runsShowCmd.Flags().Bool("json", false, "Print the raw checkpoint")
	runsStalledCmd.Flags().Duration("after", time.Hour, "Age after which an unfinished run counts as stalled")
	runsCleanCmd.Flags().Duration("older-than", 7*24*time.Hour, "Minimum age of removed checkpoints")
}

func checkpointManager(cmd *cobra.Command) (*checkpoint.Manager, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return checkpoint.NewManager(cfg.Checkpoint.Dir)
}

func runListRuns(cmd *cobra.Command, args []string) error {
	m, err := checkpointManager(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	runs, err := m.List(ctx)
	if err != nil {
		return err
	}
	stalledAfter, _ := cmd.Flags().GetDuration("stalled-after")
	stats, err := m.GetStatistics(ctx, stalledAfter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCOMMAND\tSTEP\tUPDATED\tIMPORTED\tEXPORTED\tFAILED BATCHES\tREJECTED")
	for _, cp := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			cp.RunID, cp.Params.Command, cp.GetProgress(),
			cp.LastUpdatedAt.Format(time.RFC3339),
			cp.Counts.Imported, cp.Counts.Exported, cp.Counts.FailedBatches, cp.Counts.Rejected)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d runs: %d completed, %d aborted, %d failed, %d in progress, %d stalled\n",
		stats.Total, stats.Completed, stats.Aborted, stats.Failed, stats.InProgress, stats.Stalled)
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	m, err := checkpointManager(cmd)
	if err != nil {
		return err
	}
	cp, err := m.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if cp == nil {
		return fmt.Errorf("run %s not found in %s", args[0], m.Dir())
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cp)
	}
	fmt.Fprint(cmd.OutOrStdout(), cp.Summary())
	return nil
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	m, err := checkpointManager(cmd)
	if err != nil {
		return err
	}
	olderThan, _ := cmd.Flags().GetDuration("older-than")
	n, err := m.CleanOld(cmd.Context(), olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d checkpoints\n", n)
	return nil
}

func runListStalled(cmd *cobra.Command, args []string) error {
	m, err := checkpointManager(cmd)
	if err != nil {
		return err
	}
	after, _ := cmd.Flags().GetDuration("after")
	stalled, err := m.FindStalled(cmd.Context(), after)
	if err != nil {
		return err
	}
	if len(stalled) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stalled runs")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCOMMAND\tSTEP\tUPDATED")
	for _, cp := range stalled {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			cp.RunID, cp.Params.Command, cp.GetProgress(), cp.LastUpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runListErrors(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Telemetry.ParquetPath == "" {
		return fmt.Errorf("telemetry.parquet_path is not set")
	}

	records, err := telemetry.ReadDir(cfg.Telemetry.ParquetPath)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tRUN\tCOMPONENT\tMESSAGE")
	for _, r := range records {
		if len(args) == 1 && r.RunID != args[0] {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Timestamp.Format(time.RFC3339), r.RunID, r.Component, r.Message)
	}
	return w.Flush()
}
