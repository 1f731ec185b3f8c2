package checkpoint

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

var importSteps = []Step{
	StepStarted,
	StepRanked,
	StepResolved,
	StepReset,
	StepSchema,
	StepImported,
	StepCompleted,
}

// NewRunCheckpoint creates a new checkpoint for a run at the started step
func NewRunCheckpoint(runID string, params Params) *RunCheckpoint {
	now := time.Now()
	return &RunCheckpoint{
		RunID:         runID,
		Step:          StepStarted,
		CreatedAt:     now,
		LastUpdatedAt: now,
		Params:        params,
	}
}

// IsTerminal reports whether the run has finished, successfully or not.
func (c *RunCheckpoint) IsTerminal() bool {
	switch c.Step {
	case StepCompleted, StepAborted, StepFailed:
		return true
	}
	return false
}

// GetProgress returns a human-readable progress description
func (c *RunCheckpoint) GetProgress() string {
	switch c.Step {
	case StepAborted, StepFailed:
		return string(c.Step)
	}

	currentIdx := -1
	for i, step := range importSteps {
		if step == c.Step {
			currentIdx = i
			break
		}
	}
	if currentIdx == -1 {
		return "Unknown step"
	}

	percentage := (float64(currentIdx) / float64(len(importSteps)-1)) * 100
	return fmt.Sprintf("%.0f%% (%s)", percentage, c.Step)
}

// SaveWithStep is a helper that updates the step and saves in one operation
func (m *Manager) SaveWithStep(ctx context.Context, cp *RunCheckpoint, step Step) error {
	cp.Step = step
	return m.Save(ctx, cp)
}

// SaveWithError is a helper that records an error and saves in one operation
func (m *Manager) SaveWithError(ctx context.Context, cp *RunCheckpoint, err error) error {
	cp.Step = StepFailed
	cp.LastError = err.Error()
	cp.LastErrorStack = string(debug.Stack())
	return m.Save(ctx, cp)
}

// RecordBatch appends a batch index to the committed or failed list, adds
// the batch's rejected records and saves the checkpoint.
func (m *Manager) RecordBatch(ctx context.Context, cp *RunCheckpoint, index, rejected int, err error) error {
	cp.Counts.Rejected += rejected
	if err != nil {
		cp.FailedBatches = append(cp.FailedBatches, index)
		cp.Counts.FailedBatches = len(cp.FailedBatches)
	} else {
		cp.CommittedBatches = append(cp.CommittedBatches, index)
	}
	return m.Save(ctx, cp)
}

// Summary provides a human-readable summary of the checkpoint
func (c *RunCheckpoint) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\n", c.RunID)
	fmt.Fprintf(&b, "Command: %s\n", c.Params.Command)
	fmt.Fprintf(&b, "Progress: %s\n", c.GetProgress())
	fmt.Fprintf(&b, "Created: %s\n", c.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Last Updated: %s\n", c.LastUpdatedAt.Format(time.RFC3339))

	if c.Counts.Selected > 0 {
		fmt.Fprintf(&b, "Selected: %d\n", c.Counts.Selected)
	}
	if c.Counts.Imported > 0 || len(c.CommittedBatches) > 0 {
		fmt.Fprintf(&b, "Imported: %d (%d batches)\n", c.Counts.Imported, len(c.CommittedBatches))
	}
	if len(c.FailedBatches) > 0 {
		fmt.Fprintf(&b, "Failed Batches: %v\n", c.FailedBatches)
	}
	if c.Counts.Rejected > 0 {
		fmt.Fprintf(&b, "Rejected Records: %d\n", c.Counts.Rejected)
	}
	if c.Counts.Exported > 0 {
		fmt.Fprintf(&b, "Exported: %d\n", c.Counts.Exported)
	}
	if c.LastError != "" {
		fmt.Fprintf(&b, "Last Error: %s\n", c.LastError)
	}
	return b.String()
}

// FindStalled returns unfinished checkpoints that haven't been updated recently
func (m *Manager) FindStalled(ctx context.Context, stalledDuration time.Duration) ([]*RunCheckpoint, error) {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-stalledDuration)
	var stalled []*RunCheckpoint
	for _, cp := range checkpoints {
		if !cp.IsTerminal() && cp.LastUpdatedAt.Before(cutoff) {
			stalled = append(stalled, cp)
		}
	}
	return stalled, nil
}

// Statistics summarises the stored checkpoints
type Statistics struct {
	Total      int
	Completed  int
	Aborted    int
	Failed     int
	InProgress int
	Stalled    int
	ByStep     map[Step]int
}

// GetStatistics returns statistics about checkpoints
func (m *Manager) GetStatistics(ctx context.Context, stalledDuration time.Duration) (*Statistics, error) {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		Total:  len(checkpoints),
		ByStep: make(map[Step]int),
	}
	cutoff := time.Now().Add(-stalledDuration)

	for _, cp := range checkpoints {
		stats.ByStep[cp.Step]++

		switch {
		case cp.Step == StepCompleted:
			stats.Completed++
		case cp.Step == StepAborted:
			stats.Aborted++
		case cp.Step == StepFailed:
			stats.Failed++
		case cp.LastUpdatedAt.Before(cutoff):
			stats.Stalled++
		default:
			stats.InProgress++
		}
	}
	return stats, nil
}
