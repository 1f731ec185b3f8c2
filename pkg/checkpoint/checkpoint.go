package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrInvalidRunID is returned when a run ID contains invalid characters
var ErrInvalidRunID = errors.New("invalid run ID: contains path traversal or invalid characters")

// DefaultDirName is the directory created under os.TempDir when no
// checkpoint directory is configured.
const DefaultDirName = "neo4flix-runs"

// Step represents a stage of an import or export run
type Step string

const (
	StepStarted   Step = "started"
	StepRanked    Step = "ranked"
	StepResolved  Step = "resolved"
	StepReset     Step = "reset"
	StepSchema    Step = "schema"
	StepImported  Step = "imported"
	StepCompleted Step = "completed"
	StepAborted   Step = "aborted"
	StepFailed    Step = "failed"
)

// Params are the run parameters recorded with a checkpoint.
type Params struct {
	Command    string `json:"command"`
	DatasetDir string `json:"dataset_dir,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	MinVotes   int    `json:"min_votes,omitempty"`
	TopCast    int    `json:"top_cast,omitempty"`
	BatchSize  int    `json:"batch_size,omitempty"`
	YearMin    int    `json:"year_min,omitempty"`
	YearMax    int    `json:"year_max,omitempty"`
	Reset      bool   `json:"reset"`
	Output     string `json:"output,omitempty"`
}

// Counts are the totals gathered as a run progresses.
type Counts struct {
	Selected       int `json:"selected"`
	Resolved       int `json:"resolved"`
	MoviesDeleted  int `json:"movies_deleted"`
	OrphansDeleted int `json:"orphans_deleted"`
	Imported       int `json:"imported"`
	FailedBatches  int `json:"failed_batches"`
	Rejected       int `json:"rejected"`
	Exported       int `json:"exported"`
}

// RunCheckpoint represents the recorded state of one pipeline run
type RunCheckpoint struct {
	RunID string `json:"run_id"`
	Step  Step   `json:"step"`

	// Timestamp tracking
	CreatedAt      time.Time `json:"created_at"`
	LastUpdatedAt  time.Time `json:"last_updated_at"`
	LastError      string    `json:"last_error,omitempty"`
	LastErrorStack string    `json:"last_error_stack,omitempty"`

	Params Params `json:"params"`
	Counts Counts `json:"counts"`

	// Batch indexes, in the order they were written
	CommittedBatches []int `json:"committed_batches,omitempty"`
	FailedBatches    []int `json:"failed_batches,omitempty"`
}

// Manager manages run checkpoints
type Manager struct {
	dir string
}

// NewManager creates a new checkpoint manager.
// If dir is empty, uses os.TempDir()/neo4flix-runs
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), DefaultDirName)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	return &Manager{dir: dir}, nil
}

// validateRunID checks that the run ID is safe for use in file paths.
func validateRunID(runID string) error {
	if runID == "" {
		return ErrInvalidRunID
	}
	if strings.Contains(runID, "..") {
		return ErrInvalidRunID
	}
	if strings.ContainsAny(runID, `/\`) {
		return ErrInvalidRunID
	}
	if strings.ContainsRune(runID, '\x00') {
		return ErrInvalidRunID
	}
	return nil
}

// isPathWithinDirectory checks that the resolved path is within the expected directory.
func isPathWithinDirectory(path, directory string) bool {
	cleanPath := filepath.Clean(path)
	cleanDir := filepath.Clean(directory)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath, cleanDir) || cleanPath == filepath.Clean(directory)
}

// Path returns the file path for a run's checkpoint.
func (m *Manager) Path(runID string) (string, error) {
	if err := validateRunID(runID); err != nil {
		return "", err
	}

	fullPath := filepath.Join(m.dir, fmt.Sprintf("run_%s.json", runID))
	if !isPathWithinDirectory(fullPath, m.dir) {
		return "", ErrInvalidRunID
	}
	return fullPath, nil
}

// Save persists the checkpoint to disk
func (m *Manager) Save(ctx context.Context, cp *RunCheckpoint) error {
	cp.LastUpdatedAt = time.Now()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	path, err := m.Path(cp.RunID)
	if err != nil {
		return fmt.Errorf("invalid run ID: %w", err)
	}

	// Write to a temporary file first, then rename for atomic write
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename checkpoint file: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint from disk. It returns nil, nil when the run
// has no checkpoint.
func (m *Manager) Load(ctx context.Context, runID string) (*RunCheckpoint, error) {
	path, err := m.Path(runID)
	if err != nil {
		return nil, fmt.Errorf("invalid run ID: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var cp RunCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// Delete removes a checkpoint from disk
func (m *Manager) Delete(ctx context.Context, runID string) error {
	path, err := m.Path(runID)
	if err != nil {
		return fmt.Errorf("invalid run ID: %w", err)
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete checkpoint file: %w", err)
	}
	return nil
}

// List returns all checkpoints, most recently created first
func (m *Manager) List(ctx context.Context) ([]*RunCheckpoint, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	var checkpoints []*RunCheckpoint
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Only process .json files, skip .tmp files
		if filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			continue
		}

		var cp RunCheckpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			continue
		}
		checkpoints = append(checkpoints, &cp)
	}

	sort.SliceStable(checkpoints, func(i, j int) bool {
		if !checkpoints[i].CreatedAt.Equal(checkpoints[j].CreatedAt) {
			return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
		}
		return checkpoints[i].RunID > checkpoints[j].RunID
	})
	return checkpoints, nil
}

// Latest returns the most recently created checkpoint, or nil when none exist
func (m *Manager) Latest(ctx context.Context) (*RunCheckpoint, error) {
	checkpoints, err := m.List(ctx)
	if err != nil || len(checkpoints) == 0 {
		return nil, err
	}
	return checkpoints[0], nil
}

// Dir returns the checkpoint directory path
func (m *Manager) Dir() string {
	return m.dir
}

// CleanOld removes checkpoints older than the specified duration
func (m *Manager) CleanOld(ctx context.Context, maxAge time.Duration) (int, error) {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, cp := range checkpoints {
		if cp.LastUpdatedAt.Before(cutoff) {
			if err := m.Delete(ctx, cp.RunID); err != nil {
				continue
			}
			removed++
		}
	}
	return removed, nil
}
