package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/mousdieng/neo4flix/pkg/types"
)

// DefaultBatchSize is the number of buffered records that triggers a flush.
const DefaultBatchSize = 100

// LogRecord represents a single log entry for Parquet storage
type LogRecord struct {
	ID         string    `parquet:"id"`
	Timestamp  time.Time `parquet:"timestamp"`
	Level      string    `parquet:"level"`
	Message    string    `parquet:"message"`
	RunID      string    `parquet:"run_id"`
	Component  string    `parquet:"component"`
	SourceFile string    `parquet:"source_file"`
	LineNumber int       `parquet:"line_number"`
	Attributes string    `parquet:"attributes"` // JSON string
}

// sink is the buffer shared by a handler and all of its derived handlers.
type sink struct {
	outputDir string
	batchSize int

	mu     sync.Mutex
	buffer []LogRecord
	files  int
}

// ParquetHandler is a slog.Handler that writes error logs to Parquet files
type ParquetHandler struct {
	next slog.Handler
	sink *sink
	// attrs carry the group prefix that was open when they were added.
	attrs  []slog.Attr
	groups []string
}

// NewParquetHandler creates a new ParquetHandler
func NewParquetHandler(next slog.Handler, outputDir string) (*ParquetHandler, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	return &ParquetHandler{
		next: next,
		sink: &sink{
			outputDir: outputDir,
			batchSize: DefaultBatchSize,
			buffer:    make([]LogRecord, 0, DefaultBatchSize),
		},
	}, nil
}

// Enabled implements slog.Handler
func (h *ParquetHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ParquetHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always pass to next handler first
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}

	// Only errors are persisted
	if r.Level < slog.LevelError {
		return nil
	}

	var runID string
	if v, ok := ctx.Value(types.ContextKeyRunID).(string); ok {
		runID = v
	}

	attrs := make(map[string]any)
	var component string
	collect := func(key string, v slog.Value) {
		switch key {
		case "component":
			component = v.String()
		case "run_id":
			if runID == "" {
				runID = v.String()
			}
		}
		attrs[key] = attrValue(v)
	}
	for _, a := range h.attrs {
		collect(a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(joinGroups(h.groups, a.Key), a.Value)
		return true
	})

	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		attrsJSON = []byte(fmt.Sprintf(`{"marshal_error":%q}`, err.Error()))
	}

	var sourceFile string
	var line int
	if r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		sourceFile, line = f.File, f.Line
	}

	record := LogRecord{
		ID:         uuid.New().String(),
		Timestamp:  r.Time.UTC(),
		Level:      r.Level.String(),
		Message:    r.Message,
		RunID:      runID,
		Component:  component,
		SourceFile: sourceFile,
		LineNumber: line,
		Attributes: string(attrsJSON),
	}

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.buffer = append(h.sink.buffer, record)
	if len(h.sink.buffer) >= h.sink.batchSize {
		return h.sink.flush()
	}
	return nil
}

// Flush writes any buffered records to a new Parquet file.
func (h *ParquetHandler) Flush() error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return h.sink.flush()
}

// Close flushes the remaining records. The handler stays usable.
func (h *ParquetHandler) Close() error {
	return h.Flush()
}

// OutputDir returns the directory receiving Parquet files.
func (h *ParquetHandler) OutputDir() string {
	return h.sink.outputDir
}

// flush writes the current buffer to a new Parquet file.
// Caller must hold the lock
func (s *sink) flush() error {
	if len(s.buffer) == 0 {
		return nil
	}

	now := time.Now()
	s.files++
	filename := fmt.Sprintf("execution_errors_%s_%d_%d.parquet", now.Format("20060102_150405"), now.UnixNano(), s.files)
	path := filepath.Join(s.outputDir, filename)

	if err := parquet.WriteFile(path, s.buffer); err != nil {
		// Reported on stderr; the log call itself must not fail the run
		fmt.Fprintf(os.Stderr, "Failed to write telemetry parquet file: %v\n", err)
		return err
	}

	s.buffer = s.buffer[:0]
	return nil
}

// WithAttrs implements slog.Handler
func (h *ParquetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	merged := append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: joinGroups(h.groups, a.Key), Value: a.Value})
	}
	return &ParquetHandler{
		next:   h.next.WithAttrs(attrs),
		sink:   h.sink,
		attrs:  merged,
		groups: h.groups,
	}
}

// WithGroup implements slog.Handler
func (h *ParquetHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ParquetHandler{
		next:   h.next.WithGroup(name),
		sink:   h.sink,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}

// ReadDir loads every record persisted under dir.
func ReadDir(dir string) ([]LogRecord, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "execution_errors_*.parquet"))
	if err != nil {
		return nil, err
	}
	var out []LogRecord
	for _, m := range matches {
		rows, err := parquet.ReadFile[LogRecord](m)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", m, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		m := make(map[string]any)
		for _, a := range v.Group() {
			m[a.Key] = attrValue(a.Value)
		}
		return m
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.Any()
	}
}

func joinGroups(groups []string, key string) string {
	out := ""
	for _, g := range groups {
		out += g + "."
	}
	return out + key
}
