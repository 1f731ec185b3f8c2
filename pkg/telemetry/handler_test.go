package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mousdieng/neo4flix/pkg/types"
)

func newTestLogger(t *testing.T) (*slog.Logger, *ParquetHandler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	next := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	h, err := NewParquetHandler(next, t.TempDir())
	require.NoError(t, err)
	return slog.New(h), h, &buf
}

func TestParquetHandlerPersistsErrorsOnly(t *testing.T) {
	log, h, buf := newTestLogger(t)
	ctx := context.WithValue(context.Background(), types.ContextKeyRunID, "run-42")

	log.InfoContext(ctx, "Persisting batch complete", "batch", 1)
	log.WarnContext(ctx, "Schema rule not applied")
	log.With("component", "importer").ErrorContext(ctx, "Batch failed",
		"offset", 500,
		"error", errors.New("record 500 (tt1): title cannot be empty"))

	// Every record reaches the wrapped handler
	assert.Contains(t, buf.String(), "Persisting batch complete")
	assert.Contains(t, buf.String(), "Batch failed")

	rows, err := ReadDir(h.OutputDir())
	require.NoError(t, err)
	assert.Empty(t, rows, "nothing is written before a flush")

	require.NoError(t, h.Close())

	rows, err = ReadDir(h.OutputDir())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rec := rows[0]
	assert.Equal(t, "ERROR", rec.Level)
	assert.Equal(t, "Batch failed", rec.Message)
	assert.Equal(t, "run-42", rec.RunID)
	assert.Equal(t, "importer", rec.Component)
	assert.Contains(t, rec.SourceFile, "handler_test.go")
	assert.NotZero(t, rec.LineNumber)
	assert.NotEmpty(t, rec.ID)

	var attrs map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.Attributes), &attrs))
	assert.Equal(t, "record 500 (tt1): title cannot be empty", attrs["error"])
	assert.Equal(t, float64(500), attrs["offset"])
}

func TestParquetHandlerFlushesEveryBatch(t *testing.T) {
	log, h, _ := newTestLogger(t)

	for i := 0; i < DefaultBatchSize+5; i++ {
		log.Error("Batch failed", "batch", i)
	}

	rows, err := ReadDir(h.OutputDir())
	require.NoError(t, err)
	assert.Len(t, rows, DefaultBatchSize)

	require.NoError(t, h.Close())
	rows, err = ReadDir(h.OutputDir())
	require.NoError(t, err)
	assert.Len(t, rows, DefaultBatchSize+5)
}

func TestParquetHandlerDerivedHandlersShareBuffer(t *testing.T) {
	log, h, _ := newTestLogger(t)

	log.WithGroup("batch").Error("Batch failed", "index", 3)
	log.With("run_id", "run-attr").Error("Run failed")

	require.NoError(t, h.Close())
	rows, err := ReadDir(h.OutputDir())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byMessage := map[string]LogRecord{}
	for _, r := range rows {
		byMessage[r.Message] = r
	}
	assert.Contains(t, byMessage["Batch failed"].Attributes, `"batch.index":3`)
	assert.Equal(t, "run-attr", byMessage["Run failed"].RunID)
}

func TestParquetHandlerAttrsKeepTheirGroup(t *testing.T) {
	log, h, _ := newTestLogger(t)

	log.With("component", "importer").
		WithGroup("batch").
		With("index", 2).
		WithGroup("store").
		Error("Batch failed", "code", "deadlock")

	require.NoError(t, h.Close())
	rows, err := ReadDir(h.OutputDir())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var attrs map[string]any
	require.NoError(t, json.Unmarshal([]byte(rows[0].Attributes), &attrs))
	assert.Equal(t, map[string]any{
		"component":        "importer",
		"batch.index":      float64(2),
		"batch.store.code": "deadlock",
	}, attrs)
	assert.Equal(t, "importer", rows[0].Component)
}

func TestCloseWithoutRecords(t *testing.T) {
	_, h, _ := newTestLogger(t)
	require.NoError(t, h.Close())

	rows, err := ReadDir(h.OutputDir())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
