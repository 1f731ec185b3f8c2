package main

import (
	"log/slog"

	"github.com/mousdieng/neo4flix/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    neo4flix Colored Logger Demo")
	log.Info("============================================")

	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Persisting movies - green!")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("Store writes are highlighted in green:")
	log.Info("Persisting movies", "records", 10000, "batches", 20, "batch_size", 500)
	log.Info("Persisting batch complete", "batch", 1, "of", 20, "imported", 500)
	log.Warn("Deleting all movies", "chunk_size", 10000)
	log.Info("Persisting movies complete", "imported", 10000, "failed_batches", 0)

	log.Warn("Schema rule not applied", "name", "movie_id_unique", "outcome", "unsupported")
	log.Error("Batch failed", "batch", 4, "offset", 1500, "error", "deadlock detected")

	log.Info("Demo complete!")
}
