package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/mousdieng/neo4flix/pkg/driver"
	"github.com/mousdieng/neo4flix/pkg/types"
)

// OrphanSummary counts the nodes removed by ReclaimOrphans.
type OrphanSummary struct {
	Genres    int `json:"genres"`
	Directors int `json:"directors"`
	Actors    int `json:"actors"`
}

// Total returns the number of reclaimed nodes.
func (o OrphanSummary) Total() int { return o.Genres + o.Directors + o.Actors }

// ResetSummary reports what Reset removed and kept.
type ResetSummary struct {
	MoviesDeleted  int           `json:"movies_deleted"`
	Chunks         int           `json:"chunks"`
	Orphans        OrphanSummary `json:"orphans"`
	UsersPreserved int64         `json:"users_preserved"`
	Duration       time.Duration `json:"duration"`
}

// Reset deletes every Movie with its relationships, in chunks, then
// reclaims orphaned genres and people. User nodes are left untouched.
func (w *Writer) Reset(ctx context.Context) (*ResetSummary, error) {
	start := time.Now()
	summary := &ResetSummary{}
	limit := w.opts.ResetChunkSize

	w.logger.Warn("Deleting all movies", "chunk_size", limit)
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		c, err := w.store.ExecuteWrite(ctx, ResetChunkQuery, map[string]any{"limit": limit})
		if err != nil {
			return summary, fmt.Errorf("failed to delete movies: %w", err)
		}
		summary.Chunks++
		summary.MoviesDeleted += c.NodesDeleted
		w.logger.Debug("Deleted movie chunk",
			"chunk", summary.Chunks,
			"deleted", c.NodesDeleted,
			"total", summary.MoviesDeleted)
		if c.NodesDeleted < limit {
			break
		}
	}

	orphans, err := w.ReclaimOrphans(ctx)
	summary.Orphans = orphans
	if err != nil {
		return summary, err
	}

	users, err := w.countNodes(ctx, types.LabelUser)
	if err != nil {
		w.logger.Warn("Could not count preserved users", "error", err)
	}
	summary.UsersPreserved = users
	summary.Duration = time.Since(start)

	w.logger.Info("Movie graph cleared",
		"movies_deleted", summary.MoviesDeleted,
		"genres_reclaimed", orphans.Genres,
		"directors_reclaimed", orphans.Directors,
		"actors_reclaimed", orphans.Actors,
		"users_preserved", summary.UsersPreserved,
		"duration", summary.Duration)
	return summary, nil
}

// ReclaimOrphans deletes genres without movies, directors who directed no
// movie and actors who acted in none. Nodes linked to a User are kept.
func (w *Writer) ReclaimOrphans(ctx context.Context) (OrphanSummary, error) {
	var out OrphanSummary
	steps := []struct {
		label string
		query string
		count *int
	}{
		{types.LabelGenre, ReclaimGenresQuery, &out.Genres},
		{types.LabelDirector, ReclaimDirectorsQuery, &out.Directors},
		{types.LabelActor, ReclaimActorsQuery, &out.Actors},
	}
	for _, s := range steps {
		c, err := w.store.ExecuteWrite(ctx, s.query, nil)
		if err != nil {
			return out, fmt.Errorf("failed to reclaim orphaned %s nodes: %w", s.label, err)
		}
		*s.count = c.NodesDeleted
	}
	if out.Total() > 0 {
		w.logger.Info("Reclaimed orphaned nodes",
			"genres", out.Genres,
			"directors", out.Directors,
			"actors", out.Actors)
	}
	return out, nil
}

func (w *Writer) countNodes(ctx context.Context, label string) (int64, error) {
	q, err := driver.CountNodesQuery(label)
	if err != nil {
		return 0, err
	}
	return w.count(ctx, q)
}

func (w *Writer) count(ctx context.Context, query string) (int64, error) {
	rows, err := w.store.ExecuteRead(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Int64("count")
}
