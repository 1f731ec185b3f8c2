package importer

import (
	"context"
	"fmt"

	"github.com/mousdieng/neo4flix/pkg/driver"
	"github.com/mousdieng/neo4flix/pkg/types"
)

// DefaultSampleSize is the number of top movies read back by Verify.
const DefaultSampleSize = 10

// TopMovie is one row of the post-import sample.
type TopMovie struct {
	Title  string  `json:"title"`
	Year   int64   `json:"year"`
	Rating float64 `json:"rating"`
	Votes  int64   `json:"votes"`
}

// Verification holds graph totals read after an import.
type Verification struct {
	Nodes         map[string]int64 `json:"nodes"`
	Relationships map[string]int64 `json:"relationships"`
	TopMovies     []TopMovie       `json:"top_movies"`
}

// Movies returns the Movie node count.
func (v *Verification) Movies() int64 { return v.Nodes[types.LabelMovie] }

var (
	verifyLabels = []string{
		types.LabelMovie,
		types.LabelGenre,
		types.LabelDirector,
		types.LabelActor,
		types.LabelUser,
	}
	verifyRelationships = []string{
		types.RelBelongsToGenre,
		types.RelDirected,
		types.RelActedIn,
	}
)

// Verify counts nodes per label and relationships per type, then reads the
// best rated movies.
func (w *Writer) Verify(ctx context.Context) (*Verification, error) {
	v := &Verification{
		Nodes:         make(map[string]int64, len(verifyLabels)),
		Relationships: make(map[string]int64, len(verifyRelationships)),
	}

	for _, label := range verifyLabels {
		n, err := w.countNodes(ctx, label)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s nodes: %w", label, err)
		}
		v.Nodes[label] = n
	}

	for _, rel := range verifyRelationships {
		q, err := driver.CountRelationshipsQuery(rel)
		if err != nil {
			return nil, err
		}
		n, err := w.count(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s relationships: %w", rel, err)
		}
		v.Relationships[rel] = n
	}

	rows, err := w.store.ExecuteRead(ctx, TopMoviesQuery, map[string]any{"limit": DefaultSampleSize})
	if err != nil {
		return nil, fmt.Errorf("failed to read top movies: %w", err)
	}
	for _, r := range rows {
		var tm TopMovie
		if s := r.OptString("title"); s != nil {
			tm.Title = *s
		}
		if y := r.OptInt64("year"); y != nil {
			tm.Year = *y
		}
		if f := r.OptFloat64("rating"); f != nil {
			tm.Rating = *f
		}
		if n := r.OptInt64("votes"); n != nil {
			tm.Votes = *n
		}
		v.TopMovies = append(v.TopMovies, tm)
	}

	w.logger.Info("Verified graph",
		"movies", v.Nodes[types.LabelMovie],
		"genres", v.Nodes[types.LabelGenre],
		"directors", v.Nodes[types.LabelDirector],
		"actors", v.Nodes[types.LabelActor],
		"users", v.Nodes[types.LabelUser])
	return v, nil
}
