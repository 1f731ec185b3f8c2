package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mousdieng/neo4flix/pkg/driver"
	"github.com/mousdieng/neo4flix/pkg/types"
	"github.com/mousdieng/neo4flix/pkg/utils"
)

// DefaultOutput is the snapshot path used when Options.Output is empty.
const DefaultOutput = "movies_seed.json"

// Options selects where a snapshot is written.
type Options struct {
	// Output is the JSON snapshot path.
	Output string
	// ParquetDir, when set, also receives movies.parquet.
	ParquetDir string
}

// Result describes a written snapshot.
type Result struct {
	Output      string `json:"output"`
	ParquetPath string `json:"parquet_path,omitempty"`
	TotalMovies int    `json:"total_movies"`
	TotalGenres int    `json:"total_genres"`
	ExportedAt  string `json:"exported_at"`
	Bytes       int    `json:"bytes"`
}

// Exporter reads the movie graph and writes it as a JSON snapshot.
type Exporter struct {
	store  driver.GraphStore
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock replaces the clock used for exported_at.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Exporter over store.
func New(store driver.GraphStore, opts ...Option) *Exporter {
	e := &Exporter{store: store, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "exporter")
	return e
}

// Export builds a snapshot and writes it to opts.Output, replacing any
// previous file atomically.
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}

	snap, err := e.Build(ctx)
	if err != nil {
		return nil, err
	}

	snap.Stamp(e.now())
	data, err := Encode(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := writeFileAtomic(opts.Output, data); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	res := &Result{
		Output:      opts.Output,
		TotalMovies: snap.TotalMovies,
		TotalGenres: snap.TotalGenres,
		ExportedAt:  snap.ExportedAt,
		Bytes:       len(data),
	}

	if opts.ParquetDir != "" {
		path, err := WriteParquet(opts.ParquetDir, snap.Movies)
		if err != nil {
			return res, fmt.Errorf("failed to write parquet copy: %w", err)
		}
		res.ParquetPath = path
	}

	e.logger.Info("Snapshot written",
		"output", res.Output,
		"movies", res.TotalMovies,
		"genres", res.TotalGenres,
		"bytes", res.Bytes)
	return res, nil
}

// Build reads the graph into a snapshot without a timestamp.
func (e *Exporter) Build(ctx context.Context) (*types.Snapshot, error) {
	rows, err := e.store.ExecuteRead(ctx, MoviesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read movies: %w", err)
	}
	movies := make([]types.ExportedMovie, 0, len(rows))
	for _, r := range rows {
		m, ok := movieFromRecord(r)
		if !ok {
			e.logger.Warn("Skipping movie without id")
			continue
		}
		movies = append(movies, m)
	}
	SortMovies(movies)

	grows, err := e.store.ExecuteRead(ctx, GenresQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read genres: %w", err)
	}
	genres := make([]string, 0, len(grows))
	for _, r := range grows {
		if s := r.OptString("name"); s != nil {
			genres = append(genres, *s)
		}
	}
	genres = cleanGenres(genres)

	return &types.Snapshot{
		Version:     types.SnapshotVersion,
		TotalMovies: len(movies),
		TotalGenres: len(genres),
		Genres:      genres,
		Movies:      movies,
	}, nil
}

// Encode renders a snapshot as indented JSON without HTML escaping.
func Encode(snap *types.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SortMovies orders movies by title then id, byte-wise. Movies without a
// title sort last.
func SortMovies(movies []types.ExportedMovie) {
	sort.SliceStable(movies, func(i, j int) bool {
		a, b := movies[i], movies[j]
		switch {
		case a.Title == nil && b.Title != nil:
			return false
		case a.Title != nil && b.Title == nil:
			return true
		case a.Title != nil && *a.Title != *b.Title:
			return *a.Title < *b.Title
		}
		return a.ID < b.ID
	})
}

func movieFromRecord(r driver.Record) (types.ExportedMovie, bool) {
	id := r.OptString("id")
	if id == nil || *id == "" {
		return types.ExportedMovie{}, false
	}
	m := types.ExportedMovie{
		ID:          *id,
		Title:       r.OptString("title"),
		Plot:        r.OptString("plot"),
		ReleaseYear: r.OptInt64("releaseYear"),
		Runtime:     r.OptInt64("runtime"),
		Rating:      r.OptFloat64("imdbRating"),
		Votes:       r.OptInt64("imdbVotes"),
		PosterURL:   r.OptString("posterUrl"),
		BackdropURL: r.OptString("backdropUrl"),
	}

	var genres []string
	if list, ok := driver.AsAnySlice(r["genres"]); ok {
		for _, v := range list {
			if s, ok := driver.AsString(v); ok {
				genres = append(genres, s)
			}
		}
	}
	m.Genres = cleanGenres(genres)
	m.Directors = cleanPeople(r["directors"])
	m.Actors = cleanPeople(r["actors"])
	return m, true
}

func cleanGenres(genres []string) []string {
	out := utils.RemoveDuplicateStrings(genres)
	if out == nil {
		out = []string{}
	}
	sort.Strings(out)
	return out
}

// cleanPeople drops entries produced by unmatched OPTIONAL MATCH rows
// and entries without an id or name, then dedupes by id.
func cleanPeople(v any) []types.Person {
	people := []types.Person{}
	list, ok := driver.AsAnySlice(v)
	if !ok {
		return people
	}
	for _, item := range list {
		m, ok := driver.AsMap(item)
		if !ok {
			continue
		}
		id, _ := driver.AsString(m["id"])
		name, _ := driver.AsString(m["name"])
		if strings.TrimSpace(id) == "" || strings.TrimSpace(name) == "" {
			continue
		}
		people = append(people, types.Person{ID: id, Name: name})
	}
	people = utils.DedupeBy(people, func(p types.Person) string { return p.ID })
	sort.SliceStable(people, func(i, j int) bool {
		if people[i].Name != people[j].Name {
			return people[i].Name < people[j].Name
		}
		return people[i].ID < people[j].ID
	})
	return people
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
