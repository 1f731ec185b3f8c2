package types

import "time"

// SnapshotVersion is the format version written into every snapshot.
const SnapshotVersion = "1.0"

// SnapshotTimeLayout is the ISO-8601 UTC layout of Snapshot.ExportedAt.
const SnapshotTimeLayout = "2006-01-02T15:04:05.000000Z"

// ExportedMovie is one movie of a snapshot: scalar attributes as stored in
// the graph plus its linked genres and people.
type ExportedMovie struct {
	ID          string   `json:"id"`
	Title       *string  `json:"title"`
	Plot        *string  `json:"plot"`
	ReleaseYear *int64   `json:"releaseYear"`
	Runtime     *int64   `json:"runtime"`
	Rating      *float64 `json:"imdbRating"`
	Votes       *int64   `json:"imdbVotes"`
	PosterURL   *string  `json:"posterUrl"`
	BackdropURL *string  `json:"backdropUrl"`
	Genres      []string `json:"genres"`
	Directors   []Person `json:"directors"`
	Actors      []Person `json:"actors"`
}

// Snapshot is the self-contained JSON document loaded by downstream
// applications at cold start.
type Snapshot struct {
	Version     string          `json:"version"`
	ExportedAt  string          `json:"exported_at"`
	TotalMovies int             `json:"total_movies"`
	TotalGenres int             `json:"total_genres"`
	Genres      []string        `json:"genres"`
	Movies      []ExportedMovie `json:"movies"`
}

// Stamp sets ExportedAt from t, converted to UTC.
func (s *Snapshot) Stamp(t time.Time) {
	s.ExportedAt = t.UTC().Format(SnapshotTimeLayout)
}
