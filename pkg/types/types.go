package types

import (
	"errors"
	"math"
	"strings"
)

// Validation errors
var (
	ErrEmptyID         = errors.New("id cannot be empty")
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidYear     = errors.New("release year must be positive")
	ErrInvalidRating   = errors.New("rating must be within 0-10")
	ErrInvalidVotes    = errors.New("vote count cannot be negative")
	ErrInvalidRuntime  = errors.New("runtime cannot be negative")
	ErrEmptyGenre      = errors.New("genre name cannot be empty")
	ErrEmptyPersonID   = errors.New("person id cannot be empty")
	ErrEmptyPersonName = errors.New("person name cannot be empty")
)

// Graph labels and relationship types shared by the importer and exporter.
const (
	LabelMovie    = "Movie"
	LabelGenre    = "Genre"
	LabelDirector = "Director"
	LabelActor    = "Actor"
	LabelUser     = "User"

	RelBelongsToGenre = "BELONGS_TO_GENRE"
	RelDirected       = "DIRECTED"
	RelActedIn        = "ACTED_IN"
)

// Movie is the primary entity of the graph. Its identity is the external
// catalog id (IMDb tconst) and it is always written as a whole.
type Movie struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Plot        *string `json:"plot"`
	ReleaseYear int     `json:"releaseYear"`
	Runtime     *int    `json:"runtime"`
	Rating      float64 `json:"imdbRating"`
	Votes       int     `json:"imdbVotes"`
	PosterURL   *string `json:"posterUrl"`
	BackdropURL *string `json:"backdropUrl"`
}

// Validate checks if the Movie can be written to the graph.
func (m *Movie) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(m.Title) == "" {
		return ErrEmptyTitle
	}
	if m.ReleaseYear <= 0 {
		return ErrInvalidYear
	}
	if math.IsNaN(m.Rating) || m.Rating < 0 || m.Rating > 10 {
		return ErrInvalidRating
	}
	if m.Votes < 0 {
		return ErrInvalidVotes
	}
	if m.Runtime != nil && *m.Runtime < 0 {
		return ErrInvalidRuntime
	}
	return nil
}

// Properties returns the full property map of the Movie node. Absent
// optional attributes map to nil so that `SET m = $props` clears them.
func (m *Movie) Properties() map[string]any {
	props := map[string]any{
		"id":          m.ID,
		"imdbId":      m.ID,
		"title":       m.Title,
		"releaseYear": int64(m.ReleaseYear),
		"imdbRating":  m.Rating,
		"imdbVotes":   int64(m.Votes),
		"duration":    nil,
		"plot":        nil,
		"posterUrl":   nil,
		"backdropUrl": nil,
	}
	if m.Runtime != nil {
		props["duration"] = int64(*m.Runtime)
	}
	if m.Plot != nil {
		props["plot"] = *m.Plot
	}
	if m.PosterURL != nil {
		props["posterUrl"] = *m.PosterURL
	}
	if m.BackdropURL != nil {
		props["backdropUrl"] = *m.BackdropURL
	}
	return props
}

// Person is a director or an actor, identified by an external person id.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Validate checks if the Person has an id and a display name.
func (p Person) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyPersonID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyPersonName
	}
	return nil
}

// MovieRecord is a fully resolved movie ready to be upserted: the movie
// itself plus its genre names, directors and top-billed actors.
type MovieRecord struct {
	Movie     Movie    `json:"movie"`
	Genres    []string `json:"genres"`
	Directors []Person `json:"directors"`
	Actors    []Person `json:"actors"`
}

// Validate checks the movie and every linked entity of the record.
func (r *MovieRecord) Validate() error {
	if err := r.Movie.Validate(); err != nil {
		return err
	}
	for _, g := range r.Genres {
		if strings.TrimSpace(g) == "" {
			return ErrEmptyGenre
		}
	}
	for _, d := range r.Directors {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	for _, a := range r.Actors {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// contextKey is the type of context keys defined by this package.
type contextKey string

// ContextKeyRunID carries the id of the current import or export run.
const ContextKeyRunID contextKey = "run_id"
