package types

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMovie() Movie {
	return Movie{ID: "tt0111161", Title: "The Shawshank Redemption", ReleaseYear: 1994, Rating: 9.3, Votes: 2800000}
}

func TestMovieValidation(t *testing.T) {
	neg := -1
	tests := []struct {
		name    string
		mutate  func(m *Movie)
		wantErr error
	}{
		{name: "valid movie", mutate: func(*Movie) {}},
		{name: "empty id", mutate: func(m *Movie) { m.ID = " " }, wantErr: ErrEmptyID},
		{name: "empty title", mutate: func(m *Movie) { m.Title = "" }, wantErr: ErrEmptyTitle},
		{name: "missing year", mutate: func(m *Movie) { m.ReleaseYear = 0 }, wantErr: ErrInvalidYear},
		{name: "rating above range", mutate: func(m *Movie) { m.Rating = 11 }, wantErr: ErrInvalidRating},
		{name: "rating NaN", mutate: func(m *Movie) { m.Rating = math.NaN() }, wantErr: ErrInvalidRating},
		{name: "negative votes", mutate: func(m *Movie) { m.Votes = -5 }, wantErr: ErrInvalidVotes},
		{name: "negative runtime", mutate: func(m *Movie) { m.Runtime = &neg }, wantErr: ErrInvalidRuntime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMovie()
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMovieRecordValidation(t *testing.T) {
	tests := []struct {
		name    string
		record  MovieRecord
		wantErr error
	}{
		{
			name: "valid record",
			record: MovieRecord{
				Movie:     validMovie(),
				Genres:    []string{"Drama"},
				Directors: []Person{{ID: "nm0001104", Name: "Frank Darabont"}},
				Actors:    []Person{{ID: "nm0000209", Name: "Tim Robbins"}},
			},
		},
		{
			name:    "blank genre",
			record:  MovieRecord{Movie: validMovie(), Genres: []string{"Drama", " "}},
			wantErr: ErrEmptyGenre,
		},
		{
			name:    "director without id",
			record:  MovieRecord{Movie: validMovie(), Directors: []Person{{Name: "Anonymous"}}},
			wantErr: ErrEmptyPersonID,
		},
		{
			name:    "actor without name",
			record:  MovieRecord{Movie: validMovie(), Actors: []Person{{ID: "nm1"}}},
			wantErr: ErrEmptyPersonName,
		},
		{
			name:    "invalid movie",
			record:  MovieRecord{Movie: Movie{Title: "No id", ReleaseYear: 2000}},
			wantErr: ErrEmptyID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMovieProperties(t *testing.T) {
	m := validMovie()
	props := m.Properties()

	assert.Equal(t, "tt0111161", props["id"])
	assert.Equal(t, "tt0111161", props["imdbId"])
	assert.Equal(t, int64(1994), props["releaseYear"])
	assert.Equal(t, int64(2800000), props["imdbVotes"])
	assert.Equal(t, 9.3, props["imdbRating"])
	// Absent optional attributes are present as nil so a full replace clears them.
	for _, key := range []string{"duration", "plot", "posterUrl", "backdropUrl"} {
		v, ok := props[key]
		assert.True(t, ok, key)
		assert.Nil(t, v, key)
	}

	runtime := 142
	plot := "Two imprisoned men bond."
	m.Runtime = &runtime
	m.Plot = &plot
	props = m.Properties()
	assert.Equal(t, int64(142), props["duration"])
	assert.Equal(t, plot, props["plot"])
}

func TestSnapshotJSON(t *testing.T) {
	title := "Amélie & <friends>"
	snap := Snapshot{
		Version:     SnapshotVersion,
		TotalMovies: 1,
		TotalGenres: 1,
		Genres:      []string{"Comedy"},
		Movies: []ExportedMovie{{
			ID:        "tt0211915",
			Title:     &title,
			Genres:    []string{"Comedy"},
			Directors: []Person{{ID: "nm0000466", Name: "Jean-Pierre Jeunet"}},
			Actors:    []Person{},
		}},
	}
	snap.Stamp(time.Date(2024, 5, 1, 12, 30, 0, 123456000, time.FixedZone("CEST", 2*3600)))
	assert.Equal(t, "2024-05-01T10:30:00.123456Z", snap.ExportedAt)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"version", "exported_at", "total_movies", "total_genres", "genres", "movies"} {
		assert.Contains(t, raw, key)
	}
	movie := raw["movies"].([]any)[0].(map[string]any)
	for _, key := range []string{"id", "title", "plot", "releaseYear", "runtime", "imdbRating", "imdbVotes", "posterUrl", "backdropUrl", "genres", "directors", "actors"} {
		assert.Contains(t, movie, key)
	}
	assert.Nil(t, movie["plot"])
}
