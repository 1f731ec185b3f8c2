package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/mousdieng/neo4flix/pkg/types"
)

// ParquetFileName is the file written into Options.ParquetDir.
const ParquetFileName = "movies.parquet"

// PersonRow is a director or actor inside a MovieRow.
type PersonRow struct {
	ID   string `parquet:"id"`
	Name string `parquet:"name"`
}

// MovieRow is the Parquet shape of an exported movie.
type MovieRow struct {
	ID          string      `parquet:"id"`
	Title       *string     `parquet:"title"`
	Plot        *string     `parquet:"plot"`
	ReleaseYear *int64      `parquet:"release_year"`
	Runtime     *int64      `parquet:"runtime"`
	Rating      *float64    `parquet:"imdb_rating"`
	Votes       *int64      `parquet:"imdb_votes"`
	PosterURL   *string     `parquet:"poster_url"`
	BackdropURL *string     `parquet:"backdrop_url"`
	Genres      []string    `parquet:"genres,list"`
	Directors   []PersonRow `parquet:"directors,list"`
	Actors      []PersonRow `parquet:"actors,list"`
}

// WriteParquet writes movies to dir/movies.parquet and returns the path.
func WriteParquet(dir string, movies []types.ExportedMovie) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create parquet directory: %w", err)
	}

	rows := make([]MovieRow, len(movies))
	for i, m := range movies {
		rows[i] = MovieRow{
			ID:          m.ID,
			Title:       m.Title,
			Plot:        m.Plot,
			ReleaseYear: m.ReleaseYear,
			Runtime:     m.Runtime,
			Rating:      m.Rating,
			Votes:       m.Votes,
			PosterURL:   m.PosterURL,
			BackdropURL: m.BackdropURL,
			Genres:      m.Genres,
			Directors:   personRows(m.Directors),
			Actors:      personRows(m.Actors),
		}
	}

	path := filepath.Join(dir, ParquetFileName)
	tmp := path + ".tmp"
	if err := parquet.WriteFile(tmp, rows); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return path, nil
}

// ReadParquet loads the rows written by WriteParquet.
func ReadParquet(path string) ([]MovieRow, error) {
	return parquet.ReadFile[MovieRow](path)
}

func personRows(people []types.Person) []PersonRow {
	out := make([]PersonRow, len(people))
	for i, p := range people {
		out[i] = PersonRow(p)
	}
	return out
}
