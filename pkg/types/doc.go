// Package types defines the core data types of the neo4flix movie graph.
//
// This package contains the types shared by every pipeline stage:
//   - Movie: the primary entity, identified by its IMDb id
//   - Person: a director or an actor
//   - MovieRecord: a movie resolved together with its genres and people
//   - Snapshot/ExportedMovie: the JSON export document
//
// # Graph schema
//
// Movies link to genres through BELONGS_TO_GENRE, directors link to movies
// through DIRECTED and actors through ACTED_IN. User nodes live in the same
// graph but are never modified by the pipeline.
//
// # Validation
//
// Types provide Validate() methods used by the importer right before a
// record is written:
//
//	rec := &types.MovieRecord{Movie: types.Movie{ID: "tt0111161", Title: "The Shawshank Redemption", ReleaseYear: 1994}}
//	if err := rec.Validate(); err != nil {
//	    // rec is left out of its batch and counted as rejected
//	}
package types
