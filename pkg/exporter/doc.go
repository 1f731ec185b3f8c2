// Package exporter writes the movie graph as a self-contained JSON
// snapshot, with an optional Parquet copy of the movies.
//
// Output is deterministic for a given graph: movies are ordered by title
// then id, linked genres and people are deduplicated and sorted, and only
// exported_at differs between two exports of the same data.
package exporter
