// Package resolver attaches genres, directors and top-billed actors to
// ranked movies.
//
// Crew, principals and names are streamed once each. Only the rows that
// concern a selected movie, or a person linked to one, are kept in memory.
// A person with no usable name in name.basics is dropped from the record.
package resolver
