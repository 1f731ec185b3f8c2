// Package neo4flix implements the neo4flix command line: import, export,
// runs and config.
package neo4flix
