// Package utils provides small helpers shared by the neo4flix pipeline:
// panic recovery (recovery.go) and generic slice helpers (slices.go).
package utils
