package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrStoreUnavailable indicates that the graph store could not be reached.
var ErrStoreUnavailable = errors.New("graph store unavailable")

// StoreError wraps a failure reported by the graph store.
type StoreError struct {
	// Op is the store operation, e.g. "write", "read" or "schema".
	Op string
	// Code is the server status code, empty for client-side failures.
	Code string
	// Unavailable is set for connectivity failures.
	Unavailable bool
	Err         error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("graph %s failed [%s]: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("graph %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// Is matches ErrStoreUnavailable for connectivity failures.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable && e.Unavailable
}

// wrapError converts a driver error into a *StoreError.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	se = &StoreError{Op: op, Err: err}
	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) {
		se.Code = nerr.Code
	}
	if neo4j.IsConnectivityError(err) {
		se.Unavailable = true
	}
	return se
}

// ErrorCode returns the server status code carried by err, if any.
func ErrorCode(err error) string {
	var se *StoreError
	if errors.As(err, &se) && se.Code != "" {
		return se.Code
	}
	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) {
		return nerr.Code
	}
	return ""
}

// IsAlreadyExists reports whether a schema statement failed because an
// equivalent constraint or index is already present.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	if strings.HasSuffix(ErrorCode(err), "AlreadyExists") {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "An equivalent")
}

// IsUnsupported reports whether the store rejected a statement it does
// not understand, e.g. schema syntax of another provider or edition.
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	code := ErrorCode(err)
	if strings.Contains(code, "Statement.SyntaxError") ||
		strings.Contains(code, "Statement.FeatureNotSupported") ||
		strings.Contains(code, "Statement.UnsupportedAdministrationCommand") {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not supported") || strings.Contains(msg, "unsupported")
}
