package importer

import (
	"context"
	"fmt"

	"github.com/mousdieng/neo4flix/pkg/driver"
)

// Outcome classifies the result of one schema statement.
type Outcome int

const (
	// OutcomeCreated means the constraint or index was added.
	OutcomeCreated Outcome = iota
	// OutcomeAlreadyExists means an equivalent rule was already present.
	OutcomeAlreadyExists
	// OutcomeUnsupported means the store rejected the statement syntax.
	OutcomeUnsupported
	// OutcomeFailed covers every other failure.
	OutcomeFailed
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already_exists"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// SchemaResult is the outcome of one constraint or index statement.
type SchemaResult struct {
	Name    string            `json:"name"`
	Kind    driver.SchemaKind `json:"kind"`
	Outcome Outcome           `json:"outcome"`
	Err     error             `json:"-"`
}

// EnsureSchema creates the uniqueness constraints and indexes of the movie
// graph. No statement failure is fatal; each one is reported and logged.
func (w *Writer) EnsureSchema(ctx context.Context) []SchemaResult {
	stmts := driver.GetSchemaStatements(w.store.Provider())
	results := make([]SchemaResult, 0, len(stmts))
	for _, st := range stmts {
		res := SchemaResult{Name: st.Name, Kind: st.Kind}
		if err := ctx.Err(); err != nil {
			res.Outcome, res.Err = OutcomeFailed, err
			results = append(results, res)
			continue
		}

		c, err := w.store.RunSchema(ctx, st.Cypher)
		res.Outcome, res.Err = classifySchema(c, err)
		results = append(results, res)

		switch res.Outcome {
		case OutcomeCreated, OutcomeAlreadyExists:
			w.logger.Info("Schema rule ready",
				"name", st.Name,
				"kind", string(st.Kind),
				"outcome", res.Outcome.String())
		default:
			w.logger.Warn("Schema rule not applied",
				"name", st.Name,
				"kind", string(st.Kind),
				"outcome", res.Outcome.String(),
				"error", err)
		}
	}

	counts := CountOutcomes(results)
	w.logger.Info("Schema ensured",
		"created", counts[OutcomeCreated],
		"already_exists", counts[OutcomeAlreadyExists],
		"unsupported", counts[OutcomeUnsupported],
		"failed", counts[OutcomeFailed])
	return results
}

func classifySchema(c driver.Counters, err error) (Outcome, error) {
	switch {
	case err == nil && c.SchemaAdded():
		return OutcomeCreated, nil
	case err == nil:
		return OutcomeAlreadyExists, nil
	case driver.IsAlreadyExists(err):
		return OutcomeAlreadyExists, nil
	case driver.IsUnsupported(err):
		return OutcomeUnsupported, err
	default:
		return OutcomeFailed, err
	}
}

// CountOutcomes tallies results by outcome.
func CountOutcomes(results []SchemaResult) map[Outcome]int {
	out := make(map[Outcome]int, 4)
	for _, r := range results {
		out[r.Outcome]++
	}
	return out
}
