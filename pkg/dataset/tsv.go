package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NA is the missing-value sentinel of the IMDb dumps.
const NA = `\N`

const (
	maxLineSize = 8 * 1024 * 1024

	// ctxCheckInterval is how many rows are read between context checks.
	ctxCheckInterval = 1024
)

// row gives typed access to the fields of one line. The first conversion
// failure is kept in err and later accessors become no-ops.
type row struct {
	table  Table
	line   int
	index  map[string]int
	fields []string
	err    error
}

func (r *row) raw(col string) string {
	return r.fields[r.index[col]]
}

func (r *row) fail(col string, err error) {
	if r.err == nil {
		r.err = &RowError{Dataset: r.table, Line: r.line, Column: col, Err: err}
	}
}

// str returns a required text field.
func (r *row) str(col string) string {
	v := r.raw(col)
	if v == NA || v == "" {
		r.fail(col, ErrMissingValue)
		return ""
	}
	return v
}

// optStr returns nil for NA.
func (r *row) optStr(col string) *string {
	v := r.raw(col)
	if v == NA {
		return nil
	}
	return &v
}

func (r *row) integer(col string) int {
	v := r.raw(col)
	if v == NA || v == "" {
		r.fail(col, ErrMissingValue)
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(col, err)
		return 0
	}
	return n
}

// optInt returns nil for NA and for values that are not integers.
func (r *row) optInt(col string) *int {
	v := r.raw(col)
	if v == NA || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func (r *row) float(col string) float64 {
	v := r.raw(col)
	if v == NA || v == "" {
		r.fail(col, ErrMissingValue)
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(col, err)
		return 0
	}
	return f
}

// list splits a comma-delimited field. NA and empty yield nil.
func (r *row) list(col string) []string {
	v := r.raw(col)
	if v == NA || v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && p != NA {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// layout describes one dataset: its required columns and row decoder.
type layout[T any] struct {
	table   Table
	columns []string
	decode  func(*row) T
}

// scan streams every data row of the dataset through fn.
func scan[T any](ctx context.Context, src Source, l layout[T], fn func(T) error) error {
	rc, err := src.Open(ctx, l.table)
	if err != nil {
		var acq *AcquisitionError
		if errors.As(err, &acq) {
			return err
		}
		return &AcquisitionError{Dataset: l.table, Err: err}
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return &AcquisitionError{Dataset: l.table, Err: err}
		}
		return &SchemaError{Dataset: l.table, Missing: l.columns}
	}
	header := strings.Split(strings.TrimSuffix(sc.Text(), "\r"), "\t")
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	var missing []string
	for _, c := range l.columns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Dataset: l.table, Missing: missing}
	}

	r := &row{table: l.table, index: index, line: 1}
	for sc.Scan() {
		r.line++
		if r.line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		text := strings.TrimSuffix(sc.Text(), "\r")
		if text == "" {
			continue
		}
		r.fields = strings.Split(text, "\t")
		r.err = nil
		if len(r.fields) != len(header) {
			return &RowError{
				Dataset: l.table,
				Line:    r.line,
				Err:     fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(r.fields), len(header)),
			}
		}

		rec := l.decode(r)
		if r.err != nil {
			return r.err
		}
		if err := fn(rec); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return &RowError{Dataset: l.table, Line: r.line + 1, Err: err}
	}
	return ctx.Err()
}
