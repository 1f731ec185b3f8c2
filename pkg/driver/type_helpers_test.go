package driver

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeConversionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *TypeConversionError
		expected string
	}{
		{
			name:     "with field",
			err:      &TypeConversionError{Expected: "string", Actual: "int64", Field: "title"},
			expected: `type conversion error for field "title": expected string, got int64`,
		},
		{
			name:     "without field",
			err:      &TypeConversionError{Expected: "[]*db.Record", Actual: "<nil>"},
			expected: "type conversion error: expected []*db.Record, got <nil>",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAsString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		want   string
		wantOK bool
	}{
		{"valid string", "hello", "hello", true},
		{"empty string", "", "", true},
		{"nil", nil, "", false},
		{"int", 42, "", false},
		{"float", 3.14, "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AsString(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		want   int64
		wantOK bool
	}{
		{"int64", int64(1994), 1994, true},
		{"int", 142, 142, true},
		{"int32", int32(7), 7, true},
		{"float", 9.3, 0, false},
		{"string", "1994", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AsInt64(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsFloat64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{"float64", 9.3, 9.3, true},
		{"float32", float32(0.5), 0.5, true},
		{"int64", int64(8), 8, true},
		{"string", "9.3", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AsFloat64(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAsMapAndSlice(t *testing.T) {
	t.Parallel()

	m, ok := AsMap(map[string]any{"id": "nm1"})
	require.True(t, ok)
	assert.Equal(t, "nm1", m["id"])

	_, ok = AsMap(nil)
	assert.False(t, ok)

	s, ok := AsAnySlice([]any{"Drama", nil})
	require.True(t, ok)
	assert.Len(t, s, 2)

	_, ok = AsAnySlice([]string{"Drama"})
	assert.False(t, ok)
}

func TestMustHelpers(t *testing.T) {
	t.Parallel()

	_, err := MustInt64("7", "count")
	var tce *TypeConversionError
	require.ErrorAs(t, err, &tce)
	assert.Equal(t, "count", tce.Field)
	assert.Equal(t, "string", tce.Actual)

	n, err := MustInt64(int64(3), "count")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	recs, err := MustRecordSlice([]*db.Record{{Keys: []string{"count"}, Values: []any{int64(1)}}}, "records")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = MustRecordSlice("nope", "records")
	assert.Error(t, err)
}

func TestRecordAccessors(t *testing.T) {
	t.Parallel()

	rec := Record{
		"title":   "The Shawshank Redemption",
		"year":    int64(1994),
		"rating":  9.3,
		"plot":    nil,
		"count":   "x",
		"runtime": 142,
	}

	require.NotNil(t, rec.OptString("title"))
	assert.Nil(t, rec.OptString("plot"))
	assert.Nil(t, rec.OptString("missing"))

	require.NotNil(t, rec.OptInt64("year"))
	assert.Equal(t, int64(1994), *rec.OptInt64("year"))
	assert.Equal(t, int64(142), *rec.OptInt64("runtime"))
	assert.Nil(t, rec.OptInt64("plot"))

	require.NotNil(t, rec.OptFloat64("rating"))
	assert.InDelta(t, 9.3, *rec.OptFloat64("rating"), 1e-9)

	_, err := rec.Int64("count")
	assert.Error(t, err)
}
