package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkSlice(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{"empty", nil, 3, nil},
		{"exact", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"remainder", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"larger than input", []int{1, 2}, 500, [][]int{{1, 2}}},
		{"non positive size", []int{1, 2}, 0, [][]int{{1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChunkSlice(tt.items, tt.size))
		})
	}
}

func TestChunkSliceCapacity(t *testing.T) {
	chunks := ChunkSlice([]int{1, 2, 3, 4}, 2)
	// Appending to a chunk must not overwrite the next one.
	_ = append(chunks[0], 99)
	assert.Equal(t, []int{3, 4}, chunks[1])
}

func TestDedupeBy(t *testing.T) {
	type person struct{ id, name string }
	people := []person{{"nm2", "B"}, {"", "blank"}, {"nm1", "A"}, {"nm2", "B again"}}

	got := DedupeBy(people, func(p person) string { return p.id })
	assert.Equal(t, []person{{"nm2", "B"}, {"nm1", "A"}}, got)

	assert.Equal(t, []string{"Drama", "Crime"}, RemoveDuplicateStrings([]string{"Drama", "", "Crime", "Drama"}))
	assert.Empty(t, RemoveDuplicateStrings(nil))
}
