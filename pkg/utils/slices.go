package utils

// ChunkSlice splits a slice into consecutive chunks of at most chunkSize
// elements. The chunks share the backing array of slice.
func ChunkSlice[T any](slice []T, chunkSize int) [][]T {
	if len(slice) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		return [][]T{slice}
	}

	chunks := make([][]T, 0, (len(slice)+chunkSize-1)/chunkSize)
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end:end])
	}
	return chunks
}

// DedupeBy removes elements whose key was already seen while preserving
// order. Elements with an empty key are dropped.
func DedupeBy[T any](items []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// RemoveDuplicateStrings removes empty and duplicate strings from a slice
// while preserving order.
func RemoveDuplicateStrings(slice []string) []string {
	return DedupeBy(slice, func(s string) string { return s })
}
