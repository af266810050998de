// internal/relevance/merge.go
package relevance

// Merge concatenates chunk-reference sequences in argument order and keeps
// the first occurrence of each distinct (Index, DocID) pair, preserving the
// relative order of first occurrences. An all-empty merge returns an empty
// list; falling back to the whole document in that case is the caller's
// documented policy, not enforced here.
func Merge(sequences ...[]ChunkRef) []ChunkRef {
	seen := make(map[ChunkRef]struct{})
	merged := make([]ChunkRef, 0)

	for _, seq := range sequences {
		for _, ref := range seq {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			merged = append(merged, ref)
		}
	}
	return merged
}
