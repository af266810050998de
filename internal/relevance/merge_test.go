// internal/relevance/merge_test.go
package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge_OrderPreservation(t *testing.T) {
	a := []ChunkRef{{Index: 0}, {Index: 1}}
	b := []ChunkRef{{Index: 0, DocID: "u1"}, {Index: 2}}

	merged := Merge(a, b)
	assert.Equal(t, []ChunkRef{
		{Index: 0},
		{Index: 1},
		{Index: 0, DocID: "u1"},
		{Index: 2},
	}, merged, "same index with a different doc id is a distinct reference")
}

func TestMerge_Idempotence(t *testing.T) {
	a := []ChunkRef{{Index: 0}, {Index: 1}}
	b := []ChunkRef{{Index: 1}, {Index: 2}}

	once := Merge(a, b)
	assert.Equal(t, once, Merge(once), "merging already-deduplicated input is a no-op")
}

func TestMerge_SelfMergeDeduplicates(t *testing.T) {
	a := []ChunkRef{{Index: 3}, {Index: 0}, {Index: 3}}
	assert.Equal(t, []ChunkRef{{Index: 3}, {Index: 0}}, Merge(a, a))
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge())
	assert.Empty(t, Merge(nil, nil))
	assert.Empty(t, Merge([]ChunkRef{}, []ChunkRef{}))
}
