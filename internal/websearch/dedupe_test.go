// internal/websearch/dedupe_test.go
package websearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe_FirstSeenWins(t *testing.T) {
	batches := []SearchBatch{
		{
			Query: "acme api docs",
			Results: []SearchResult{
				{Title: "tracked", Href: "https://x.com/a?utm_source=x"},
				{Title: "other", Href: "https://x.com/b"},
			},
		},
		{
			Query: "acme rest reference",
			Results: []SearchResult{
				{Title: "clean", Href: "https://x.com/a"},
				{Title: "third", Href: "https://x.com/c"},
			},
		},
	}

	links := Dedupe(batches)
	require.Len(t, links, 3)

	assert.Equal(t, "tracked", links[0].Title)
	assert.Equal(t, "acme api docs", links[0].Query)
	assert.Equal(t, "https://x.com/b", links[1].Href)
	assert.Equal(t, "https://x.com/c", links[2].Href)
	assert.Equal(t, "acme rest reference", links[2].Query)
}

func TestDedupe_SkipsBlankHrefs(t *testing.T) {
	batches := []SearchBatch{
		{
			Query: "q",
			Results: []SearchResult{
				{Title: "blank", Href: "   "},
				{Title: "kept", Href: "https://x.com/a"},
			},
		},
	}

	links := Dedupe(batches)
	require.Len(t, links, 1)
	assert.Equal(t, "kept", links[0].Title)
}

func TestDedupe_OutputOrderIsDeterministic(t *testing.T) {
	batches := []SearchBatch{
		{Query: "q1", Results: []SearchResult{
			{Href: "https://x.com/1"},
			{Href: "https://x.com/2"},
		}},
		{Query: "q2", Results: []SearchResult{
			{Href: "https://x.com/2"},
			{Href: "https://x.com/3"},
		}},
	}

	links := Dedupe(batches)
	require.Len(t, links, 3)
	assert.Equal(t, "https://x.com/1", links[0].Href)
	assert.Equal(t, "https://x.com/2", links[1].Href)
	assert.Equal(t, "q1", links[1].Query)
	assert.Equal(t, "https://x.com/3", links[2].Href)
}

func TestDedupe_EmptyInput(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
	assert.Empty(t, Dedupe([]SearchBatch{{Query: "q", Results: nil}}))
}
