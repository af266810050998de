// internal/websearch/dedupe.go
package websearch

import "strings"

// Dedupe merges ordered result batches into one ordered list of enriched
// links. Batches are walked in the given order, results within a batch in
// their given order; results with a blank href are skipped; the first result
// per canonical URL key wins and later occurrences are dropped, never
// replaced. Each kept link carries the query that produced it.
func Dedupe(batches []SearchBatch) []EnrichedLink {
	seen := make(map[string]struct{})
	links := make([]EnrichedLink, 0)

	for _, batch := range batches {
		for _, result := range batch.Results {
			if strings.TrimSpace(result.Href) == "" {
				continue
			}
			key := Canonicalize(result.Href)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			links = append(links, EnrichedLink{SearchResult: result, Query: batch.Query})
		}
	}
	return links
}
