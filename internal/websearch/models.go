// internal/websearch/models.go
package websearch

// SearchResult is one normalized hit from a search backend. Href is the
// dedup and display key.
type SearchResult struct {
	Title   string `json:"title"`
	Href    string `json:"href"`
	Body    string `json:"body"`
	Backend string `json:"backend"`
}

// SearchBatch holds the ordered results of one executed query.
type SearchBatch struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// EnrichedLink is a kept search result plus the query that produced it.
type EnrichedLink struct {
	SearchResult
	Query string `json:"query"`
}
