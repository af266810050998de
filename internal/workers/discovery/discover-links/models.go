// internal/workers/discovery/discover-links/models.go
package discoverlinks

import "connectorgen/internal/websearch"

// Input is the job variable payload for one discovery run. Queries are
// executed in submission order.
type Input struct {
	SessionID  string   `json:"sessionId"`
	Queries    []string `json:"queries"`
	Backend    string   `json:"backend,omitempty"`
	MaxResults int      `json:"maxResults,omitempty"`
}

// Output carries the deduplicated candidate link set: the bare hrefs for
// cheap downstream consumption and the enriched records with query
// attribution.
type Output struct {
	CandidateLinks         []string                 `json:"candidateLinks"`
	CandidateLinksEnriched []websearch.EnrichedLink `json:"candidateLinksEnriched"`
}
