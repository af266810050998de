// internal/workers/generation/generate-artifact/models.go
package generateartifact

import "encoding/json"

// Input is the job variable payload for one artifact generation run.
// Attributes and Endpoints arrive in whatever shape the extraction pipeline
// produced; normalization happens here, not upstream.
type Input struct {
	SessionID   string          `json:"sessionId"`
	ObjectClass string          `json:"objectClass"`
	Operation   string          `json:"operation"`
	Protocol    string          `json:"protocol,omitempty"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
	Endpoints   json.RawMessage `json:"endpoints,omitempty"`
	SeedResult  string          `json:"seedResult,omitempty"`
}

// Output carries the generated artifact text.
type Output struct {
	Code string `json:"code"`
}
