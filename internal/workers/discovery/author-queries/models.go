// internal/workers/discovery/author-queries/models.go
package authorqueries

// Input names the service whose API documentation discovery should find.
type Input struct {
	SessionID   string `json:"sessionId"`
	ServiceName string `json:"serviceName"`
	ObjectClass string `json:"objectClass,omitempty"`
	MaxQueries  int    `json:"maxQueries,omitempty"`
}

// Output is the ordered candidate query list handed to discovery.
type Output struct {
	Queries []string `json:"queries"`
}
