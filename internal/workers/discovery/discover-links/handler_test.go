// internal/workers/discovery/discover-links/handler_test.go
package discoverlinks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectorgen/internal/common/config"
	"connectorgen/internal/common/logger"
	"connectorgen/internal/websearch"
)

type fakeSearcher struct {
	batches []websearch.SearchBatch
	queries []string
	backend string
}

func (f *fakeSearcher) RunQueries(ctx context.Context, queries []string, backend string, maxResults int) []websearch.SearchBatch {
	f.queries = queries
	f.backend = backend
	return f.batches
}

func newTestHandler(t *testing.T, searcher Searcher) *Handler {
	return NewHandler(&Config{Timeout: 10 * time.Second, DefaultBackend: "api"}, searcher, logger.NewTestLogger(t))
}

func TestHandler_Execute_DedupesAcrossBatches(t *testing.T) {
	searcher := &fakeSearcher{batches: []websearch.SearchBatch{
		{Query: "acme api docs", Results: []websearch.SearchResult{
			{Title: "Docs", Href: "https://x.com/a?utm_source=x"},
			{Title: "Ref", Href: "https://x.com/b"},
		}},
		{Query: "acme rest reference", Results: []websearch.SearchResult{
			{Title: "Dup", Href: "https://x.com/a"},
			{Title: "New", Href: "https://x.com/c"},
		}},
	}}

	handler := newTestHandler(t, searcher)
	output := handler.Execute(context.Background(), &Input{
		SessionID: "s1",
		Queries:   []string{"acme api docs", "acme rest reference"},
	})

	assert.Equal(t, []string{"https://x.com/a?utm_source=x", "https://x.com/b", "https://x.com/c"},
		output.CandidateLinks, "first-seen record wins across batches")

	require.Len(t, output.CandidateLinksEnriched, 3)
	assert.Equal(t, "acme api docs", output.CandidateLinksEnriched[0].Query)
	assert.Equal(t, "acme rest reference", output.CandidateLinksEnriched[2].Query)
}

func TestHandler_Execute_DefaultBackend(t *testing.T) {
	searcher := &fakeSearcher{}
	handler := newTestHandler(t, searcher)

	handler.Execute(context.Background(), &Input{Queries: []string{"q"}})
	assert.Equal(t, "api", searcher.backend)

	handler.Execute(context.Background(), &Input{Queries: []string{"q"}, Backend: "meta"})
	assert.Equal(t, "meta", searcher.backend)
}

func TestHandler_Execute_EmptyResultsAreWellFormed(t *testing.T) {
	handler := newTestHandler(t, &fakeSearcher{})

	output := handler.Execute(context.Background(), &Input{SessionID: "s1", Queries: []string{"q1", "q2"}})
	assert.NotNil(t, output)
	assert.Empty(t, output.CandidateLinks)
	assert.Empty(t, output.CandidateLinksEnriched)
}

// End to end against a real search client: one rate-limited query that
// recovers, one that succeeds immediately.
func TestHandler_Execute_WithSearchClient(t *testing.T) {
	rateLimited := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "q1" && rateLimited {
			rateLimited = false
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"web":{"results":[{"title":"T","url":"https://x.com/` +
			r.URL.Query().Get("q") + `","description":"d"}]}}`))
	}))
	defer srv.Close()

	client := websearch.NewClient(config.WebSearchConfig{
		BaseURL:          srv.URL,
		APIKey:           "secret",
		JitterMaxSeconds: 0,
	}, logger.NewTestLogger(t))

	handler := newTestHandler(t, client)
	output := handler.Execute(context.Background(), &Input{
		SessionID: "s1",
		Queries:   []string{"q1", "q2"},
	})

	assert.Equal(t, []string{"https://x.com/q1", "https://x.com/q2"}, output.CandidateLinks)
}
