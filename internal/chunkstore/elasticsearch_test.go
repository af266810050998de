// internal/chunkstore/elasticsearch_test.go
package chunkstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectorgen/internal/common/logger"
	"connectorgen/internal/relevance"
)

func newTestStore(t *testing.T, chunks []Chunk) *Store {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		hits := make([]map[string]interface{}, 0, len(chunks))
		for _, c := range chunks {
			hits = append(hits, map[string]interface{}{"_source": c})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{"hits": hits},
		})
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewStore(es, "doc-chunks", logger.NewTestLogger(t))
}

func sessionChunks() []Chunk {
	return []Chunk{
		{SessionID: "s1", ChunkIndex: 0, Text: "chunk zero"},
		{SessionID: "s1", ChunkIndex: 1, DocID: "u1", Text: "chunk one"},
		{SessionID: "s1", ChunkIndex: 2, Text: "chunk two"},
	}
}

func TestAllChunks(t *testing.T) {
	store := newTestStore(t, sessionChunks())

	texts, err := store.AllChunks(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"chunk zero", "chunk one", "chunk two"}, texts)
}

func TestChunksFor_ResolvesInReferenceOrder(t *testing.T) {
	store := newTestStore(t, sessionChunks())

	texts, err := store.ChunksFor(context.Background(), "s1", []relevance.ChunkRef{
		{Index: 2},
		{Index: 0, DocID: "u1"},
		{Index: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"chunk two", "chunk one", "chunk zero"}, texts,
		"doc-id references resolve by id, bare references by index")
}

func TestChunksFor_SkipsUnresolvableReferences(t *testing.T) {
	store := newTestStore(t, sessionChunks())

	texts, err := store.ChunksFor(context.Background(), "s1", []relevance.ChunkRef{
		{Index: 0},
		{Index: 99},
		{Index: 0, DocID: "missing"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"chunk zero"}, texts)
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	store := NewStore(es, "doc-chunks", logger.NewTestLogger(t))

	_, err = store.AllChunks(context.Background(), "s1")
	assert.Error(t, err)
}
