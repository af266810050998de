// internal/chunkstore/elasticsearch.go
package chunkstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"connectorgen/internal/common/errors"
	"connectorgen/internal/common/logger"
	"connectorgen/internal/relevance"
)

// Chunk is one indexed documentation chunk. Chunks are written by the
// ingestion pipeline; this store only reads them.
type Chunk struct {
	SessionID  string `json:"sessionId"`
	ChunkIndex int    `json:"chunkIndex"`
	DocID      string `json:"docId,omitempty"`
	Text       string `json:"text"`
}

// Store reads documentation chunks for a session from Elasticsearch.
type Store struct {
	es    *elasticsearch.Client
	index string
	log   logger.Logger
}

func NewStore(es *elasticsearch.Client, index string, log logger.Logger) *Store {
	return &Store{es: es, index: index, log: log}
}

// searchResponse is the subset of the ES search envelope this store reads.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source Chunk `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// AllChunks returns every chunk of the session's document in chunk-index
// order. This is the fold input on the no-relevance-signal fallback path.
func (s *Store) AllChunks(ctx context.Context, sessionID string) ([]string, error) {
	chunks, err := s.fetchSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	return texts, nil
}

// ChunksFor resolves merged relevance references to chunk texts, preserving
// reference order. A reference with a document id resolves by id, a bare
// reference by chunk index. References that resolve to nothing are skipped
// with a warning rather than failing the whole fetch.
func (s *Store) ChunksFor(ctx context.Context, sessionID string, refs []relevance.ChunkRef) ([]string, error) {
	chunks, err := s.fetchSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	byIndex := make(map[int]Chunk, len(chunks))
	byDocID := make(map[string]Chunk, len(chunks))
	for _, c := range chunks {
		byIndex[c.ChunkIndex] = c
		if c.DocID != "" {
			byDocID[c.DocID] = c
		}
	}

	texts := make([]string, 0, len(refs))
	for _, ref := range refs {
		var chunk Chunk
		var found bool
		if ref.DocID != "" {
			chunk, found = byDocID[ref.DocID]
		} else {
			chunk, found = byIndex[ref.Index]
		}
		if !found {
			s.log.Warn("Relevance reference matches no indexed chunk", map[string]interface{}{
				"sessionId": sessionID,
				"index":     ref.Index,
				"docId":     ref.DocID,
			})
			continue
		}
		texts = append(texts, chunk.Text)
	}
	return texts, nil
}

func (s *Store) fetchSession(ctx context.Context, sessionID string) ([]Chunk, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"sessionId": sessionID,
			},
		},
		"sort": []map[string]interface{}{
			{"chunkIndex": map[string]interface{}{"order": "asc"}},
		},
		"size": 10000,
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.NewChunkFetchFailedError(err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return nil, errors.NewChunkFetchFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewChunkFetchFailedError(
			fmt.Errorf("chunk search returned %s", res.Status()),
		)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewChunkFetchFailedError(err)
	}

	chunks := make([]Chunk, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		chunks = append(chunks, hit.Source)
	}
	return chunks, nil
}
