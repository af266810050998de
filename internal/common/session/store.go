// internal/common/session/store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RelevantChunksKey is the session field holding per-signal relevance data.
const RelevantChunksKey = "relevantChunks"

// Signal name suffixes within the relevantChunks mapping. Endpoint and
// attribute signals are prefixed with the object class name; the relations
// signal is global.
const (
	EndpointsSignalSuffix  = "EndpointsOutput"
	AttributesSignalSuffix = "AttributesOutput"
	RelationsSignalName    = "relationsOutput"
)

// Reader is the narrow read interface the pipelines see. The core never
// writes session data.
type Reader interface {
	GetSessionData(ctx context.Context, sessionID, key string) (json.RawMessage, bool, error)
}

// Store reads session data from a redis hash per session.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// GetSessionData returns the raw JSON stored under key for the session,
// with found=false (and no error) when the field is absent.
func (s *Store) GetSessionData(ctx context.Context, sessionID, key string) (json.RawMessage, bool, error) {
	val, err := s.client.HGet(ctx, sessionKey(sessionID), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("session read %s/%s: %w", sessionID, key, err)
	}
	return json.RawMessage(val), true, nil
}

// RelevantChunks decodes the relevantChunks field into its per-signal raw
// payloads. A missing field or an undecodable payload yields an empty map:
// relevance is a hint, never a hard dependency.
func RelevantChunks(ctx context.Context, r Reader, sessionID string) map[string]json.RawMessage {
	raw, found, err := r.GetSessionData(ctx, sessionID, RelevantChunksKey)
	if err != nil || !found {
		return map[string]json.RawMessage{}
	}

	var signals map[string]json.RawMessage
	if err := json.Unmarshal(raw, &signals); err != nil {
		return map[string]json.RawMessage{}
	}
	return signals
}

// EndpointsSignalName returns the session signal name carrying endpoint
// relevance for an object class.
func EndpointsSignalName(objectClass string) string {
	return objectClass + EndpointsSignalSuffix
}

// AttributesSignalName returns the session signal name carrying attribute
// relevance for an object class.
func AttributesSignalName(objectClass string) string {
	return objectClass + AttributesSignalSuffix
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
