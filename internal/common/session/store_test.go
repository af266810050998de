// internal/common/session/store_test.go
package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client), mr
}

func TestStore_GetSessionData(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	mr.HSet("session:s1", "relevantChunks", `{"UserEndpointsOutput":[0,2]}`)

	t.Run("present field", func(t *testing.T) {
		raw, found, err := store.GetSessionData(ctx, "s1", "relevantChunks")
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `{"UserEndpointsOutput":[0,2]}`, string(raw))
	})

	t.Run("absent field", func(t *testing.T) {
		raw, found, err := store.GetSessionData(ctx, "s1", "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, raw)
	})

	t.Run("absent session", func(t *testing.T) {
		_, found, err := store.GetSessionData(ctx, "nope", "relevantChunks")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestRelevantChunks(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	t.Run("decodes per-signal payloads", func(t *testing.T) {
		mr.HSet("session:s2", "relevantChunks",
			`{"UserEndpointsOutput":[0,1],"UserAttributesOutput":[{"docId":"u1"}],"relationsOutput":[3]}`)

		signals := RelevantChunks(ctx, store, "s2")
		assert.Len(t, signals, 3)
		assert.JSONEq(t, `[0,1]`, string(signals["UserEndpointsOutput"]))
	})

	t.Run("missing field yields empty map", func(t *testing.T) {
		signals := RelevantChunks(ctx, store, "empty-session")
		assert.NotNil(t, signals)
		assert.Empty(t, signals)
	})

	t.Run("undecodable payload yields empty map", func(t *testing.T) {
		mr.HSet("session:s3", "relevantChunks", `not json`)
		signals := RelevantChunks(ctx, store, "s3")
		assert.Empty(t, signals)
	})
}

func TestSignalNames(t *testing.T) {
	assert.Equal(t, "UserEndpointsOutput", EndpointsSignalName("User"))
	assert.Equal(t, "GroupAttributesOutput", AttributesSignalName("Group"))
	assert.Equal(t, "relationsOutput", RelationsSignalName)
}
