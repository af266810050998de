// internal/generation/step_test.go
package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectorgen/internal/common/config"
	"connectorgen/internal/common/logger"
)

func newStepServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *StepClient) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewStepClient(config.GenAIConfig{
		BaseURL:          srv.URL,
		APIKey:           "key",
		StepParseRetries: 2,
	}, logger.NewTestLogger(t))
	return srv, client
}

func TestStepClient_Success(t *testing.T) {
	_, client := newStepServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req StepRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "User", req.ObjectClass)
		assert.Equal(t, "prev", req.PreviousResult)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"text": "  result  "}`))
	})

	text, err := client.Step(context.Background(), StepRequest{
		ObjectClass:    "User",
		PreviousResult: "prev",
	})
	require.NoError(t, err)
	assert.Equal(t, "result", text, "step output is trimmed")
}

func TestStepClient_UnparsableResponseDegradesToNoNewInfo(t *testing.T) {
	var calls atomic.Int32
	_, client := newStepServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("not json"))
	})

	text, err := client.Step(context.Background(), StepRequest{ObjectClass: "User"})
	require.NoError(t, err, "exhausted parse retries are not an error")
	assert.Empty(t, text)
	assert.EqualValues(t, 3, calls.Load(), "one attempt plus two parse retries")
}

func TestStepClient_ServerErrorDegradesToNoNewInfo(t *testing.T) {
	_, client := newStepServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	text, err := client.Step(context.Background(), StepRequest{ObjectClass: "User"})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestStepClient_CancelledContextIsAnError(t *testing.T) {
	_, client := newStepServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "x"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Step(ctx, StepRequest{ObjectClass: "User"})
	assert.ErrorIs(t, err, context.Canceled)
}
