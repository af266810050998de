// internal/workers/discovery/author-queries/handler_test.go
package authorqueries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectorgen/internal/common/logger"
	"connectorgen/internal/generation"
)

type fakeStep struct {
	text string
	err  error
	last generation.StepRequest
}

func (f *fakeStep) Step(ctx context.Context, req generation.StepRequest) (string, error) {
	f.last = req
	return f.text, f.err
}

func newTestHandler(t *testing.T, step generation.StepInvoker) *Handler {
	return NewHandler(&Config{Timeout: 10 * time.Second, MaxQueries: 5}, step, logger.NewTestLogger(t))
}

func TestHandler_Execute_LLMAuthoredQueries(t *testing.T) {
	step := &fakeStep{text: `["acme scim api docs", "acme user provisioning api"]`}
	handler := newTestHandler(t, step)

	output := handler.Execute(context.Background(), &Input{
		SessionID:   "s1",
		ServiceName: "Acme",
		ObjectClass: "User",
	})

	assert.Equal(t, []string{"acme scim api docs", "acme user provisioning api"}, output.Queries)
	assert.Equal(t, "User", step.last.ObjectClass)
	assert.Contains(t, step.last.UserPrompt, "Acme")
}

func TestHandler_Execute_NewlineSeparatedOutput(t *testing.T) {
	step := &fakeStep{text: "- acme api docs\n\n- acme rest reference\n- acme api docs\n"}
	handler := newTestHandler(t, step)

	output := handler.Execute(context.Background(), &Input{ServiceName: "Acme"})
	assert.Equal(t, []string{"acme api docs", "acme rest reference"}, output.Queries,
		"blank lines and duplicates dropped")
}

func TestHandler_Execute_TemplateFallback(t *testing.T) {
	tests := []struct {
		name string
		step *fakeStep
	}{
		{"LLM call fails", &fakeStep{err: errors.New("model unavailable")}},
		{"empty response", &fakeStep{text: "   "}},
		{"unparsable JSON array", &fakeStep{text: `[{"broken": true`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, tt.step)
			output := handler.Execute(context.Background(), &Input{
				ServiceName: "Acme",
				ObjectClass: "User",
			})

			require.NotEmpty(t, output.Queries, "templates guarantee a usable query list")
			assert.Contains(t, output.Queries, "Acme API documentation")
			assert.Contains(t, output.Queries, "Acme API User endpoints")
		})
	}
}

func TestHandler_Execute_CapsQueryCount(t *testing.T) {
	step := &fakeStep{text: `["q1","q2","q3","q4"]`}
	handler := newTestHandler(t, step)

	output := handler.Execute(context.Background(), &Input{
		ServiceName: "Acme",
		MaxQueries:  2,
	})
	assert.Equal(t, []string{"q1", "q2"}, output.Queries)
}
