// internal/generation/step.go
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"connectorgen/internal/common/config"
	"connectorgen/internal/common/logger"
)

// StepRequest carries everything one generation step sees: the resolved
// prompt pair, the structured evidence, the current chunk, and the previous
// best result it is asked to extend or repair. ObjectClass is passed through
// to every step unmodified.
type StepRequest struct {
	SystemPrompt   string `json:"systemPrompt"`
	UserPrompt     string `json:"userPrompt"`
	EvidenceJSON   string `json:"evidenceJson"`
	ChunkText      string `json:"chunkText"`
	PreviousResult string `json:"previousResult"`
	ObjectClass    string `json:"objectClass"`
	Operation      string `json:"operation"`
}

// StepInvoker is the external generation collaborator. An empty returned
// text means "no new information"; implementations reserve errors for
// failures the fold cannot interpret locally (cancelled context).
type StepInvoker interface {
	Step(ctx context.Context, req StepRequest) (string, error)
}

// StepClient invokes the GenAI collaborator over HTTP. Response decode
// failures get a small fixed number of repair retries; a still-unparsable
// response is treated as "no new information" rather than an error, so the
// fold always carries the previous result forward.
type StepClient struct {
	baseURL      string
	apiKey       string
	parseRetries int
	httpClient   *http.Client
	log          logger.Logger
}

func NewStepClient(cfg config.GenAIConfig, log logger.Logger) *StepClient {
	parseRetries := cfg.StepParseRetries
	if parseRetries <= 0 {
		parseRetries = 2
	}
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &StepClient{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		parseRetries: parseRetries,
		httpClient:   &http.Client{Timeout: timeout},
		log:          log,
	}
}

type stepResponse struct {
	Text string `json:"text"`
}

// Step performs the POST and returns the candidate text. All failure modes
// short of context cancellation degrade to ("", nil) after the retry budget
// is spent.
func (c *StepClient) Step(ctx context.Context, req StepRequest) (string, error) {
	attempts := c.parseRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		text, err := c.invoke(ctx, req)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.log.WithError(err).Warn("Generation step attempt failed", map[string]interface{}{
			"attempt":     attempt,
			"objectClass": req.ObjectClass,
			"operation":   req.Operation,
		})
	}

	c.log.Error("Generation step retries exhausted, carrying previous result forward", map[string]interface{}{
		"objectClass": req.ObjectClass,
		"operation":   req.Operation,
		"attempts":    attempts,
	})
	return "", nil
}

func (c *StepClient) invoke(ctx context.Context, req StepRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal step request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build step request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("step request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("step returned status %d", resp.StatusCode)
	}

	var body stepResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode step response: %w", err)
	}
	return strings.TrimSpace(body.Text), nil
}
