// internal/workers/discovery/discover-links/handler.go
package discoverlinks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"connectorgen/internal/common/logger"
	"connectorgen/internal/common/metrics"
	"connectorgen/internal/websearch"
)

const TaskType = "discover-links"

// Searcher runs one batch of discovery queries. websearch.Client satisfies
// this; the search layer never surfaces errors, so neither does this worker
// past input parsing.
type Searcher interface {
	RunQueries(ctx context.Context, queries []string, backend string, maxResults int) []websearch.SearchBatch
}

type Handler struct {
	config   *Config
	searcher Searcher
	logger   logger.Logger
}

func NewHandler(config *Config, searcher Searcher, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		searcher: searcher,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output := h.execute(ctx, &input)

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(started).Seconds())
	h.completeJob(client, job, output)
}

// execute runs the queries sequentially and merges all batches into the
// deduplicated candidate set. Failed queries contribute empty batches, so
// the output is always well-formed, possibly empty.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	backend := input.Backend
	if backend == "" {
		backend = h.config.DefaultBackend
	}

	batches := h.searcher.RunQueries(ctx, input.Queries, backend, input.MaxResults)
	links := websearch.Dedupe(batches)

	hrefs := make([]string, 0, len(links))
	for _, link := range links {
		hrefs = append(hrefs, link.Href)
	}

	h.logger.Info("discovery complete", map[string]interface{}{
		"sessionId":      input.SessionID,
		"queries":        len(input.Queries),
		"candidateLinks": len(hrefs),
	})

	return &Output{
		CandidateLinks:         hrefs,
		CandidateLinksEnriched: links,
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Execute exposes the core pipeline for tests.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
