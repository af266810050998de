// internal/workers/discovery/author-queries/handler.go
package authorqueries

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"connectorgen/internal/common/logger"
	"connectorgen/internal/common/metrics"
	"connectorgen/internal/generation"
)

const TaskType = "author-queries"

const authorSystemPrompt = "You write web search queries that locate official API documentation. " +
	"Return a JSON array of query strings, most specific first."

type Handler struct {
	config *Config
	step   generation.StepInvoker
	logger logger.Logger
}

func NewHandler(config *Config, step generation.StepInvoker, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		step:   step,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

// execute asks the generation collaborator to author the queries and falls
// back to deterministic templates when the call fails or its output cannot
// be parsed. Discovery always gets a usable query list.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	maxQueries := input.MaxQueries
	if maxQueries <= 0 {
		maxQueries = h.config.MaxQueries
	}

	queries := h.authorWithLLM(ctx, input)
	if len(queries) == 0 {
		h.logger.Warn("LLM query authoring unavailable, using templates", map[string]interface{}{
			"sessionId":   input.SessionID,
			"serviceName": input.ServiceName,
		})
		queries = templateQueries(input)
	}

	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	return &Output{Queries: queries}
}

func (h *Handler) authorWithLLM(ctx context.Context, input *Input) []string {
	userPrompt := fmt.Sprintf("Service: %s", input.ServiceName)
	if input.ObjectClass != "" {
		userPrompt += fmt.Sprintf("\nObject class: %s", input.ObjectClass)
	}

	text, err := h.step.Step(ctx, generation.StepRequest{
		SystemPrompt: authorSystemPrompt,
		UserPrompt:   userPrompt,
		ObjectClass:  input.ObjectClass,
		Operation:    TaskType,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		return nil
	}
	return parseQueries(text)
}

// parseQueries accepts a JSON array of strings or plain newline-separated
// queries. Anything else yields nil and the template fallback kicks in.
func parseQueries(text string) []string {
	trimmed := strings.TrimSpace(text)

	var parsed []string
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return cleanQueries(parsed)
	}

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return nil
	}
	return cleanQueries(strings.Split(trimmed, "\n"))
}

func cleanQueries(raw []string) []string {
	queries := make([]string, 0, len(raw))
	seen := make(map[string]struct{})
	for _, q := range raw {
		q = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(q), "-"))
		if q == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}
	return queries
}

func templateQueries(input *Input) []string {
	service := strings.TrimSpace(input.ServiceName)
	queries := []string{
		service + " API documentation",
		service + " REST API reference",
		service + " developer guide authentication",
	}
	if input.ObjectClass != "" {
		queries = append(queries,
			fmt.Sprintf("%s API %s endpoints", service, input.ObjectClass),
			fmt.Sprintf("%s create %s API", service, input.ObjectClass),
		)
	}
	return queries
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
