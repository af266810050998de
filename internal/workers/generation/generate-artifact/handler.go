// internal/workers/generation/generate-artifact/handler.go
package generateartifact

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"connectorgen/internal/artifacts"
	"connectorgen/internal/common/errors"
	"connectorgen/internal/common/logger"
	"connectorgen/internal/common/metrics"
	"connectorgen/internal/common/resources"
	"connectorgen/internal/common/session"
	"connectorgen/internal/evidence"
	"connectorgen/internal/generation"
	"connectorgen/internal/relevance"
)

const (
	TaskType = "generate-artifact"

	promptNamespace = "prompts"
	docsNamespace   = "docs"
)

// ChunkSource reads a session's documentation chunks.
type ChunkSource interface {
	AllChunks(ctx context.Context, sessionID string) ([]string, error)
	ChunksFor(ctx context.Context, sessionID string, refs []relevance.ChunkRef) ([]string, error)
}

type Handler struct {
	config    *Config
	sessions  session.Reader
	chunks    ChunkSource
	assets    *generation.AssetTable
	resources *resources.Reader
	generator *generation.Generator
	artifacts *artifacts.Store
	logger    logger.Logger
}

func NewHandler(
	config *Config,
	sessions session.Reader,
	chunks ChunkSource,
	assets *generation.AssetTable,
	res *resources.Reader,
	generator *generation.Generator,
	store *artifacts.Store,
	log logger.Logger,
) *Handler {
	return &Handler{
		config:    config,
		sessions:  sessions,
		chunks:    chunks,
		assets:    assets,
		resources: res,
		generator: generator,
		artifacts: store,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		var stdErr *errors.StandardError
		errorCode := "UNKNOWN_ERROR"
		if stderrors.As(err, &stdErr) {
			errorCode = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(started).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	op, err := generation.ParseOperation(input.Operation)
	if err != nil {
		return nil, err
	}

	var proto generation.Protocol
	if input.Protocol != "" {
		proto, err = generation.ParseProtocol(input.Protocol)
		if err != nil {
			return nil, err
		}
	}

	assets, err := h.assets.Resolve(op, proto)
	if err != nil {
		return nil, err
	}

	systemPrompt := h.resources.ReadText(promptNamespace, assets.SystemPromptPath)
	userPrompt := h.resources.ReadText(promptNamespace, assets.UserPromptPath)
	if docs := h.resources.ReadText(docsNamespace, assets.DocsResourcePath); docs != "" {
		userPrompt = userPrompt + "\n\n" + docs
	}

	chunks, err := h.relevantChunks(ctx, input, op)
	if err != nil {
		return nil, err
	}

	ev := evidence.Evidence{
		Attributes: evidence.SanitizeAttributes(h.logger, input.Attributes),
		Endpoints:  evidence.NormalizeEndpoints(input.Endpoints),
	}

	code, err := h.generator.Generate(ctx, generation.Request{
		ObjectClass:  input.ObjectClass,
		Operation:    op,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Chunks:       chunks,
		Evidence:     ev,
		Seed:         input.SeedResult,
	})
	if err != nil {
		return nil, errors.NewGenerationFailedError(err)
	}

	h.artifacts.Save(ctx, artifacts.Record{
		SessionID:   input.SessionID,
		ObjectClass: input.ObjectClass,
		Operation:   string(op),
		Protocol:    input.Protocol,
		Code:        code,
	})

	return &Output{Code: code}, nil
}

// relevantChunks resolves the chunk list the fold will see. Relation runs
// use the global relations signal; everything else merges the object class's
// endpoint and attribute signals. An empty merge falls back to the whole
// document, never to an error.
func (h *Handler) relevantChunks(ctx context.Context, input *Input, op generation.OperationKind) ([]string, error) {
	signals := session.RelevantChunks(ctx, h.sessions, input.SessionID)

	var refs []relevance.ChunkRef
	if op == generation.OpRelation {
		refs = relevance.Merge(relevance.Extract(signals[session.RelationsSignalName]))
	} else {
		refs = relevance.Merge(
			relevance.Extract(signals[session.EndpointsSignalName(input.ObjectClass)]),
			relevance.Extract(signals[session.AttributesSignalName(input.ObjectClass)]),
		)
	}

	if len(refs) > 0 {
		chunks, err := h.chunks.ChunksFor(ctx, input.SessionID, refs)
		if err != nil {
			return nil, err
		}
		if len(chunks) > 0 {
			return chunks, nil
		}
		h.logger.Warn("Relevance references resolved to no chunks, falling back to the whole document", map[string]interface{}{
			"sessionId":   input.SessionID,
			"objectClass": input.ObjectClass,
		})
	} else {
		h.logger.Info("No relevance signal, processing the whole document", map[string]interface{}{
			"sessionId":   input.SessionID,
			"objectClass": input.ObjectClass,
		})
	}

	return h.chunks.AllChunks(ctx, input.SessionID)
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
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
