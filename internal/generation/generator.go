// internal/generation/generator.go
package generation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"connectorgen/internal/common/logger"
	"connectorgen/internal/common/metrics"
	"connectorgen/internal/evidence"
)

// Request describes one generation run: one object class, one operation,
// the ordered chunks to fold over, and the structured evidence every step
// sees. Chunks must already be in document order; the fold is sequential
// because each step's context includes the previous step's output.
type Request struct {
	ObjectClass  string
	Operation    OperationKind
	SystemPrompt string
	UserPrompt   string
	Chunks       []string
	Evidence     evidence.Evidence
	Seed         string
}

// Generator folds a generation operation across ordered documentation
// chunks, carrying a running best result forward.
type Generator struct {
	step StepInvoker
	log  logger.Logger
}

func NewGenerator(step StepInvoker, log logger.Logger) *Generator {
	return &Generator{step: step, log: log}
}

// Generate runs the left fold over req.Chunks. Each step receives the
// evidence, the current chunk, and the previous best result; an empty step
// contribution carries the previous result forward unchanged. The context
// is checked between steps and again before committing a step's output, so
// a cancelled step never replaces the running result. The returned text is
// the final best result, which is req.Seed (possibly empty) when no chunk
// contributed anything.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	runID := uuid.NewString()
	evidenceJSON := req.Evidence.JSON()
	best := req.Seed
	total := len(req.Chunks)

	log := g.log.WithFields(map[string]interface{}{
		"runId":       runID,
		"objectClass": req.ObjectClass,
		"operation":   string(req.Operation),
		"chunkTotal":  total,
	})
	log.Info("Starting generation fold", nil)

	for ordinal, chunk := range req.Chunks {
		if err := ctx.Err(); err != nil {
			log.Warn("Generation cancelled between chunks", map[string]interface{}{
				"chunkOrdinal": ordinal,
			})
			return "", err
		}

		started := time.Now()
		candidate, err := g.step.Step(ctx, StepRequest{
			SystemPrompt:   req.SystemPrompt,
			UserPrompt:     req.UserPrompt,
			EvidenceJSON:   evidenceJSON,
			ChunkText:      chunk,
			PreviousResult: best,
			ObjectClass:    req.ObjectClass,
			Operation:      string(req.Operation),
		})
		metrics.GenerationStepDuration.WithLabelValues(string(req.Operation)).
			Observe(time.Since(started).Seconds())

		if err != nil {
			// The only errors a step surfaces are cancellation-shaped; the
			// partial output, if any, is discarded rather than committed.
			log.WithError(err).Warn("Generation step aborted", map[string]interface{}{
				"chunkOrdinal": ordinal,
			})
			metrics.GenerationSteps.WithLabelValues(string(req.Operation), "aborted").Inc()
			return "", err
		}
		if ctx.Err() != nil {
			metrics.GenerationSteps.WithLabelValues(string(req.Operation), "aborted").Inc()
			return "", ctx.Err()
		}

		if strings.TrimSpace(candidate) == "" {
			log.Debug("Chunk contributed no new information", map[string]interface{}{
				"chunkOrdinal": ordinal,
			})
			metrics.GenerationSteps.WithLabelValues(string(req.Operation), "no_new_info").Inc()
			continue
		}

		best = candidate
		metrics.GenerationSteps.WithLabelValues(string(req.Operation), "committed").Inc()
	}

	log.Info("Generation fold complete", map[string]interface{}{
		"resultEmpty": strings.TrimSpace(best) == "",
	})
	return best, nil
}
