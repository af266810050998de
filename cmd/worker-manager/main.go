// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"connectorgen/internal/artifacts"
	"connectorgen/internal/chunkstore"
	"connectorgen/internal/common/camunda"
	"connectorgen/internal/common/config"
	"connectorgen/internal/common/database"
	"connectorgen/internal/common/logger"
	"connectorgen/internal/common/observability"
	"connectorgen/internal/common/resources"
	"connectorgen/internal/common/session"
	"connectorgen/internal/generation"
	"connectorgen/internal/websearch"

	aq "connectorgen/internal/workers/discovery/author-queries"
	dl "connectorgen/internal/workers/discovery/discover-links"
	ga "connectorgen/internal/workers/generation/generate-artifact"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared collaborators ---
	assetTable, err := generation.NewAssetTable()
	if err != nil {
		zapLog.Fatal("asset table construction failed", zap.Error(err))
	}

	sessions := session.NewStore(redis.Client)
	chunks := chunkstore.NewStore(esClient.Client, cfg.Database.Elasticsearch.ChunkIndex, log)
	artifactStore := artifacts.NewStore(pg.DB, log)
	promptResources := resources.NewReader(log, map[string]string{
		"prompts": cfg.Assets.PromptRoot,
		"docs":    cfg.Assets.DocsRoot,
	})
	stepClient := generation.NewStepClient(cfg.APIs.GenAI, log)
	generator := generation.NewGenerator(stepClient, log)
	searchClient := websearch.NewClient(cfg.APIs.WebSearch, log)

	zapLog.Info("All external service clients initialized")

	// --- Register Workers ---

	var workers []*camunda.Worker

	if wcfg := config.GetWorkerConfig(cfg, ga.TaskType); wcfg.Enabled {
		handlerCfg := ga.LoadConfig()
		if wcfg.Timeout > 0 {
			handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		handler := ga.NewHandler(
			handlerCfg,
			sessions, chunks, assetTable, promptResources, generator, artifactStore, log,
		)
		workers = append(workers, camunda.NewWorker(
			zeebeClient.GetClient(), ga.TaskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handler, zapLog,
		))
	}

	if wcfg := config.GetWorkerConfig(cfg, dl.TaskType); wcfg.Enabled {
		handlerCfg := dl.LoadConfig()
		if wcfg.Timeout > 0 {
			handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		handler := dl.NewHandler(handlerCfg, searchClient, log)
		workers = append(workers, camunda.NewWorker(
			zeebeClient.GetClient(), dl.TaskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handler, zapLog,
		))
	}

	if wcfg := config.GetWorkerConfig(cfg, aq.TaskType); wcfg.Enabled {
		handlerCfg := aq.LoadConfig()
		if wcfg.Timeout > 0 {
			handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		handler := aq.NewHandler(handlerCfg, stepClient, log)
		workers = append(workers, camunda.NewWorker(
			zeebeClient.GetClient(), aq.TaskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handler, zapLog,
		))
	}

	zapLog.Info("All workers registered successfully", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebeClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
