// Package main hosts the seoscope service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes the workflow endpoints (start, status, result, cancel, job listing),
//     the standalone AI summary and cache management endpoints, plus health and Prometheus metrics. URLs are
//     validated and normalized before a job is created, and cached analyses short-circuit into a completed job
//     without touching the workers.
//   - Dispatch & queue: accepted jobs flow through a bounded in-memory queue consumed by a fixed worker pool
//     (workflow.dispatch=queue), or run on request-spawned goroutines bounded by a semaphore
//     (workflow.dispatch=inline). Either way a saturated system answers 503 instead of accepting work it cannot
//     start. Context cancellation stops workers cleanly on shutdown.
//   - Analysis pipeline: each worker runs the overview phase first (fetch via the Colly-based fetcher, optional
//     headless Chromedp re-render when the page looks like a JavaScript shell, then the on-page/content/robots
//     analysis), and fans the enrichment tasks (insights, signals, keywords, marketing, social, ai_summary) out
//     concurrently. A failed task records an error entry on the job; only an overview failure fails the job.
//   - Persistence & fanout: job state and results live in the cache (memory or Redis) with TTL-based expiry, so
//     every replica sharing a Redis observes the same jobs. Raw HTML snapshots are archived to the configured
//     store (GCS/local/memory), terminal jobs are recorded in Postgres when a DSN is configured, and a compact
//     completion event is published to Pub/Sub when a topic is configured. Progress events are batched by a hub
//     and fed to Prometheus (and optionally the log).
//   - Configuration & plumbing: Viper populates config from file and SEOSCOPE_* env vars; zap provides structured
//     logging; OpenTelemetry spans cover the job run and each task; Prometheus metrics are exported via the
//     metrics middleware and /metrics handler.
//
// Operational notes:
//   - Concurrency model: bounded queue + fixed worker pool, with a per-job timeout (workflow.job_timeout_seconds)
//     so a stuck page cannot pin a worker. Headless rendering has its own parallelism cap inside the renderer.
//   - LLM providers: OpenAI and Grok keys are optional. Tasks degrade gracefully without them (heuristic keyword
//     extraction and score-based summaries still run); the insights task reports per-provider nulls.
//   - Observability: zap logs carry job IDs and URLs at key transitions; Prometheus counters/histograms track API,
//     job, step and cache activity; the progress hub batches lifecycle events for downstream sinks.
//   - Cloud Run: the HTTP server listens on server.port, the process is stateless across requests when Redis backs
//     the cache, and SIGTERM drains in-flight jobs within the shutdown timeout.
//
// Quick checklist:
//   - Configure env vars: SEOSCOPE_SERVER_PORT, SEOSCOPE_WORKFLOW_CONCURRENCY, SEOSCOPE_CACHE_PROVIDER=redis plus
//     SEOSCOPE_CACHE_REDIS_ADDR for shared state, SEOSCOPE_LLM_OPENAI_API_KEY / SEOSCOPE_LLM_GROK_API_KEY for AI
//     enrichment, and history/snapshot/events providers when archival beyond memory is required.
//   - Run locally: go run ./cmd/seoscope -config config.yaml (or rely solely on env overrides).
package main
