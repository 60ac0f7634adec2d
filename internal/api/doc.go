// Package api hosts the HTTP server, middleware, and REST handlers for the
// analysis service. Notable routes:
//   - POST /workflow/start to submit a URL for analysis.
//   - GET /workflow/{job_id}/status and .../result for polling.
//   - DELETE /workflow/{job_id} to cancel, DELETE /cache to invalidate.
//   - GET /workflow/jobs for archived runs via the HistoryStore interface.
//   - POST /ai-summary for on-demand summary generation.
//   - GET /health and /metrics for monitoring and Prometheus scraping.
package api
