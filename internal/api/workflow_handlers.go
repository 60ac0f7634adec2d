package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/dispatcher"
	"github.com/rankonai/seoscope/internal/workflow"
)

// Messages returned by the start route. The {job_id} placeholder is
// literal; clients substitute the job_id field of the same response.
const (
	startCachedMessage  = "Cached result available. Use /workflow/{job_id}/result to retrieve."
	startPendingMessage = "Workflow started. Poll /workflow/{job_id}/status for updates."
)

type startRequest struct {
	URL string `json:"url"`
}

type startResponse struct {
	JobID   string             `json:"job_id"`
	URL     string             `json:"url"`
	Status  workflow.JobStatus `json:"status"`
	Message string             `json:"message"`
	Cached  bool               `json:"cached"`
}

// startWorkflow handles POST /workflow/start. A cached aggregate for the
// URL short-circuits execution: the job is created already completed with
// the cached result attached, and nothing is dispatched.
func (s *Server) startWorkflow(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		s.writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	normalized, err := workflow.NormalizeURL(req.URL)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if cached, ok := s.service.CachedResult(r.Context(), normalized); ok {
		s.startCached(w, r, normalized, cached)
		return
	}

	job, err := s.service.CreateJob(r.Context(), normalized)
	if err != nil {
		s.jobCreateError(w, err)
		return
	}
	item := workflow.QueueItem{
		JobID:     job.ID,
		URL:       job.URL,
		Attempt:   1,
		Submitted: s.clock.Now().Unix(),
	}
	if err := s.dispatcher.Dispatch(r.Context(), item); err != nil {
		if errors.Is(err, dispatcher.ErrBusy) {
			s.writeError(w, http.StatusServiceUnavailable, "server busy")
			return
		}
		s.logger.Error("job dispatch failed",
			zap.String("job_id", job.ID),
			zap.String("url", job.URL),
			zap.Error(err),
		)
		s.writeError(w, http.StatusServiceUnavailable, "failed to start workflow")
		return
	}
	s.writeJSON(w, http.StatusOK, startResponse{
		JobID:   job.ID,
		URL:     job.URL,
		Status:  job.Status,
		Message: startPendingMessage,
	})
}

// startCached registers a pseudo-job that is born completed, carrying the
// cached aggregate as its result so the usual result route serves it.
func (s *Server) startCached(w http.ResponseWriter, r *http.Request, url string, cached map[string]json.RawMessage) {
	job, err := s.service.CreateJob(r.Context(), url)
	if err != nil {
		s.jobCreateError(w, err)
		return
	}
	extras := make(map[string]json.RawMessage, len(cached)+1)
	for k, v := range cached {
		extras[k] = v
	}
	extras["cached"] = rawJSON(true)
	if _, err := s.service.CompleteJob(r.Context(), job.ID, extras); err != nil {
		s.logger.Error("cached result attach failed", zap.String("job_id", job.ID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to record cached result")
		return
	}
	s.writeJSON(w, http.StatusOK, startResponse{
		JobID:   job.ID,
		URL:     url,
		Status:  workflow.StatusCompleted,
		Message: startCachedMessage,
		Cached:  true,
	})
}

func (s *Server) jobCreateError(w http.ResponseWriter, err error) {
	if errors.Is(err, workflow.ErrBlockedHost) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("job creation failed", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "failed to create job")
}

type statusResponse struct {
	JobID          string             `json:"job_id"`
	Status         workflow.JobStatus `json:"status"`
	Progress       int                `json:"progress"`
	CurrentStep    *string            `json:"current_step"`
	CompletedSteps []string           `json:"completed_steps"`
	Error          *string            `json:"error,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// getStatus handles GET /workflow/{job_id}/status.
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}
	resp := statusResponse{
		JobID:          job.ID,
		Status:         job.Status,
		Progress:       job.Progress,
		CompletedSteps: job.CompletedSteps,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}
	if job.CurrentStep != "" {
		step := string(job.CurrentStep)
		resp.CurrentStep = &step
	}
	if job.Error != "" {
		resp.Error = &job.Error
	}
	if resp.CompletedSteps == nil {
		resp.CompletedSteps = []string{}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// getResult handles GET /workflow/{job_id}/result. Failed jobs answer with
// their error, unfinished jobs answer 202 with a progress message, and
// completed jobs answer the full aggregate.
func (s *Server) getResult(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}
	if job.Status == workflow.StatusFailed {
		errMsg := job.Error
		if errMsg == "" {
			errMsg = "workflow failed"
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"job_id": job.ID,
			"url":    job.URL,
			"status": job.Status,
			"error":  errMsg,
		})
		return
	}
	if job.Status != workflow.StatusCompleted {
		s.writeJSON(w, http.StatusAccepted, map[string]any{
			"job_id":   job.ID,
			"status":   job.Status,
			"progress": job.Progress,
			"message":  fmt.Sprintf("job %s is still %s, progress: %d%%", job.ID, job.Status, job.Progress),
		})
		return
	}

	payload := make(map[string]json.RawMessage, len(job.Result)+4)
	for k, v := range job.Result {
		payload[k] = v
	}
	payload["job_id"] = rawJSON(job.ID)
	payload["url"] = rawJSON(job.URL)
	payload["status"] = rawJSON(job.Status)
	if _, ok := payload["cached"]; !ok {
		payload["cached"] = rawJSON(false)
	}
	if _, ok := payload["scores"]; !ok {
		if scores := scoresFrom(payload["overview"]); scores != nil {
			payload["scores"] = scores
		}
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// scoresFrom pulls the scores block out of an overview document.
func scoresFrom(overview json.RawMessage) json.RawMessage {
	if len(overview) == 0 {
		return nil
	}
	var doc struct {
		Scores json.RawMessage `json:"scores"`
	}
	if err := json.Unmarshal(overview, &doc); err != nil {
		return nil
	}
	if len(doc.Scores) == 0 || string(doc.Scores) == "null" {
		return nil
	}
	return doc.Scores
}

// cancelJob handles DELETE /workflow/{job_id}. Jobs that already reached
// a terminal state cannot be cancelled.
func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "job_id")
	_, err := s.service.CancelJob(r.Context(), id)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, map[string]any{"cancelled": true, "job_id": id})
	case errors.Is(err, workflow.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, workflow.ErrTerminal):
		job, getErr := s.service.GetJob(r.Context(), id)
		if getErr != nil {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("cannot cancel job in state: %s", job.Status))
	default:
		s.logger.Error("job cancel failed", zap.String("job_id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to cancel job")
	}
}

// listJobs handles GET /workflow/jobs?status=&limit=&offset= against the
// job history archive. It returns {"jobs": [...]} on success, 400 for
// invalid filters, or 503 when no archive store is configured.
func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "job history unavailable")
		return
	}
	limit, offset, err := parseLimitOffset(r, defaultJobLimit, maxJobLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var status *workflow.JobStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, parseErr := parseStatus(raw)
		if parseErr != nil {
			s.writeError(w, http.StatusBadRequest, parseErr.Error())
			return
		}
		status = &parsed
	}
	ctx, cancel := context.WithTimeout(r.Context(), historyTimeout)
	defer cancel()

	jobs, err := s.history.ListJobs(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("list jobs failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []workflow.HistoryRecord{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// loadJob fetches the job named in the path, answering 404/500 itself.
func (s *Server) loadJob(w http.ResponseWriter, r *http.Request) (workflow.Job, bool) {
	id := chi.URLParam(r, "job_id")
	job, err := s.service.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
		} else {
			s.logger.Error("job load failed", zap.String("job_id", id), zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "failed to load job")
		}
		return workflow.Job{}, false
	}
	return job, true
}

func parseLimitOffset(r *http.Request, def, maxLimit int) (int, int, error) {
	q := r.URL.Query()
	limit := def
	if limStr := q.Get("limit"); limStr != "" {
		val, err := strconv.Atoi(limStr)
		if err != nil || val <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		if val > maxLimit {
			val = maxLimit
		}
		limit = val
	}
	offset := 0
	if offStr := q.Get("offset"); offStr != "" {
		val, err := strconv.Atoi(offStr)
		if err != nil || val < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = val
	}
	return limit, offset, nil
}

func parseStatus(input string) (workflow.JobStatus, error) {
	switch strings.ToLower(input) {
	case "pending":
		return workflow.StatusPending, nil
	case "running":
		return workflow.StatusRunning, nil
	case "completed":
		return workflow.StatusCompleted, nil
	case "failed", "failure", "error":
		return workflow.StatusFailed, nil
	case "cancelled", "canceled":
		return workflow.StatusCancelled, nil
	default:
		return "", errors.New("invalid status")
	}
}
