package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/cache"
	"github.com/rankonai/seoscope/internal/seo"
	"github.com/rankonai/seoscope/internal/tasks"
	"github.com/rankonai/seoscope/internal/workflow"
)

// Summaries are cached by a digest of the analysis document, so repeated
// requests for the same report skip the provider call for an hour.
const (
	keyPrefixAISummary = "ai_summary"
	aiSummaryTTL       = time.Hour
)

type aiSummaryRequest struct {
	Analysis json.RawMessage `json:"analysis"`
}

type aiSummaryResponse struct {
	Success    bool           `json:"success"`
	Markdown   string         `json:"markdown"`
	Structured map[string]any `json:"structured"`
	Cached     bool           `json:"cached"`
}

// aiSummary handles POST /ai-summary: on-demand summary generation from a
// previously produced overview document, for clients that hold a report
// but no live job.
func (s *Server) aiSummary(w http.ResponseWriter, r *http.Request) {
	if s.summarizer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "summary generation unavailable")
		return
	}
	var req aiSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Analysis) == 0 || string(req.Analysis) == "null" {
		s.writeError(w, http.StatusBadRequest, "analysis is required")
		return
	}

	key := cache.Key(keyPrefixAISummary, string(req.Analysis))
	if raw, ok := s.cache.Get(r.Context(), key); ok {
		var resp aiSummaryResponse
		if err := json.Unmarshal(raw, &resp); err == nil {
			resp.Cached = true
			s.writeJSON(w, http.StatusOK, resp)
			return
		}
	}

	var report seo.Report
	if err := json.Unmarshal(req.Analysis, &report); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid analysis payload")
		return
	}
	url := report.URL
	if url == "" {
		url = "unknown"
	}

	data, err := s.summarizer.Execute(r.Context(), tasks.Input{URL: url, Overview: &report})
	if err != nil {
		s.logger.Error("ai summary generation failed", zap.String("url", url), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "ai summary generation failed")
		return
	}

	resp := aiSummaryResponse{Success: true}
	if md, ok := data["markdown"].(string); ok {
		resp.Markdown = md
	}
	if structured, ok := data["structured"].(map[string]any); ok {
		resp.Structured = structured
	}
	if raw, err := json.Marshal(resp); err == nil {
		s.cache.Set(r.Context(), key, raw, aiSummaryTTL)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type cacheClearRequest struct {
	URL string `json:"url"`
}

// clearCache handles DELETE /cache: drops the aggregate result and every
// per-step payload cached for the URL.
func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	var req cacheClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		s.writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	normalized, err := workflow.NormalizeURL(req.URL)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.service.InvalidateURL(r.Context(), normalized)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"cleared": true,
		"url":     normalized,
		"message": "Cache cleared for " + normalized,
	})
}
