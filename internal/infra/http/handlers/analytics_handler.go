package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/kklick/funnel-api/internal/entity"
	"github.com/kklick/funnel-api/internal/infra/http/middleware"
	"github.com/kklick/funnel-api/internal/usecase"
)

const dateLayout = "2006-01-02"

type AnalyticsHandler struct {
	analytics entity.AnalyticsRepositoryInterface
	stats     *usecase.StatsUseCase
}

func NewAnalyticsHandler(analytics entity.AnalyticsRepositoryInterface, stats *usecase.StatsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		stats:     stats,
	}
}

type pageViewRequest struct {
	VisitorID string `json:"visitorId"`
	Page      string `json:"page"`
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// PageView handles POST /api/analytics/pageview. Every call appends a row;
// there is no deduplication.
func (h *AnalyticsHandler) PageView(w http.ResponseWriter, r *http.Request) {
	var req pageViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	pv, err := entity.NewPageView(req.VisitorID, req.Page, req.Referrer, req.UserAgent)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.analytics.CreatePageView(r.Context(), pv); err != nil {
		log.Printf("persisting page view: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.RecordAnalyticsWrite("pageview")
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

type eventRequest struct {
	VisitorID string `json:"visitorId"`
	EventType string `json:"eventType"`
	EventData string `json:"eventData,omitempty"`
	Page      string `json:"page,omitempty"`
}

// Event handles POST /api/analytics/event.
func (h *AnalyticsHandler) Event(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ev, err := entity.NewAnalyticsEvent(req.VisitorID, req.EventType, req.EventData, req.Page)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.analytics.CreateEvent(r.Context(), ev); err != nil {
		log.Printf("persisting analytics event: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.RecordAnalyticsWrite("event")
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

// Stats handles GET /api/analytics/stats?startDate=...&endDate=... behind the
// admin credential check. Responses are marked uncacheable so the dashboard
// always sees fresh aggregates.
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	startParam := r.URL.Query().Get("startDate")
	endParam := r.URL.Query().Get("endDate")
	if startParam == "" || endParam == "" {
		writeError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	start, err := time.Parse(dateLayout, startParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate must be an ISO date (YYYY-MM-DD)")
		return
	}
	end, err := time.Parse(dateLayout, endParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "endDate must be an ISO date (YYYY-MM-DD)")
		return
	}

	data, err := h.stats.Aggregate(r.Context(), start, end)
	if err != nil {
		log.Printf("aggregating stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}
