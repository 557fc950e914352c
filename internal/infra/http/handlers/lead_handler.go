package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/kklick/funnel-api/internal/entity"
	"github.com/kklick/funnel-api/internal/infra/http/middleware"
	"github.com/kklick/funnel-api/internal/usecase"
)

type LeadHandler struct {
	capture     *usecase.CaptureLeadUseCase
	leads       entity.LeadRepositoryInterface
	rateLimiter *RateLimiter
}

func NewLeadHandler(capture *usecase.CaptureLeadUseCase, leads entity.LeadRepositoryInterface) *LeadHandler {
	return &LeadHandler{
		capture:     capture,
		leads:       leads,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 req/min per IP
	}
}

type captureLeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	LeadID  string `json:"leadId,omitempty"`
}

type validationFailureResponse struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	Errors  []usecase.ValidationError `json:"errors"`
}

// Create handles POST /api/leads. 201 for a fresh lead, 200 when the email
// was already on file; the body is the same shape either way.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var input usecase.CaptureLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	out, err := h.capture.Execute(r.Context(), input)
	if err != nil {
		var verrs usecase.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, validationFailureResponse{
				Success: false,
				Message: "Validation error",
				Errors:  verrs,
			})
			return
		}
		log.Printf("creating lead: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.RecordLeadCaptured(out.Duplicate)

	status := http.StatusCreated
	message := "Lead created successfully"
	if out.Duplicate {
		status = http.StatusOK
		message = "Lead registered"
	}
	writeJSON(w, status, captureLeadResponse{
		Success: true,
		Message: message,
		LeadID:  out.LeadID,
	})
}

// List handles GET /api/leads, newest first. Routed behind the admin
// credential check.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.List(r.Context())
	if err != nil {
		log.Printf("listing leads: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, leads)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
