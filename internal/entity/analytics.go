package entity

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reserved event types emitted by the quiz funnel. Event types carrying the
// step prefix are grouped by step during aggregation.
const (
	EventQuizStart        = "quiz_start"
	EventQuizComplete     = "quiz_complete"
	EventQuizDisqualified = "quiz_disqualified"
	StepEventPrefix       = "quiz_step_"
)

// StepEventType builds the reserved event type for a quiz step.
func StepEventType(step int) string {
	return StepEventPrefix + strconv.Itoa(step)
}

// PageView records a single page load reported by a visitor. Append-only.
type PageView struct {
	ID        string    `json:"id"`
	VisitorID string    `json:"visitorId"`
	Page      string    `json:"page"`
	Referrer  string    `json:"referrer,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewPageView(visitorID, page, referrer, userAgent string) (*PageView, error) {
	pv := &PageView{
		ID:        uuid.New().String(),
		VisitorID: strings.TrimSpace(visitorID),
		Page:      strings.TrimSpace(page),
		Referrer:  referrer,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}

	if err := pv.Validate(); err != nil {
		return nil, err
	}

	return pv, nil
}

func (p *PageView) Validate() error {
	if p.VisitorID == "" {
		return errors.New("visitorId is required")
	}
	if p.Page == "" {
		return errors.New("page is required")
	}
	return nil
}

// AnalyticsEvent records a tracked interaction (quiz start, step, completion,
// disqualification). Append-only, no deduplication.
type AnalyticsEvent struct {
	ID        string    `json:"id"`
	VisitorID string    `json:"visitorId"`
	EventType string    `json:"eventType"`
	EventData string    `json:"eventData,omitempty"`
	Page      string    `json:"page,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewAnalyticsEvent(visitorID, eventType, eventData, page string) (*AnalyticsEvent, error) {
	ev := &AnalyticsEvent{
		ID:        uuid.New().String(),
		VisitorID: strings.TrimSpace(visitorID),
		EventType: strings.TrimSpace(eventType),
		EventData: eventData,
		Page:      page,
		CreatedAt: time.Now(),
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}

	return ev, nil
}

func (e *AnalyticsEvent) Validate() error {
	if e.VisitorID == "" {
		return errors.New("visitorId is required")
	}
	if e.EventType == "" {
		return errors.New("eventType is required")
	}
	return nil
}

type AnalyticsRepositoryInterface interface {
	CreatePageView(ctx context.Context, pv *PageView) error
	CreateEvent(ctx context.Context, ev *AnalyticsEvent) error

	CountPageViews(ctx context.Context, start, end time.Time) (int, error)
	CountDistinctVisitors(ctx context.Context, start, end time.Time) (int, error)
	// CountReturningVisitors counts distinct visitors with at least two page
	// views inside the range.
	CountReturningVisitors(ctx context.Context, start, end time.Time) (int, error)
	CountEventsByType(ctx context.Context, eventType string, start, end time.Time) (int, error)
	// StepEventCounts returns per-type counts for events whose type carries
	// the step prefix.
	StepEventCounts(ctx context.Context, start, end time.Time) (map[string]int, error)
}
