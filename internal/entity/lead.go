package entity

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead is a captured funnel contact. Rows are append-only: a lead is never
// mutated or deleted after creation, and at most one row exists per non-empty
// email (backed by a partial unique index on leads.email).
type Lead struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email,omitempty"`
	Phone       string         `json:"phone,omitempty"`
	QuizAnswers map[int]string `json:"quizAnswers,omitempty"`

	// UTM attribution, copied verbatim from the inbound request.
	UTMSource   string `json:"utmSource,omitempty"`
	UTMMedium   string `json:"utmMedium,omitempty"`
	UTMCampaign string `json:"utmCampaign,omitempty"`
	UTMContent  string `json:"utmContent,omitempty"`
	UTMTerm     string `json:"utmTerm,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Factory
func NewLead(name, email, phone string, answers map[int]string) (*Lead, error) {
	lead := &Lead{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Email:       strings.TrimSpace(email),
		Phone:       strings.TrimSpace(phone),
		QuizAnswers: answers,
		CreatedAt:   time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if len(l.Name) < 2 {
		return errors.New("name must have at least 2 characters")
	}
	if l.Email != "" {
		addr, err := mail.ParseAddress(l.Email)
		if err != nil || addr.Address != l.Email {
			return errors.New("email is invalid")
		}
	}
	return nil
}

// AnswersJSON serializes the quiz answers for the text column. An empty map
// stores as NULL.
func (l *Lead) AnswersJSON() (string, error) {
	if len(l.QuizAnswers) == 0 {
		return "", nil
	}
	b, err := json.Marshal(l.QuizAnswers)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func ParseAnswers(raw string) (map[int]string, error) {
	if raw == "" {
		return nil, nil
	}
	answers := make(map[int]string)
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

type LeadRepositoryInterface interface {
	// Create inserts the lead. When the email collides with an existing row
	// it reports created=false and leaves the store unchanged.
	Create(ctx context.Context, lead *Lead) (created bool, err error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	// List returns all leads, newest first.
	List(ctx context.Context) ([]*Lead, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error)
}
