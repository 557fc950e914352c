package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kklick/funnel-api/internal/entity"
	"github.com/kklick/funnel-api/internal/infra/queue"
)

// DefaultSource labels notifications for submissions without an explicit
// source or UTM attribution.
const DefaultSource = "Quiz Funnel"

func NewCaptureLeadUseCase(leads entity.LeadRepositoryInterface, notifier NotificationPublisherInterface) *CaptureLeadUseCase {
	return &CaptureLeadUseCase{
		Leads:    leads,
		Notifier: notifier,
	}
}

// Execute runs the create-lead operation. A submission whose email is already
// on file creates no row but still triggers a repeat-tagged notification and
// reports the existing lead's id; the caller cannot tell the two paths apart
// from the response body. Notification failures are logged and swallowed.
func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*CaptureLeadOutput, error) {
	if errs := ValidateCaptureLeadInput(input); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	email := strings.TrimSpace(input.Email)
	if email != "" {
		existing, err := uc.Leads.FindByEmail(ctx, email)
		if err != nil {
			return nil, &TechnicalError{Code: "DB_ERROR", Message: fmt.Sprintf("looking up lead by email: %v", err)}
		}
		if existing != nil {
			return uc.duplicate(ctx, existing, input), nil
		}
	}

	lead, err := entity.NewLead(input.Name, email, input.Phone, input.QuizAnswers)
	if err != nil {
		// Input validation covers the same rules; the entity check still
		// guards direct callers.
		return nil, ValidationErrors{{Field: "lead", Message: err.Error()}}
	}
	lead.UTMSource = input.UTMSource
	lead.UTMMedium = input.UTMMedium
	lead.UTMCampaign = input.UTMCampaign
	lead.UTMContent = input.UTMContent
	lead.UTMTerm = input.UTMTerm

	created, err := uc.Leads.Create(ctx, lead)
	if err != nil {
		return nil, &TechnicalError{Code: "DB_ERROR", Message: fmt.Sprintf("persisting lead: %v", err)}
	}
	if !created {
		// Lost the check-then-insert race: another submission with the same
		// email landed first. The unique index is the backstop; fall through
		// to the duplicate path against the winning row.
		existing, err := uc.Leads.FindByEmail(ctx, email)
		if err != nil || existing == nil {
			return nil, &TechnicalError{Code: "DB_ERROR", Message: "lead insert conflicted but no existing row found"}
		}
		return uc.duplicate(ctx, existing, input), nil
	}

	uc.notify(ctx, queue.LeadNotification{
		LeadID: lead.ID,
		Name:   lead.Name,
		Email:  lead.Email,
		Phone:  lead.Phone,
		Source: deriveSource(input),
	})

	return &CaptureLeadOutput{LeadID: lead.ID}, nil
}

func (uc *CaptureLeadUseCase) duplicate(ctx context.Context, existing *entity.Lead, input CaptureLeadInput) *CaptureLeadOutput {
	uc.notify(ctx, queue.LeadNotification{
		LeadID: existing.ID,
		Name:   existing.Name,
		Email:  existing.Email,
		Phone:  existing.Phone,
		Source: deriveSource(input) + " (wiederholt)",
		Repeat: true,
	})

	return &CaptureLeadOutput{LeadID: existing.ID, Duplicate: true}
}

// notify publishes the notification message. Fire-and-forget: the actual
// email delivery happens in the queue worker, and a publish failure never
// fails the capture.
func (uc *CaptureLeadUseCase) notify(ctx context.Context, n queue.LeadNotification) {
	if uc.Notifier == nil {
		log.Printf("lead notification for %s skipped: no publisher configured", n.LeadID)
		return
	}
	if err := uc.Notifier.PublishLeadNotification(ctx, n); err != nil {
		log.Printf("lead notification for %s not published: %v", n.LeadID, err)
	}
}

func deriveSource(input CaptureLeadInput) string {
	if s := strings.TrimSpace(input.Source); s != "" {
		return s
	}
	if input.UTMSource != "" {
		return "UTM: " + input.UTMSource
	}
	return DefaultSource
}
