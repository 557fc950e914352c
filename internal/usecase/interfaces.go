package usecase

import (
	"context"

	"github.com/kklick/funnel-api/internal/entity"
	"github.com/kklick/funnel-api/internal/infra/queue"
)

type NotificationPublisherInterface interface {
	PublishLeadNotification(ctx context.Context, n queue.LeadNotification) error
}

// CaptureLeadUseCase validates and deduplicates an inbound lead, persists it
// and publishes the notification side-effect.
type CaptureLeadUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Notifier NotificationPublisherInterface
}

// StatsUseCase aggregates page views, quiz events and captured leads over a
// date range for the admin dashboard.
type StatsUseCase struct {
	Analytics entity.AnalyticsRepositoryInterface
	Leads     entity.LeadRepositoryInterface
}
