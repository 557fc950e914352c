package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kklick/funnel-api/internal/entity"
)

type AnalyticsRepository struct {
	DB *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

func (r *AnalyticsRepository) CreatePageView(ctx context.Context, pv *entity.PageView) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO page_views (id, visitor_id, page, referrer, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		pv.ID, pv.VisitorID, pv.Page, nullString(pv.Referrer), nullString(pv.UserAgent), pv.CreatedAt,
	)
	return err
}

func (r *AnalyticsRepository) CreateEvent(ctx context.Context, ev *entity.AnalyticsEvent) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO analytics_events (id, visitor_id, event_type, event_data, page, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.VisitorID, ev.EventType, nullString(ev.EventData), nullString(ev.Page), ev.CreatedAt,
	)
	return err
}

func (r *AnalyticsRepository) CountPageViews(ctx context.Context, start, end time.Time) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM page_views WHERE created_at >= $1 AND created_at < $2`,
		start, end)
}

func (r *AnalyticsRepository) CountDistinctVisitors(ctx context.Context, start, end time.Time) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(DISTINCT visitor_id) FROM page_views WHERE created_at >= $1 AND created_at < $2`,
		start, end)
}

func (r *AnalyticsRepository) CountReturningVisitors(ctx context.Context, start, end time.Time) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*) FROM (
			SELECT visitor_id FROM page_views
			WHERE created_at >= $1 AND created_at < $2
			GROUP BY visitor_id
			HAVING COUNT(*) >= 2
		) returning_visitors`,
		start, end)
}

func (r *AnalyticsRepository) CountEventsByType(ctx context.Context, eventType string, start, end time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analytics_events WHERE event_type = $1 AND created_at >= $2 AND created_at < $3`,
		eventType, start, end,
	).Scan(&count)
	return count, err
}

func (r *AnalyticsRepository) StepEventCounts(ctx context.Context, start, end time.Time) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE event_type LIKE $1 AND created_at >= $2 AND created_at < $3
		GROUP BY event_type`,
		likePrefixPattern(entity.StepEventPrefix), start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, err
		}
		counts[eventType] = count
	}
	return counts, rows.Err()
}

// likePrefixPattern escapes LIKE metacharacters so the prefix matches
// literally. Event types arrive from a public endpoint, and an unescaped
// underscore would let lookalikes such as "quiz-step-2" into the grouping.
func likePrefixPattern(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

func (r *AnalyticsRepository) count(ctx context.Context, query string, start, end time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, query, start, end).Scan(&count)
	return count, err
}
