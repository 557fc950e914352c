package database

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the four funnel tables if they do not exist. The
// partial unique index on leads.email is the storage-level backstop for the
// check-then-insert deduplication in the capture use case.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			quiz_answers TEXT,
			utm_source TEXT,
			utm_medium TEXT,
			utm_campaign TEXT,
			utm_content TEXT,
			utm_term TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_email
			ON leads(email) WHERE email IS NOT NULL;

		CREATE TABLE IF NOT EXISTS page_views (
			id TEXT PRIMARY KEY,
			visitor_id TEXT NOT NULL,
			page TEXT NOT NULL,
			referrer TEXT,
			user_agent TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_page_views_created_at ON page_views(created_at);
		CREATE INDEX IF NOT EXISTS idx_page_views_visitor_id ON page_views(visitor_id);

		CREATE TABLE IF NOT EXISTS analytics_events (
			id TEXT PRIMARY KEY,
			visitor_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_data TEXT,
			page TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_analytics_events_created_at ON analytics_events(created_at);
		CREATE INDEX IF NOT EXISTS idx_analytics_events_event_type ON analytics_events(event_type);
	`)
	return err
}
