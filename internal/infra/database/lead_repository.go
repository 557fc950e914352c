package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/kklick/funnel-api/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Create inserts the lead. ON CONFLICT DO NOTHING on the email index makes
// the insert conditional: when a concurrent submission with the same email
// wins the race, no row is written and created=false is reported.
func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) (bool, error) {
	answers, err := lead.AnswersJSON()
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO leads (id, name, email, phone, quiz_answers,
			utm_source, utm_medium, utm_campaign, utm_content, utm_term, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (email) WHERE email IS NOT NULL DO NOTHING
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		nullString(answers),
		nullString(lead.UTMSource),
		nullString(lead.UTMMedium),
		nullString(lead.UTMCampaign),
		nullString(lead.UTMContent),
		nullString(lead.UTMTerm),
		lead.CreatedAt,
	)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// FindByEmail returns nil without error when no lead carries the email.
func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query := `
		SELECT id, name, email, phone, quiz_answers,
			utm_source, utm_medium, utm_campaign, utm_content, utm_term, created_at
		FROM leads
		WHERE email = $1
	`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	query := `
		SELECT id, name, email, phone, quiz_answers,
			utm_source, utm_medium, utm_campaign, utm_content, utm_term, created_at
		FROM leads
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var email, phone, answers, src, med, cam, con, term sql.NullString

	err := row.Scan(&lead.ID, &lead.Name, &email, &phone, &answers,
		&src, &med, &cam, &con, &term, &lead.CreatedAt)
	if err != nil {
		return nil, err
	}

	lead.Email = email.String
	lead.Phone = phone.String
	lead.UTMSource = src.String
	lead.UTMMedium = med.String
	lead.UTMCampaign = cam.String
	lead.UTMContent = con.String
	lead.UTMTerm = term.String

	if lead.QuizAnswers, err = entity.ParseAnswers(answers.String); err != nil {
		return nil, err
	}
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
