package database

import (
	"context"
	"database/sql"

	"github.com/kklick/funnel-api/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// FindByUsername returns nil without error when the user does not exist.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, username, password FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.Password)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, username, password) VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO NOTHING`,
		user.ID, user.Username, user.Password,
	)
	return err
}
