package entity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// User is an admin dashboard account, checked by the stats authorization
// middleware. Not a visitor identity.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

func NewUser(username, password string) (*User, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	return &User{
		ID:       uuid.New().String(),
		Username: username,
		Password: password,
	}, nil
}

type UserRepositoryInterface interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
}
