package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kklick/funnel-api/internal/entity"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func guardedHandler(users entity.UserRepositoryInterface) (http.Handler, *bool) {
	reached := false
	h := AdminAuth(users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))
	return h, &reached
}

func TestAdminAuthAcceptsValidCredentials(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByUsername", mock.Anything, "admin").
		Return(&entity.User{ID: "u1", Username: "admin", Password: "s3cret"}, nil)

	h, reached := guardedHandler(users)

	req := httptest.NewRequest("GET", "/api/analytics/stats", nil)
	req.SetBasicAuth("admin", "s3cret")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *reached)
}

func TestAdminAuthRepositoryFailureIsServerError(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByUsername", mock.Anything, "admin").
		Return(nil, errors.New("connection refused"))

	h, reached := guardedHandler(users)

	req := httptest.NewRequest("GET", "/api/analytics/stats", nil)
	req.SetBasicAuth("admin", "s3cret")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, *reached)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())
	assert.Empty(t, w.Header().Get("WWW-Authenticate"))
}

func TestAdminAuthRejects(t *testing.T) {
	cases := []struct {
		name  string
		setup func(req *http.Request, users *MockUserRepository)
	}{
		{"missing credentials", func(req *http.Request, users *MockUserRepository) {}},
		{"wrong password", func(req *http.Request, users *MockUserRepository) {
			users.On("FindByUsername", mock.Anything, "admin").
				Return(&entity.User{ID: "u1", Username: "admin", Password: "s3cret"}, nil)
			req.SetBasicAuth("admin", "wrong")
		}},
		{"unknown user", func(req *http.Request, users *MockUserRepository) {
			users.On("FindByUsername", mock.Anything, "ghost").Return(nil, nil)
			req.SetBasicAuth("ghost", "s3cret")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := new(MockUserRepository)
			req := httptest.NewRequest("GET", "/api/analytics/stats", nil)
			tc.setup(req, users)

			h, reached := guardedHandler(users)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, *reached)
			assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, w.Body.String())
		})
	}
}
