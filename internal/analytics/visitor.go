package analytics

import (
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// VisitorStore holds the opaque visitor token, persisted in a file so it
// survives sessions the way the browser client persists it in local storage.
// The token is not an identity: deleting the file resets it.
type VisitorStore struct {
	path string

	mu sync.Mutex
	id string
}

func NewVisitorStore(path string) *VisitorStore {
	return &VisitorStore{path: path}
}

// VisitorID returns the stored token, generating and persisting a new one on
// first use. Lazy by design: no token exists until something is tracked.
func (s *VisitorStore) VisitorID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" {
		return s.id, nil
	}

	if raw, err := os.ReadFile(s.path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			s.id = id
			return s.id, nil
		}
	}

	id := uuid.New().String()
	if err := os.WriteFile(s.path, []byte(id), 0o600); err != nil {
		return "", err
	}
	s.id = id
	return s.id, nil
}

// Reset forgets the token, as a visitor clearing client storage would.
func (s *VisitorStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
