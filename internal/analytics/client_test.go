package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kklick/funnel-api/internal/entity"
)

type capture struct {
	mu     sync.Mutex
	bodies []map[string]any
	paths  []string
}

func captureServer(t *testing.T, status int) (*httptest.Server, *capture) {
	t.Helper()

	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		c.mu.Lock()
		c.bodies = append(c.bodies, body)
		c.paths = append(c.paths, r.URL.Path)
		c.mu.Unlock()

		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestTrackPageView(t *testing.T) {
	srv, got := captureServer(t, http.StatusCreated)
	store := NewVisitorStore(filepath.Join(t.TempDir(), "visitor"))

	c := NewClient(srv.URL, store)
	c.TrackPageView("/quiz", "https://instagram.com", "Mozilla/5.0")
	c.Flush()

	require.Len(t, got.bodies, 1)
	assert.Equal(t, "/api/analytics/pageview", got.paths[0])
	assert.Equal(t, "/quiz", got.bodies[0]["page"])
	assert.NotEmpty(t, got.bodies[0]["visitorId"])
}

func TestTrackEventSerializesPayload(t *testing.T) {
	srv, got := captureServer(t, http.StatusCreated)
	store := NewVisitorStore(filepath.Join(t.TempDir(), "visitor"))

	c := NewClient(srv.URL, store)
	c.TrackEvent(entity.StepEventType(3), map[string]any{"answer": "zwischen 18-26"}, "/quiz")
	c.Flush()

	require.Len(t, got.bodies, 1)
	assert.Equal(t, "quiz_step_3", got.bodies[0]["eventType"])

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(got.bodies[0]["eventData"].(string)), &data))
	assert.Equal(t, "zwischen 18-26", data["answer"])
}

func TestVisitorIDStableAcrossClients(t *testing.T) {
	srv, got := captureServer(t, http.StatusCreated)
	path := filepath.Join(t.TempDir(), "visitor")

	c1 := NewClient(srv.URL, NewVisitorStore(path))
	c1.TrackPageView("/", "", "")
	c1.Flush()

	// A later session with the same storage reuses the token.
	c2 := NewClient(srv.URL, NewVisitorStore(path))
	c2.TrackPageView("/vsl", "", "")
	c2.Flush()

	require.Len(t, got.bodies, 2)
	assert.Equal(t, got.bodies[0]["visitorId"], got.bodies[1]["visitorId"])
}

func TestVisitorStoreReset(t *testing.T) {
	store := NewVisitorStore(filepath.Join(t.TempDir(), "visitor"))

	first, err := store.VisitorID()
	require.NoError(t, err)
	require.NoError(t, store.Reset())

	second, err := store.VisitorID()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTrackingFailuresAreSilent(t *testing.T) {
	var logged []string
	srv, _ := captureServer(t, http.StatusBadRequest)
	store := NewVisitorStore(filepath.Join(t.TempDir(), "visitor"))

	c := NewClient(srv.URL, store)
	c.logf = func(format string, args ...any) {
		logged = append(logged, format)
	}

	// Neither the rejected request nor an unreachable server panics or
	// returns anything to the caller.
	c.TrackEvent(entity.EventQuizStart, nil, "/quiz")
	c.Flush()
	srv.Close()
	c.TrackEvent(entity.EventQuizComplete, nil, "/quiz")
	c.Flush()

	assert.NotEmpty(t, logged)
}
