// Package analytics is the tracking client of the funnel: it posts page
// views and named events to the Analytics API. Dispatch is best-effort and
// fire-and-forget; the caller never blocks on delivery and failures surface
// only through the log seam.
package analytics

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"
)

type Client struct {
	baseURL string
	httpc   *http.Client
	store   *VisitorStore
	logf    func(format string, args ...any)

	wg sync.WaitGroup
}

// NewClient builds a tracking client around a visitor store. The store is
// the only visitor state; nothing is cached at package level.
func NewClient(baseURL string, store *VisitorStore) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		store:   store,
		logf:    log.Printf,
	}
}

// TrackPageView reports a page load. Returns immediately; delivery happens
// in the background.
func (c *Client) TrackPageView(page, referrer, userAgent string) {
	c.dispatch("/api/analytics/pageview", map[string]any{
		"page":      page,
		"referrer":  referrer,
		"userAgent": userAgent,
	})
}

// TrackEvent reports a named interaction, optionally with a structured
// payload that is serialized into eventData.
func (c *Client) TrackEvent(eventType string, eventData map[string]any, page string) {
	body := map[string]any{
		"eventType": eventType,
		"page":      page,
	}
	if eventData != nil {
		raw, err := json.Marshal(eventData)
		if err != nil {
			c.logf("analytics: dropping event %s: %v", eventType, err)
			return
		}
		body["eventData"] = string(raw)
	}
	c.dispatch("/api/analytics/event", body)
}

// Flush waits for in-flight dispatches. For shutdown and tests only; normal
// callers never wait.
func (c *Client) Flush() {
	c.wg.Wait()
}

func (c *Client) dispatch(path string, body map[string]any) {
	visitorID, err := c.store.VisitorID()
	if err != nil {
		c.logf("analytics: no visitor id: %v", err)
		return
	}
	body["visitorId"] = visitorID

	raw, err := json.Marshal(body)
	if err != nil {
		c.logf("analytics: marshaling %s: %v", path, err)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		resp, err := c.httpc.Post(c.baseURL+path, "application/json", bytes.NewReader(raw))
		if err != nil {
			c.logf("analytics: posting %s: %v", path, err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			c.logf("analytics: %s rejected with %d", path, resp.StatusCode)
		}
	}()
}
