// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package live

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sportboard/internal/tree"
)

// firstHalfMaxElapsed bounds how far into the first half a timer update may
// be to still count as a match start; later timer updates are clock ticks,
// not starts.
const firstHalfMaxElapsed = 100

// SportPatcher is the slice of the sport controller the dispatcher needs.
type SportPatcher interface {
	ProcessLiveStart(payload []byte) tree.PatchResult
	ProcessLiveEnd(payload []byte) tree.PatchResult
}

// ResultsPatcher is the slice of the results controller the dispatcher needs.
// Live ends carry the stashed score alongside the event detail.
type ResultsPatcher interface {
	ProcessLiveStart(payload []byte) tree.PatchResult
	ProcessLiveEnd(payload []byte, score json.RawMessage) tree.PatchResult
}

// Client maintains the socket connection to the in-play feed and dispatches
// updates to the sport and results caches. Scores arrive on a separate label
// before the finish frame, so they are stashed per event id until needed.
type Client struct {
	url     string
	sport   SportPatcher
	results ResultsPatcher

	// detailURL is the endpoint serving ended-event details, with the event
	// id appended.
	detailURL string
	client    *http.Client

	mu     sync.Mutex
	scores map[int64]json.RawMessage
}

// NewClient creates a live-feed client dispatching to the given caches.
func NewClient(socketURL, detailURL string, sport SportPatcher, results ResultsPatcher) *Client {
	return &Client{
		url:       socketURL,
		sport:     sport,
		results:   results,
		detailURL: detailURL,
		client:    &http.Client{Timeout: 20 * time.Second},
		scores:    map[int64]json.RawMessage{},
	}
}

// Run connects to the feed and keeps reading until the context is canceled,
// reconnecting with a capped backoff on any failure.
func (c *Client) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		err := c.readLoop(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("socket connection lost", "url", c.url, "error", err, "retry_in", backoff.String())
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Client) readLoop(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()
	slog.Info("socket connected", "url", c.url)

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if !bytes.Contains(message, []byte("uTimer")) && !bytes.Contains(message, []byte("uScore")) {
			continue
		}
		c.dispatch(ctx, ParseUpdates(message))
	}
}

// dispatch routes one parsed message: scores are stashed, first-half timer
// updates start matches, FINISHED timer updates end them.
func (c *Client) dispatch(ctx context.Context, updates Updates) {
	for _, upd := range updates.Scores {
		var td timerData
		if err := json.Unmarshal(upd.Data, &td); err != nil || td.EID == 0 {
			continue
		}
		c.mu.Lock()
		c.scores[td.EID] = upd.Data
		c.mu.Unlock()
	}

	for _, upd := range updates.Timers {
		var td timerData
		if err := json.Unmarshal(upd.Data, &td); err != nil || td.EID == 0 {
			continue
		}

		if td.Running && td.PeriodID == "1H" && td.Elapsed < firstHalfMaxElapsed {
			c.sport.ProcessLiveStart(upd.Data)
			c.results.ProcessLiveStart(upd.Data)
			continue
		}

		if td.PeriodID == "FINISHED" {
			c.finish(ctx, td.EID)
		}
	}
}

// finish fetches the ended-event detail and applies the live-end patches
// with the stashed score. Every failure is a logged no-op.
func (c *Client) finish(ctx context.Context, eid int64) {
	detail, err := c.fetchDetail(ctx, eid)
	if err != nil {
		slog.Error("fetch ended event failed", "eid", eid, "error", err)
		return
	}

	c.mu.Lock()
	score, ok := c.scores[eid]
	delete(c.scores, eid)
	c.mu.Unlock()
	if !ok {
		slog.Warn("event finished without score", "eid", eid)
	}

	c.sport.ProcessLiveEnd(detail)
	if res := c.results.ProcessLiveEnd(detail, score); res.Outcome == tree.Skipped {
		slog.Debug("live end skipped", "eid", eid, "reason", res.Reason)
	}
}

func (c *Client) fetchDetail(ctx context.Context, eid int64) ([]byte, error) {
	url := fmt.Sprintf("%s/%d", c.detailURL, eid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
