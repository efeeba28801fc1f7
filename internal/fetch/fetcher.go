// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package fetch implements the periodic upstream dump fetcher. One fetcher
// owns a set of keyed requests that are fetched together each cycle and
// delivered to the consumer as one payload; a failed cycle leaves the
// consumer's last-known-good state untouched. Nudge pulls the next cycle
// forward after a live event fired, so the bulk rebuild catches up sooner.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"sportboard/internal/cache"
)

// nudgeDivisor shortens the interval when a live event pulls the next fetch
// forward: the cycle runs after interval/nudgeDivisor instead.
const nudgeDivisor = 3

// Request is one keyed upstream URL of a fetch cycle.
type Request struct {
	Key string
	URL string
}

// ApplyFunc consumes a complete fetch cycle's payloads, keyed by request.
type ApplyFunc func(payload map[string]json.RawMessage) error

// Fetcher periodically fetches a group of upstream URLs and applies the
// combined payload.
type Fetcher struct {
	name     string
	client   *http.Client
	requests []Request
	interval time.Duration
	apply    ApplyFunc
	snaps    *cache.SnapshotStore
	nudgeC   chan struct{}
}

// New creates a fetcher. snaps may be nil to disable snapshotting.
func New(name string, requests []Request, interval time.Duration, apply ApplyFunc, snaps *cache.SnapshotStore) *Fetcher {
	return &Fetcher{
		name:     name,
		client:   &http.Client{Timeout: 30 * time.Second},
		requests: requests,
		interval: interval,
		apply:    apply,
		snaps:    snaps,
		nudgeC:   make(chan struct{}, 1),
	}
}

// Nudge schedules the next fetch cycle at a third of the regular interval.
// Safe to call from any goroutine; redundant nudges collapse into one.
func (f *Fetcher) Nudge() {
	select {
	case f.nudgeC <- struct{}{}:
	default:
	}
}

// Run restores the last snapshot (warm start), fetches immediately, then
// keeps fetching on the interval until the context is canceled.
func (f *Fetcher) Run(ctx context.Context) {
	f.restore(ctx)

	for {
		f.cycle(ctx)

		timer := time.NewTimer(f.interval)
	wait:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-f.nudgeC:
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(f.interval / nudgeDivisor)
				slog.Debug("fetch pulled forward", "fetcher", f.name, "in", f.interval/nudgeDivisor)
			case <-timer.C:
				break wait
			}
		}
	}
}

// cycle fetches every request and applies the combined payload. Any failure
// aborts the whole cycle so the consumer never sees a partial dump.
func (f *Fetcher) cycle(ctx context.Context) {
	runID := uuid.NewString()
	start := time.Now()

	payload := make(map[string]json.RawMessage, len(f.requests))
	for _, req := range f.requests {
		body, err := f.get(ctx, req.URL)
		if err != nil {
			slog.Error("fetch cycle failed",
				"fetcher", f.name,
				"run_id", runID,
				"key", req.Key,
				"error", err,
			)
			return
		}
		payload[req.Key] = body
	}

	if err := f.apply(payload); err != nil {
		slog.Error("fetch apply failed", "fetcher", f.name, "run_id", runID, "error", err)
		return
	}

	f.snaps.Save(ctx, f.name, payload)
	slog.Info("fetch cycle complete",
		"fetcher", f.name,
		"run_id", runID,
		"requests", len(f.requests),
		"duration", time.Since(start).String(),
	)
}

// restore applies the last snapshot, if any, so queries have data before the
// first fetch completes.
func (f *Fetcher) restore(ctx context.Context) {
	payload, ok := f.snaps.Load(ctx, f.name)
	if !ok {
		return
	}
	if err := f.apply(payload); err != nil {
		slog.Warn("snapshot apply failed", "fetcher", f.name, "error", err)
	}
}

func (f *Fetcher) get(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("get %s: response is not valid JSON", url)
	}
	return body, nil
}
