// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package timing implements the time-window engine: the named, time-bounded
// buckets events are counted into, classification of a single event against
// those buckets, and the schedule-range vocabulary built on top of them.
//
// All boundaries are unix milliseconds. Day boundaries are computed in the
// configured location (the upstream feeds run on Berlin local days). Windows
// are half-open [start, end): a timestamp exactly equal to the upper bound
// falls outside.
package timing

import (
	"fmt"
	"sync/atomic"
	"time"

	"sportboard/internal/models"
)

// Gate controls which live statuses an event may have to count into a window.
type Gate int

const (
	// GateNone admits every event regardless of live status.
	GateNone Gate = iota
	// GateLive excludes future and disabled events.
	GateLive
	// GateLiveAny excludes only disabled events.
	GateLiveAny
	// GateLiveNow excludes future, disabled and suspended events.
	GateLiveNow
)

// Kind separates forward-looking windows from backward-looking ("ended")
// windows.
type Kind int

const (
	Forward Kind = iota
	Backward
)

// Window is a single named time bucket. Start == 0 means the window has no
// lower bound ("everything before End").
type Window struct {
	Name  string
	Kind  Kind
	Gate  Gate
	Start int64
	End   int64
}

// Contains reports whether ts falls inside the window under half-open
// semantics.
func (w Window) Contains(ts int64) bool {
	if w.Start == 0 {
		return ts < w.End
	}
	return w.Start <= ts && ts < w.End
}

// Admits reports whether an event with the given live status may count into
// this window.
func (w Window) Admits(status string) bool {
	switch w.Gate {
	case GateNone:
		return true
	case GateLiveAny:
		return status != models.LiveStatusDisabled
	case GateLiveNow:
		return status != models.LiveStatusFuture &&
			status != models.LiveStatusDisabled &&
			status != models.LiveStatusSuspended
	default: // GateLive
		return status != models.LiveStatusFuture &&
			status != models.LiveStatusDisabled
	}
}

// WindowSet is one immutable snapshot of every window, regenerated on a
// fixed tick so "today", "next 24h" etc. stay correct as real time advances.
// Consumers always read a whole snapshot; the generation counter makes it
// observable when a snapshot has been superseded.
type WindowSet struct {
	Generation uint64
	Now        int64
	Forward    []Window
	Backward   []Window
}

// Find returns the named window, checking forward windows first.
func (ws *WindowSet) Find(name string) (Window, bool) {
	for _, w := range ws.Forward {
		if w.Name == name {
			return w, true
		}
	}
	for _, w := range ws.Backward {
		if w.Name == name {
			return w, true
		}
	}
	return Window{}, false
}

// Engine owns the current window snapshot. Refresh publishes a new snapshot
// atomically; Snapshot returns the latest one. There is exactly one writer
// (the refresh ticker in main), any number of readers.
type Engine struct {
	loc *time.Location
	gen atomic.Uint64
	cur atomic.Pointer[WindowSet]
}

// NewEngine creates an engine computing day boundaries in loc and publishes
// an initial snapshot for the current instant.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{loc: loc}
	e.Refresh(time.Now())
	return e
}

// Snapshot returns the current window set.
func (e *Engine) Snapshot() *WindowSet {
	return e.cur.Load()
}

// Refresh recomputes all window boundaries from now and publishes the new
// snapshot. It returns the snapshot it published.
func (e *Engine) Refresh(now time.Time) *WindowSet {
	fwd, back := buildWindows(now, e.loc)
	ws := &WindowSet{
		Generation: e.gen.Add(1),
		Now:        now.UnixMilli(),
		Forward:    fwd,
		Backward:   back,
	}
	e.cur.Store(ws)
	return ws
}

// buildWindows constructs the forward and backward window lists for the
// given instant. Day windows run from local midnight to the next local
// midnight (exclusive).
func buildWindows(now time.Time, loc *time.Location) (fwd, back []Window) {
	nowMs := now.UnixMilli()
	local := now.In(loc)
	sod := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	eod := sod.AddDate(0, 0, 1)

	after := func(d time.Duration) int64 { return now.Add(d).UnixMilli() }
	dayStart := func(n int) int64 { return sod.AddDate(0, 0, n).UnixMilli() }
	dayEnd := func(n int) int64 { return eod.AddDate(0, 0, n).UnixMilli() }

	fwd = []Window{
		{Name: "count_3h", Kind: Forward, End: after(3 * time.Hour)},
		{Name: "count_24h", Kind: Forward, End: after(24 * time.Hour)},
		{Name: "count_today", Kind: Forward, End: eod.UnixMilli()},
		{Name: "count_3d", Kind: Forward, End: dayEnd(3)},
		{Name: "count_1w", Kind: Forward, End: dayEnd(7)},
		{Name: "count_live", Kind: Forward, Gate: GateLiveAny, End: after(24 * time.Hour)},
		{Name: "count_live_now", Kind: Forward, Gate: GateLiveNow, End: after(2 * time.Hour)},
		{Name: "count_today_coming_live", Kind: Forward, Gate: GateLive, End: eod.UnixMilli()},
	}
	for n := 1; n <= 7; n++ {
		fwd = append(fwd,
			Window{
				Name:  fmt.Sprintf("count_%d_days_forward", n),
				Kind:  Forward,
				Start: dayStart(n),
				End:   dayEnd(n),
			},
			Window{
				Name:  fmt.Sprintf("count_%d_days_forward_live", n),
				Kind:  Forward,
				Gate:  GateLive,
				Start: dayStart(n),
				End:   dayEnd(n),
			},
		)
	}

	for n := 7; n >= 1; n-- {
		back = append(back, Window{
			Name:  fmt.Sprintf("count_%d_days_ago", n),
			Kind:  Backward,
			Start: dayStart(-n),
			End:   dayEnd(-n),
		})
	}
	back = append(back, Window{
		Name:  "count_today",
		Kind:  Backward,
		Start: sod.UnixMilli(),
		End:   nowMs,
	})
	return fwd, back
}

// Classify maps an event onto the forward windows: 1 for every window whose
// range contains the expiry timestamp and whose gate admits the event's live
// status, plus the base "count" entry marking that the event exists.
func Classify(ws *WindowSet, ev *models.Event) models.Counts {
	counts := models.Counts{"count": 1}
	ts := ev.ExpiresMillis()
	for _, w := range ws.Forward {
		if w.Contains(ts) && w.Admits(ev.LiveStatus) {
			counts[w.Name] = 1
		}
	}
	return counts
}

// ClassifyEnded maps a finished event onto the backward windows. No live
// gating applies here.
func ClassifyEnded(ws *WindowSet, ev *models.Event) models.Counts {
	counts := models.Counts{"count": 1}
	ts := ev.ExpiresMillis()
	for _, w := range ws.Backward {
		if w.Contains(ts) {
			counts[w.Name] = 1
		}
	}
	return counts
}

// SumInto adds every non-zero entry of src into the target category's
// counters. This is the sole mutation primitive used when propagating sums
// up a tree; addition is commutative and associative, so accumulation order
// never matters.
func SumInto(src models.Counts, target *models.Category) {
	for name, v := range src {
		if v == 0 {
			continue
		}
		target.AddCount(name, v)
	}
}
