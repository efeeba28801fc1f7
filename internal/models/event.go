// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "strings"

// Live statuses as shipped by the event dump. Anything that is not future,
// disabled or suspended counts as actively live.
const (
	LiveStatusFuture    = "future"
	LiveStatusDisabled  = "disabled"
	LiveStatusSuspended = "suspended"
)

// Event is one record of the upstream event dump. ExpiresTS (unix seconds)
// is the sole input to time-window classification; LiveStatus gates the
// "_live" windows.
type Event struct {
	ID         FlexInt   `json:"id"`
	CategoryID FlexInt   `json:"category_id"`
	ExpiresTS  FlexFloat `json:"expires_ts"`
	LiveStatus string    `json:"live_status"`
	Label      string    `json:"label"`
}

// ExpiresMillis returns the expiry timestamp in unix milliseconds, the unit
// all window boundaries are expressed in.
func (e *Event) ExpiresMillis() int64 {
	return int64(e.ExpiresTS.Float() * 1000)
}

// IsOutright reports whether the event is a long-term/outright market rather
// than a fixture between two teams. Fixtures carry "Home - Away" labels;
// outrights do not. Outrights are excluded from window counting.
func (e *Event) IsOutright() bool {
	return !strings.Contains(e.Label, " - ")
}
