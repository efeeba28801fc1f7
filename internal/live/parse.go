// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package live consumes the in-play socket feed and dispatches timer/score
// updates to the category caches. One bad frame must never halt the stream:
// every parse failure here degrades to an empty update batch.
package live

import "encoding/json"

// Update is one labeled entry of a socket frame. Data is kept raw; the
// controllers parse it themselves on dispatch.
type Update struct {
	Label string          `json:"label"`
	Data  json.RawMessage `json:"data"`
}

// timerData is the subset of a uTimer payload the dispatcher inspects.
type timerData struct {
	EID      int64   `json:"eid"`
	Running  bool    `json:"running"`
	PeriodID string  `json:"period_id"`
	Elapsed  float64 `json:"elapsed"`
}

// frame is one element of a socket message's data array. Body is either a
// single update or a list of updates.
type frame struct {
	Body json.RawMessage `json:"body"`
}

// envelope is the outer socket message.
type envelope struct {
	Data []frame `json:"data"`
}

// Updates is a parsed socket message bucketed by label. Only the labels the
// dispatcher uses are retained.
type Updates struct {
	Timers []Update
	Scores []Update
}

// ParseUpdates buckets a raw socket message into timer and score updates.
// Malformed messages, frames or updates are dropped silently.
func ParseUpdates(message []byte) Updates {
	var out Updates
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		return out
	}
	for _, fr := range env.Data {
		if len(fr.Body) == 0 {
			continue
		}
		if fr.Body[0] == '[' {
			var batch []Update
			if err := json.Unmarshal(fr.Body, &batch); err != nil {
				continue
			}
			for _, u := range batch {
				out.add(u)
			}
			continue
		}
		var u Update
		if err := json.Unmarshal(fr.Body, &u); err != nil {
			continue
		}
		out.add(u)
	}
	return out
}

func (u *Updates) add(upd Update) {
	switch upd.Label {
	case "uTimer":
		u.Timers = append(u.Timers, upd)
	case "uScore":
		u.Scores = append(u.Scores, upd)
	}
}
