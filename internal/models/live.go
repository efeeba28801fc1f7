// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "encoding/json"

// LiveUpdate is an inbound in-play message, either straight off the socket
// feed (timer/score frames) or the ended-event detail fetched when a match
// finishes. Fields the sender does not know are simply absent.
type LiveUpdate struct {
	EID        FlexInt `json:"eid"`
	EvID       FlexInt `json:"evid"`
	BetradarID FlexInt `json:"betradar_id"`
	CategoryID FlexInt `json:"category_id"`

	// CategoryTree is the ancestor id chain, root first. CategoryTree[0] is
	// the top category whose counters an incremental patch targets.
	CategoryTree []FlexInt `json:"category_tree"`

	PeriodID string  `json:"period_id"`
	Running  bool    `json:"running"`
	Elapsed  FlexInt `json:"elapsed"`

	DateTime2 string `json:"datetime2"`
	Path      string `json:"path"`
	Label     string `json:"label"`
}

// TopCategoryID returns the root of the category chain, or zero when the
// update carries no usable chain.
func (u *LiveUpdate) TopCategoryID() int64 {
	if u == nil || len(u.CategoryTree) == 0 {
		return 0
	}
	return u.CategoryTree[0].Int()
}

// ParseLiveUpdate decodes an inbound live-feed payload. A nil update and nil
// error means the payload was empty; malformed JSON is returned as an error
// for the caller to convert into a no-op.
func ParseLiveUpdate(payload []byte) (*LiveUpdate, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var u LiveUpdate
	if err := json.Unmarshal(payload, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
