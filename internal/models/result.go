// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"sort"
)

// Label is a per-language display text pair.
type Label struct {
	DE string `json:"de"`
	EN string `json:"en"`
}

// ResultCat is one entry of a result record's category chain. TopCatID is
// the id of the previous chain entry (0 for the root), which is how the
// chain order is reconstructed after the fact.
type ResultCat struct {
	ID       int64 `json:"id"`
	Label    Label `json:"label"`
	TopCatID int64 `json:"topcatid"`
}

// Team is one side of a fixture.
type Team struct {
	Label string `json:"label"`
}

// Teams holds both sides of a fixture.
type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

// ScorePeriod is a single period entry of a score payload after
// normalization (upstream ships periods as an object keyed by period type).
type ScorePeriod struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ScoreData is the score payload attached to a finished event.
type ScoreData struct {
	ScoreStr string        `json:"score_str"`
	Periods  []ScorePeriod `json:"periods"`
}

// UnmarshalJSON accepts both period encodings seen upstream: the normalized
// list and the legacy object keyed by period type.
func (s *ScoreData) UnmarshalJSON(data []byte) error {
	var raw struct {
		ScoreStr string          `json:"score_str"`
		Periods  json.RawMessage `json:"periods"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ScoreStr = raw.ScoreStr
	s.Periods = nil
	if len(raw.Periods) == 0 {
		return nil
	}
	switch raw.Periods[0] {
	case '[':
		return json.Unmarshal(raw.Periods, &s.Periods)
	case '{':
		var byType map[string]json.RawMessage
		if err := json.Unmarshal(raw.Periods, &byType); err != nil {
			return err
		}
		types := make([]string, 0, len(byType))
		for t := range byType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			s.Periods = append(s.Periods, ScorePeriod{Type: t, Data: byType[t]})
		}
	}
	return nil
}

// ScoreEnvelope wraps the score payload under the wire key "json".
type ScoreEnvelope struct {
	Data ScoreData `json:"data"`
}

// ResultRecord is the canonical representation of a finished event, as kept
// in the results cache and handed to the persistence sink.
type ResultRecord struct {
	ID           int64         `json:"id"`
	BID          int64         `json:"bid"`
	ExpiresTS    float64       `json:"expires_ts"`
	CID          int64         `json:"cid"`
	Cats         []ResultCat   `json:"cats"`
	Teams        Teams         `json:"teams"`
	JSON         ScoreEnvelope `json:"json"`
	Label        Label         `json:"label"`
	CategoryPath Label         `json:"category_path"`
}
