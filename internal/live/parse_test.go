// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package live

import (
	"encoding/json"
	"testing"
)

func TestParseUpdates(t *testing.T) {
	t.Run("single update body", func(t *testing.T) {
		msg := []byte(`{"data":[{"body":{"label":"uTimer","data":{"eid":7,"running":true,"period_id":"1H","elapsed":12}}}]}`)
		upd := ParseUpdates(msg)
		if len(upd.Timers) != 1 || len(upd.Scores) != 0 {
			t.Fatalf("got %d timers / %d scores, want 1 / 0", len(upd.Timers), len(upd.Scores))
		}
		var td timerData
		if err := json.Unmarshal(upd.Timers[0].Data, &td); err != nil {
			t.Fatal(err)
		}
		if td.EID != 7 || !td.Running || td.PeriodID != "1H" {
			t.Errorf("timer data = %+v", td)
		}
	})

	t.Run("batched update body", func(t *testing.T) {
		msg := []byte(`{"data":[{"body":[
			{"label":"uTimer","data":{"eid":1}},
			{"label":"uScore","data":{"eid":1,"score_str":"1:0"}},
			{"label":"uOdds","data":{"eid":1}}
		]}]}`)
		upd := ParseUpdates(msg)
		if len(upd.Timers) != 1 {
			t.Errorf("timers = %d, want 1", len(upd.Timers))
		}
		if len(upd.Scores) != 1 {
			t.Errorf("scores = %d, want 1", len(upd.Scores))
		}
		// Labels outside the dispatcher's vocabulary are dropped.
	})

	t.Run("multiple frames", func(t *testing.T) {
		msg := []byte(`{"data":[
			{"body":{"label":"uTimer","data":{"eid":1}}},
			{"body":{"label":"uTimer","data":{"eid":2}}}
		]}`)
		if upd := ParseUpdates(msg); len(upd.Timers) != 2 {
			t.Errorf("timers = %d, want 2", len(upd.Timers))
		}
	})

	t.Run("malformed inputs are empty", func(t *testing.T) {
		inputs := [][]byte{
			nil,
			[]byte(`not json`),
			[]byte(`{"data": "nope"}`),
			[]byte(`{"data":[{"body":[{"label":`),
			[]byte(`{}`),
		}
		for _, in := range inputs {
			upd := ParseUpdates(in)
			if len(upd.Timers) != 0 || len(upd.Scores) != 0 {
				t.Errorf("ParseUpdates(%q) returned updates, want none", in)
			}
		}
	})

	t.Run("one bad frame does not poison the rest", func(t *testing.T) {
		msg := []byte(`{"data":[
			{"body": 42},
			{"body":{"label":"uTimer","data":{"eid":9}}}
		]}`)
		if upd := ParseUpdates(msg); len(upd.Timers) != 1 {
			t.Errorf("timers = %d, want the valid frame parsed", len(upd.Timers))
		}
	})
}
