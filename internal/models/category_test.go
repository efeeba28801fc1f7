// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"testing"
)

func TestDecCount(t *testing.T) {
	tests := []struct {
		name  string
		start Counts
		want  int64
	}{
		{name: "decrements above one", start: Counts{"count_live_now": 3}, want: 2},
		{name: "one pins to zero", start: Counts{"count_live_now": 1}, want: 0},
		{name: "zero stays zero", start: Counts{"count_live_now": 0}, want: 0},
		{name: "absent pins to zero", start: Counts{}, want: 0},
		{name: "nil map pins to zero", start: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Category{Counts: tt.start}
			c.DecCount("count_live_now")
			if got := c.Count("count_live_now"); got != tt.want {
				t.Errorf("count = %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("never goes negative", func(t *testing.T) {
		c := &Category{Counts: Counts{"count_live_now": 2}}
		for i := 0; i < 10; i++ {
			c.DecCount("count_live_now")
		}
		if got := c.Count("count_live_now"); got != 0 {
			t.Errorf("count = %d, want 0", got)
		}
	})
}

func TestCategoryClone(t *testing.T) {
	orig := &Category{
		ID:         4,
		Label:      "Football",
		Counts:     Counts{"count_today": 2},
		MergedTree: []int64{9},
		Children: []*Category{
			{ID: 541, Counts: Counts{"count_today": 1}},
		},
	}

	cp := orig.Clone()
	cp.AddCount("count_today", 10)
	cp.Children[0].AddCount("count_today", 10)
	cp.MergedTree[0] = 77

	if orig.Count("count_today") != 2 {
		t.Error("clone shares the counts map")
	}
	if orig.Children[0].Count("count_today") != 1 {
		t.Error("clone shares child nodes")
	}
	if orig.MergedTree[0] != 9 {
		t.Error("clone shares the merged_tree slice")
	}

	var nilCat *Category
	if nilCat.Clone() != nil {
		t.Error("nil clones to nil")
	}
}

func TestFlexDecoding(t *testing.T) {
	var raw RawCategory
	input := `{"id":"541","parent_id":100,"level":"3.0","label":"Bundesliga","activated_id":null}`
	if err := json.Unmarshal([]byte(input), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw.ID.Int() != 541 {
		t.Errorf("quoted id = %d, want 541", raw.ID.Int())
	}
	if raw.ParentID.Int() != 100 {
		t.Errorf("numeric parent_id = %d, want 100", raw.ParentID.Int())
	}
	if raw.Level.Int() != 3 {
		t.Errorf("float level = %d, want 3", raw.Level.Int())
	}
	if raw.ActivatedID.Int() != 0 {
		t.Errorf("null activated_id = %d, want 0", raw.ActivatedID.Int())
	}

	t.Run("garbage decodes to zero", func(t *testing.T) {
		var f FlexInt
		if err := json.Unmarshal([]byte(`"n/a"`), &f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Int() != 0 {
			t.Errorf("got %d, want 0", f.Int())
		}
	})

	t.Run("marshals as plain number", func(t *testing.T) {
		out, err := json.Marshal(FlexInt(42))
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != "42" {
			t.Errorf("got %s, want 42", out)
		}
	})
}

func TestEventIsOutright(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"Bayern - Dortmund", false},
		{"Bundesliga Winner 2026/27", true},
		{"", true},
	}
	for _, tt := range tests {
		ev := &Event{Label: tt.label}
		if got := ev.IsOutright(); got != tt.want {
			t.Errorf("IsOutright(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestParseLiveUpdate(t *testing.T) {
	t.Run("empty payload is nil nil", func(t *testing.T) {
		upd, err := ParseLiveUpdate(nil)
		if upd != nil || err != nil {
			t.Errorf("got (%v, %v), want (nil, nil)", upd, err)
		}
	})

	t.Run("malformed payload errors", func(t *testing.T) {
		if _, err := ParseLiveUpdate([]byte(`{broken`)); err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("top category from chain root", func(t *testing.T) {
		upd, err := ParseLiveUpdate([]byte(`{"category_id":"541","category_tree":[4,100]}`))
		if err != nil {
			t.Fatal(err)
		}
		if upd.TopCategoryID() != 4 {
			t.Errorf("top = %d, want 4", upd.TopCategoryID())
		}
	})

	t.Run("no chain means no top", func(t *testing.T) {
		upd, err := ParseLiveUpdate([]byte(`{"category_id":"541"}`))
		if err != nil {
			t.Fatal(err)
		}
		if upd.TopCategoryID() != 0 {
			t.Errorf("top = %d, want 0", upd.TopCategoryID())
		}
	})
}
