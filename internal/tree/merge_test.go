// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import (
	"testing"

	"sportboard/internal/models"
)

func TestMergeTreesCountersAdd(t *testing.T) {
	live := []*models.Category{
		{ID: 4, Label: "Foo", Counts: models.Counts{"count_today": 3, "count_live_now": 1}},
	}
	result := []*models.Category{
		{ID: 4, Label: "Fussball", Counts: models.Counts{"count_today": 2, "count_1_days_ago": 5}},
	}

	merged := MergeTrees(live, result)
	if len(merged) != 1 {
		t.Fatalf("got %d nodes, want 1", len(merged))
	}
	m := merged[0]
	if got := m.Count("count_today"); got != 5 {
		t.Errorf("count_today = %d, want 3+2=5", got)
	}
	if got := m.Count("count_live_now"); got != 1 {
		t.Errorf("count_live_now = %d, want 1", got)
	}
	if got := m.Count("count_1_days_ago"); got != 5 {
		t.Errorf("count_1_days_ago = %d, want 5", got)
	}
	// Live wins scalar ties.
	if m.Label != "Foo" {
		t.Errorf("label = %q, want live side's %q", m.Label, "Foo")
	}
}

func TestMergeTreesResultOnlyAppended(t *testing.T) {
	live := []*models.Category{{ID: 4, Label: "Football"}}
	result := []*models.Category{
		{ID: 4, Label: "Fussball"},
		{ID: 7, Label: "Tennis", Counts: models.Counts{"count_1_days_ago": 2}},
	}

	merged := MergeTrees(live, result)
	if len(merged) != 2 {
		t.Fatalf("got %d nodes, want 2", len(merged))
	}
	var tennis *models.Category
	for _, m := range merged {
		if m.ID == 7 {
			tennis = m
		}
	}
	if tennis == nil {
		t.Fatal("result-only node missing")
	}
	if tennis.Count("count_1_days_ago") != 2 {
		t.Error("result-only node lost its counts")
	}
}

func TestMergeTreesSeedsCountToday(t *testing.T) {
	merged := MergeTrees(
		[]*models.Category{{ID: 4, Label: "Football"}},
		[]*models.Category{{ID: 7, Label: "Tennis"}},
	)
	for _, m := range merged {
		if _, ok := m.Counts["count_today"]; !ok {
			t.Errorf("node %d missing the seeded count_today entry", m.ID)
		}
	}
}

func TestMergeTreesScalarFill(t *testing.T) {
	live := []*models.Category{{ID: 4, Label: "Football"}}
	result := []*models.Category{
		{ID: 4, Label: "Fussball", Path: "Sports", Level: 1, TopCategoryID: 4, Last: true, MergedTree: []int64{9, 10}},
	}

	m := MergeTrees(live, result)[0]
	if m.Label != "Football" {
		t.Errorf("label = %q, non-empty live scalar must win", m.Label)
	}
	if m.Path != "Sports" {
		t.Errorf("path = %q, empty live scalar takes the result value", m.Path)
	}
	if m.Level != 1 || m.TopCategoryID != 4 {
		t.Error("zero live scalars take the result values")
	}
	if !m.Last {
		t.Error("last flag ORs")
	}
	if len(m.MergedTree) != 2 {
		t.Errorf("merged_tree = %v, want copied from result side", m.MergedTree)
	}
}

func TestMergeTreesChildrenRecursive(t *testing.T) {
	live := []*models.Category{{
		ID: 4,
		Children: []*models.Category{
			{ID: 541, Counts: models.Counts{"count_today": 1}},
		},
	}}
	result := []*models.Category{{
		ID: 4,
		Children: []*models.Category{
			{ID: 541, Counts: models.Counts{"count_today": 2}},
			{ID: 542, Counts: models.Counts{"count_1_days_ago": 1}},
		},
	}}

	m := MergeTrees(live, result)[0]
	if len(m.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(m.Children))
	}
	byID := map[int64]*models.Category{}
	for _, ch := range m.Children {
		byID[ch.ID] = ch
	}
	if got := byID[541].Count("count_today"); got != 3 {
		t.Errorf("shared child count_today = %d, want 3", got)
	}
	if byID[542] == nil {
		t.Fatal("result-only child missing")
	}
}

func TestMergeTreesDoesNotMutateInputs(t *testing.T) {
	live := []*models.Category{{ID: 4, Counts: models.Counts{"count_today": 3}}}
	result := []*models.Category{{ID: 4, Counts: models.Counts{"count_today": 2}}}

	MergeTrees(live, result)

	if live[0].Count("count_today") != 3 || result[0].Count("count_today") != 2 {
		t.Error("inputs were mutated")
	}
}

func TestMergeTreesUntouchedID(t *testing.T) {
	live := []*models.Category{
		{ID: 4, Counts: models.Counts{"count_today": 1}},
		{ID: 99, Label: "Darts", Counts: models.Counts{"count_today": 7}},
	}
	result := []*models.Category{{ID: 4, Counts: models.Counts{"count_today": 1}}}

	merged := MergeTrees(live, result)
	for _, m := range merged {
		if m.ID == 99 {
			if m.Count("count_today") != 7 || m.Label != "Darts" {
				t.Error("node without a counterpart must pass through unchanged")
			}
			return
		}
	}
	t.Fatal("live-only node missing")
}
