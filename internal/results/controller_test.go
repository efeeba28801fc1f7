// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package results

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"sportboard/internal/models"
	"sportboard/internal/timing"
	"sportboard/internal/tree"
)

var testNow = time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

func fixedEngine(t *testing.T) *timing.Engine {
	t.Helper()
	e := timing.NewEngine(time.UTC)
	e.Refresh(testNow)
	return e
}

// memorySink records every persisted result for assertions.
type memorySink struct {
	mu   sync.Mutex
	recs []*models.ResultRecord
	done chan struct{}
}

func newMemorySink() *memorySink {
	return &memorySink{done: make(chan struct{}, 8)}
}

func (s *memorySink) Put(ctx context.Context, rec *models.ResultRecord) error {
	s.mu.Lock()
	s.recs = append(s.recs, rec)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func (s *memorySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

// resultsDump is one finished event yesterday with an unordered category
// chain: the dump lists the leaf before the root.
func resultsDump(expires time.Time) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"9001": {
			"id": 9001,
			"bid": 555,
			"expires_ts": %d,
			"cid": 541,
			"cats": [
				{"id": 541, "label": {"de": "Bundesliga", "en": "Bundesliga"}, "topcatid": 100},
				{"id": 4, "label": {"de": "Fussball", "en": "Football"}, "topcatid": 0},
				{"id": 100, "label": {"de": "Deutschland", "en": "Germany"}, "topcatid": 4}
			],
			"teams": {"home": {"label": "Bayern"}, "away": {"label": "Dortmund"}},
			"label": {"de": "Bayern - Dortmund", "en": "Bayern - Dortmund"}
		}
	}`, expires.Unix()))
}

func rebuilt(t *testing.T, sink Sink) *Controller {
	t.Helper()
	c := New(fixedEngine(t), nil, sink)
	if err := c.Rebuild(resultsDump(testNow.Add(-24 * time.Hour))); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return c
}

func TestRebuildOrdersChain(t *testing.T) {
	c := rebuilt(t, nil)

	rec := c.EventByID(9001)
	if rec == nil {
		t.Fatal("event missing after rebuild")
	}
	wantOrder := []int64{4, 100, 541}
	if len(rec.Cats) != len(wantOrder) {
		t.Fatalf("chain length = %d, want %d", len(rec.Cats), len(wantOrder))
	}
	for i, want := range wantOrder {
		if rec.Cats[i].ID != want {
			t.Errorf("chain[%d] = %d, want %d", i, rec.Cats[i].ID, want)
		}
	}
	if rec.CategoryPath.DE != "Fussball / Deutschland / Bundesliga" {
		t.Errorf("category path = %q", rec.CategoryPath.DE)
	}
}

func TestRebuildEndedCounts(t *testing.T) {
	c := rebuilt(t, nil)

	top := c.CategoryByID(4)
	if top == nil {
		t.Fatal("top category missing")
	}
	if got := top.Count("count_1_days_ago"); got != 1 {
		t.Errorf("count_1_days_ago = %d, want 1", got)
	}
	if got := top.Count("count_today"); got != 0 {
		t.Errorf("count_today = %d, want 0", got)
	}

	// Every chain entry accumulates the same ended counts.
	leaf := c.CategoryByID(541)
	if got := leaf.Count("count_1_days_ago"); got != 1 {
		t.Errorf("leaf count_1_days_ago = %d, want 1", got)
	}
	if leaf.TopCategoryID != 4 {
		t.Errorf("leaf top_category_id = %d, want 4", leaf.TopCategoryID)
	}
}

func TestTreeGroupsUnderTop(t *testing.T) {
	c := rebuilt(t, nil)

	nodes := c.Tree("1_days_ago")
	if len(nodes) != 1 || nodes[0].ID != 4 {
		t.Fatalf("tree = %v, want the football top node", nodes)
	}
	found := false
	for _, ch := range nodes[0].Children {
		if ch.ID == 541 {
			found = true
		}
	}
	if !found {
		t.Error("terminal chain category missing from the top node's children")
	}
}

func TestChainHopCap(t *testing.T) {
	// A ten-deep chain: with the default cap of five hops the ordered chain
	// stops early instead of walking the full linkage.
	cats := `[{"id": 1, "label": {"de": "L1"}, "topcatid": 0}`
	for i := 2; i <= 10; i++ {
		cats += fmt.Sprintf(`,{"id": %d, "label": {"de": "L%d"}, "topcatid": %d}`, i, i, i-1)
	}
	cats += `]`
	dump := json.RawMessage(fmt.Sprintf(`{
		"9002": {"id": 9002, "expires_ts": %d, "cid": 10, "cats": %s}
	}`, testNow.Add(-24*time.Hour).Unix(), cats))

	c := New(fixedEngine(t), nil, nil)
	if err := c.Rebuild(dump); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	rec := c.EventByID(9002)
	if got := len(rec.Cats); got != DefaultMaxChainHops+1 {
		t.Errorf("chain length = %d, want root plus %d hops", got, DefaultMaxChainHops)
	}
}

func TestFilter(t *testing.T) {
	c := rebuilt(t, nil)
	dayAgo := float64(testNow.Add(-24 * time.Hour).Unix())

	tests := []struct {
		name string
		q    FilterQuery
		want int
	}{
		{name: "by category leaf", q: FilterQuery{FilterBy: "CATEGORY", IDs: []int64{541}}, want: 1},
		{name: "by category ancestor", q: FilterQuery{IDs: []int64{4}}, want: 1},
		{name: "by category miss", q: FilterQuery{IDs: []int64{777}}, want: 0},
		{name: "by betradar", q: FilterQuery{FilterBy: "BETRADAR", IDs: []int64{555}}, want: 1},
		{name: "by betradar miss", q: FilterQuery{FilterBy: "BETRADAR", IDs: []int64{541}}, want: 0},
		{name: "date from inclusive", q: FilterQuery{DateFrom: dayAgo}, want: 1},
		{name: "date from after", q: FilterQuery{DateFrom: dayAgo + 1}, want: 0},
		{name: "date to exclusive", q: FilterQuery{DateTo: dayAgo}, want: 0},
		{name: "date to after", q: FilterQuery{DateTo: dayAgo + 1}, want: 1},
		{name: "unfiltered", q: FilterQuery{}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(c.Filter(tt.q)); got != tt.want {
				t.Errorf("got %d records, want %d", got, tt.want)
			}
		})
	}
}

func TestProcessLiveEnd(t *testing.T) {
	sink := newMemorySink()
	c := rebuilt(t, sink)

	// Mark the match live first so the live counter has something to unwind.
	start := []byte(`{"evid": 9005, "category_id": 541, "category_tree": [4, 100]}`)
	if res := c.ProcessLiveStart(start); res.Outcome != tree.Applied {
		t.Fatalf("live start skipped: %s", res.Reason)
	}

	end := []byte(`{
		"evid": 9005,
		"betradar_id": 777,
		"category_id": 541,
		"category_tree": [4, 100],
		"label": "Bayern - Dortmund",
		"path": "Fussball / Deutschland / Bundesliga",
		"datetime2": "2026-07-15T11:30:00Z"
	}`)
	score := json.RawMessage(`{"score_str": "2:1", "periods": [{"type": "1H", "data": "1:0"}]}`)

	res := c.ProcessLiveEnd(end, score)
	if res.Outcome != tree.Applied {
		t.Fatalf("live end skipped: %s", res.Reason)
	}

	rec := c.EventByID(9005)
	if rec == nil {
		t.Fatal("finished event missing from cache")
	}
	if rec.BID != 777 {
		t.Errorf("bid = %d, want 777", rec.BID)
	}
	if rec.JSON.Data.ScoreStr != "2:1" {
		t.Errorf("score = %q, want 2:1", rec.JSON.Data.ScoreStr)
	}

	// The counters shifted on the patched tree.
	nodes := c.Tree("all")
	if len(nodes) != 1 {
		t.Fatalf("tree has %d tops, want 1", len(nodes))
	}
	if got := nodes[0].Count("count_live_now"); got != 0 {
		t.Errorf("count_live_now = %d, want 0", got)
	}
	if got := nodes[0].Count("count_today"); got != 1 {
		t.Errorf("count_today = %d, want 1", got)
	}

	// The sink receives the record asynchronously.
	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatal("sink was never called")
	}
	if sink.count() != 1 {
		t.Errorf("sink puts = %d, want 1", sink.count())
	}
}

func TestProcessLiveEndSkippedKeepsCache(t *testing.T) {
	sink := newMemorySink()
	c := rebuilt(t, sink)

	res := c.ProcessLiveEnd([]byte(`{"evid": 1, "category_tree": [77]}`), nil)
	if res.Outcome != tree.Skipped {
		t.Fatalf("outcome = %v, want Skipped", res.Outcome)
	}
	if c.EventByID(1) != nil {
		t.Error("skipped end must not insert a record")
	}
	if sink.count() != 0 {
		t.Error("skipped end must not hit the sink")
	}
}
