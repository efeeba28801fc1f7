// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package results owns the backward-looking cache: finished events, the
// category tree reconstructed from their ancestor chains, and the ended
// time-window counts. Finished events arriving over the live feed are folded
// in incrementally and forwarded to the persistence sink.
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"sportboard/internal/models"
	"sportboard/internal/timing"
	"sportboard/internal/tree"
)

// DefaultMaxChainHops caps how many linkage hops a category-chain
// reconstruction may take. The upstream system used a fixed count of 5;
// kept configurable rather than silently removed.
const DefaultMaxChainHops = 5

// Sink receives every finished event converted to its canonical record.
type Sink interface {
	Put(ctx context.Context, rec *models.ResultRecord) error
}

type slot struct {
	events map[int64]*models.ResultRecord
	tree   map[int64]*models.Category
	flat   map[int64]*models.Category
}

// Controller serves result queries and maintains the ended-events cache.
type Controller struct {
	mu    sync.RWMutex
	cache *slot

	engine       *timing.Engine
	mergePoints  map[int64]bool
	maxChainHops int
	sink         Sink
	nudge        func()
}

// New creates an empty results controller.
func New(engine *timing.Engine, mergePoints map[int64]bool, sink Sink) *Controller {
	return &Controller{
		engine:       engine,
		mergePoints:  mergePoints,
		maxChainHops: DefaultMaxChainHops,
		sink:         sink,
	}
}

// SetNudge installs the callback that pulls the next dump fetch forward.
func (c *Controller) SetNudge(fn func()) { c.nudge = fn }

// Rebuild replaces the cache from the ended-events dump: a map of canonical
// result records keyed by event id.
func (c *Controller) Rebuild(raw json.RawMessage) error {
	var dump map[string]*models.ResultRecord
	if err := json.Unmarshal(raw, &dump); err != nil {
		return fmt.Errorf("rebuild: decode results dump: %w", err)
	}

	ws := c.engine.Snapshot()
	next := &slot{
		events: make(map[int64]*models.ResultRecord, len(dump)),
		flat:   make(map[int64]*models.Category),
	}

	keys := make([]string, 0, len(dump))
	for k := range dump {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rec := dump[k]
		if rec == nil {
			continue
		}
		c.ingest(next, rec, ws)
	}

	next.tree = formTree(next.flat)

	c.mu.Lock()
	c.cache = next
	c.mu.Unlock()

	slog.Info("results rebuilt", "events", len(next.events), "categories", len(next.flat))
	return nil
}

// ingest folds one record into the slot: orders its category chain, derives
// the per-language category path, materializes the chain's flat categories
// and sums the ended-window counts into each of them.
func (c *Controller) ingest(s *slot, rec *models.ResultRecord, ws *timing.WindowSet) {
	counts := timing.ClassifyEnded(ws, &models.Event{ExpiresTS: models.FlexFloat(rec.ExpiresTS)})

	rec.Cats = c.orderChain(rec)
	rec.CategoryPath = chainPath(rec.Cats)

	for idx, rc := range rec.Cats {
		cat := s.flat[rc.ID]
		if cat == nil {
			cat = &models.Category{
				ID:            rc.ID,
				CID:           rc.ID,
				ParentID:      rc.TopCatID,
				Level:         idx + 1,
				Label:         rc.Label.DE,
				Detail:        rc.Label.DE,
				TopCategoryID: rec.Cats[0].ID,
				Path:          chainSegment(rec.CategoryPath.DE, idx),
				Last:          (idx == len(rec.Cats)-1 && !c.mergePoints[rc.TopCatID]) || c.mergePoints[rc.ID],
			}
			s.flat[rc.ID] = cat
		}
		if c.mergePoints[rc.ID] && idx+1 < len(rec.Cats) {
			cat.MergedTree = appendID(cat.MergedTree, rec.Cats[idx+1].ID)
		}
		timing.SumInto(counts, cat)
	}

	s.events[rec.ID] = rec
}

// orderChain rebuilds the root-first category chain from the unordered cats
// list via the topcatid linkage: start at the entry pointing at 0, then
// follow until the leaf (rec.CID) is reached or the hop cap fires.
func (c *Controller) orderChain(rec *models.ResultRecord) []models.ResultCat {
	var root *models.ResultCat
	for i := range rec.Cats {
		if rec.Cats[i].TopCatID == 0 {
			root = &rec.Cats[i]
			break
		}
	}
	if root == nil {
		return rec.Cats
	}

	chain := []models.ResultCat{*root}
	current := root.ID
	for hops := 0; current != rec.CID && hops < c.maxChainHops; hops++ {
		found := false
		for i := range rec.Cats {
			if rec.Cats[i].TopCatID == current {
				chain = append(chain, rec.Cats[i])
				current = rec.Cats[i].ID
				found = true
				break
			}
		}
		if !found {
			break
		}
	}
	return chain
}

// chainPath joins the chain labels per language: "Fußball / Bundesliga".
func chainPath(cats []models.ResultCat) models.Label {
	var de, en []string
	for _, rc := range cats {
		de = append(de, rc.Label.DE)
		en = append(en, rc.Label.EN)
	}
	return models.Label{
		DE: strings.Join(de, " / "),
		EN: strings.Join(en, " / "),
	}
}

// chainSegment returns the intermediate path segments for the chain entry at
// idx (everything between the root and the entry itself).
func chainSegment(path string, idx int) string {
	if idx < 2 {
		return ""
	}
	parts := strings.Split(path, "/")
	end := idx
	if end > len(parts)-1 {
		end = len(parts) - 1
	}
	if end < 1 {
		return ""
	}
	return strings.Join(parts[1:end], "/")
}

func appendID(ids []int64, id int64) []int64 {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// formTree groups terminal chain categories under their level-1 ancestor.
// Nodes are shared with the flat map on purpose: a live patch through the
// tree is immediately visible in flat lookups, exactly like a rebuild.
func formTree(flat map[int64]*models.Category) map[int64]*models.Category {
	ids := make([]int64, 0, len(flat))
	for id := range flat {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[int64]*models.Category)
	for _, id := range ids {
		cat := flat[id]
		if cat.TopCategoryID == 0 || !cat.Last || cat.TopCategoryID == cat.ID {
			continue
		}
		top := flat[cat.TopCategoryID]
		if top == nil || top.Level != 1 {
			continue
		}
		top.Children = append(top.Children, cat)
		out[top.ID] = top
	}
	return out
}

// EventByID returns the cached result record, or nil.
func (c *Controller) EventByID(id int64) *models.ResultRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cache == nil {
		return nil
	}
	return c.cache.events[id]
}

// CategoryByID returns the flat result category, or nil.
func (c *Controller) CategoryByID(id int64) *models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cache == nil {
		return nil
	}
	return c.cache.flat[id].Clone()
}

// CategoriesByIDs resolves ids against the flat map, skipping unknown ones.
func (c *Controller) CategoriesByIDs(ids []int64) []*models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cache == nil {
		return nil
	}
	var out []*models.Category
	for _, id := range ids {
		if cat := c.cache.flat[id]; cat != nil {
			out = append(out, cat.Clone())
		}
	}
	return out
}

// Tree returns the result tree filtered by a window name, top nodes ordered
// by id. An empty filter or "all" returns the unfiltered view.
func (c *Controller) Tree(filter string) []*models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cache == nil {
		return nil
	}
	ids := make([]int64, 0, len(c.cache.tree))
	for id := range c.cache.tree {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	nodes := make([]*models.Category, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, c.cache.tree[id])
	}
	if filter == "" || filter == "all" {
		out := make([]*models.Category, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, n.Clone())
		}
		return out
	}
	return tree.FilterByWindow(filter, nodes)
}

// FilterQuery narrows the finished-event listing.
type FilterQuery struct {
	// FilterBy selects the id namespace: "CATEGORY" (default) matches ids
	// against the category chain, "BETRADAR" against the betradar id.
	FilterBy string
	IDs      []int64
	// DateFrom/DateTo bound expires_ts in unix seconds; zero means open.
	DateFrom float64
	DateTo   float64
}

// Filter lists finished events matching the query, ordered by event id.
func (c *Controller) Filter(q FilterQuery) []*models.ResultRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cache == nil {
		return nil
	}

	ids := make([]int64, 0, len(c.cache.events))
	for id := range c.cache.events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*models.ResultRecord
	for _, id := range ids {
		rec := c.cache.events[id]
		if len(q.IDs) > 0 && !matchIDs(rec, q) {
			continue
		}
		if q.DateFrom != 0 && rec.ExpiresTS < q.DateFrom {
			continue
		}
		if q.DateTo != 0 && rec.ExpiresTS >= q.DateTo {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchIDs(rec *models.ResultRecord, q FilterQuery) bool {
	for _, id := range q.IDs {
		if q.FilterBy == "BETRADAR" {
			if rec.BID == id {
				return true
			}
			continue
		}
		for _, rc := range rec.Cats {
			if rc.ID == id {
				return true
			}
		}
	}
	return false
}

// ProcessLiveStart bumps count_live_now on the matching top category and
// child when a match goes live.
func (c *Controller) ProcessLiveStart(payload []byte) tree.PatchResult {
	upd, err := models.ParseLiveUpdate(payload)
	if err != nil || upd == nil {
		return tree.PatchResult{Outcome: tree.Skipped, Reason: "malformed payload"}
	}
	c.mu.Lock()
	if c.cache == nil {
		c.mu.Unlock()
		return tree.PatchResult{Outcome: tree.Skipped, Reason: "empty cache"}
	}
	res := tree.ApplyLiveStart(c.cache.tree, upd, []string{"count_live_now"})
	c.mu.Unlock()

	if res.Outcome == tree.Applied && c.nudge != nil {
		c.nudge()
	}
	return res
}

// ProcessLiveEnd folds a finished event into the cache: the update is
// converted to its canonical record, inserted into the events map, handed to
// the persistence sink, and the affected counters shift from live to ended
// (count_live_now down, count_today up).
func (c *Controller) ProcessLiveEnd(payload []byte, score json.RawMessage) tree.PatchResult {
	upd, err := models.ParseLiveUpdate(payload)
	if err != nil || upd == nil {
		return tree.PatchResult{Outcome: tree.Skipped, Reason: "malformed payload"}
	}

	c.mu.Lock()
	if c.cache == nil {
		c.mu.Unlock()
		return tree.PatchResult{Outcome: tree.Skipped, Reason: "empty cache"}
	}
	res := tree.ApplyLiveEnd(c.cache.tree, upd, []string{"count_live_now"}, []string{"count_today"})
	var rec *models.ResultRecord
	if res.Outcome == tree.Applied {
		rec = ConvertEventToResult(upd, score)
		c.cache.events[rec.ID] = rec
	}
	c.mu.Unlock()

	if res.Outcome != tree.Applied {
		return res
	}
	if c.sink != nil {
		// Fire and forget: a sink failure must not stall the update stream.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.sink.Put(ctx, rec); err != nil {
				slog.Error("result sink put failed", "event_id", rec.ID, "error", err)
			}
		}()
	}
	if c.nudge != nil {
		c.nudge()
	}
	return res
}
