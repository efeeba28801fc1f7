// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sport owns the forward-looking category cache: one slot per
// language, rebuilt wholesale from the category/event dumps and patched in
// place by live-feed updates between rebuilds.
package sport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"sportboard/internal/models"
	"sportboard/internal/timing"
	"sportboard/internal/tree"
)

// Dump keys the controller expects in a rebuild payload. The event dump is
// fetched once for the default language; counts are language independent.
const DumpKeyEvents = "event_dump_de"

// DumpKeyCategories returns the payload key of a language's category dump.
func DumpKeyCategories(lang string) string {
	return "active_categories_" + lang
}

// slot is the materialized cache for one language. Replaced wholesale on
// rebuild, mutated in place by patches.
type slot struct {
	flat  map[int64]*models.Category
	tree  map[int64]*models.Category
	order []int64
}

// Controller serves category queries and applies incremental live patches.
// One writer at a time (rebuild or patch), any number of readers.
type Controller struct {
	mu    sync.RWMutex
	cache map[string]*slot

	engine      *timing.Engine
	langs       []string
	defaultLang string
	mergePoints map[int64]bool
	ignored     map[int64]bool
	nudge       func()
}

// New creates an empty controller. Queries against the empty cache return
// empty results, never errors; data arrives with the first Rebuild.
func New(engine *timing.Engine, langs []string, defaultLang string, mergePoints, ignored map[int64]bool) *Controller {
	return &Controller{
		cache:       map[string]*slot{},
		engine:      engine,
		langs:       langs,
		defaultLang: defaultLang,
		mergePoints: mergePoints,
		ignored:     ignored,
	}
}

// SetNudge installs the callback that pulls the next dump fetch forward
// after a live patch was applied.
func (c *Controller) SetNudge(fn func()) { c.nudge = fn }

// Rebuild replaces every language slot from a fresh dump payload. The new
// slots are built fully off to the side and swapped in under the write lock,
// so readers see either the old or the new cache, never a half-built one.
// Unlike the live-update path, structural problems here are surfaced to the
// caller: a failed rebuild should be visible and retried on the next tick.
func (c *Controller) Rebuild(payload map[string]json.RawMessage) error {
	events, err := parseEvents(payload[DumpKeyEvents])
	if err != nil {
		return err
	}

	ws := c.engine.Snapshot()
	next := make(map[string]*slot, len(c.langs))
	for _, lang := range c.langs {
		raw, ok := payload[DumpKeyCategories(lang)]
		if !ok {
			return fmt.Errorf("rebuild: missing categories dump for %q", lang)
		}
		var dump struct {
			Categories []models.RawCategory `json:"categories"`
		}
		if err := json.Unmarshal(raw, &dump); err != nil {
			return fmt.Errorf("rebuild: decode categories dump for %q: %w", lang, err)
		}

		active := make([]models.RawCategory, 0, len(dump.Categories))
		var order []int64
		for _, rc := range dump.Categories {
			if rc.ActivatedID.Int() == 0 {
				continue
			}
			active = append(active, rc)
		}
		for _, rc := range dump.Categories {
			if rc.Level.Int() < 2 {
				order = append(order, rc.ID.Int())
			}
		}

		res := tree.Build(active, events, ws, tree.Options{MergePoints: c.mergePoints})
		next[lang] = &slot{flat: res.Flat, tree: res.Tree, order: order}
	}

	c.mu.Lock()
	c.cache = next
	c.mu.Unlock()

	slog.Info("sport categories rebuilt",
		"languages", len(next),
		"events", len(events),
		"window_generation", ws.Generation,
	)
	return nil
}

// parseEvents decodes the event dump, dropping outright/long-term markets.
// Keys are sorted so a rebuild from identical input is fully deterministic.
func parseEvents(raw json.RawMessage) ([]*models.Event, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("rebuild: missing event dump")
	}
	var dump struct {
		Events map[string]*models.Event `json:"events"`
	}
	if err := json.Unmarshal(raw, &dump); err != nil {
		return nil, fmt.Errorf("rebuild: decode event dump: %w", err)
	}
	keys := make([]string, 0, len(dump.Events))
	for k := range dump.Events {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	events := make([]*models.Event, 0, len(keys))
	for _, k := range keys {
		ev := dump.Events[k]
		if ev == nil || ev.IsOutright() {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (c *Controller) slotFor(lang string) *slot {
	if lang == "" {
		lang = c.defaultLang
	}
	return c.cache[lang]
}

// CategoryByID returns the flat (childless) category, or nil when unknown.
func (c *Controller) CategoryByID(lang string, id int64) *models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.slotFor(lang)
	if s == nil {
		return nil
	}
	return s.flat[id].Clone()
}

// CategoriesByIDs resolves each id against the flat map, silently skipping
// unknown ones.
func (c *Controller) CategoriesByIDs(lang string, ids []int64) []*models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.slotFor(lang)
	if s == nil {
		return nil
	}
	var out []*models.Category
	for _, id := range ids {
		if cat := s.flat[id]; cat != nil {
			out = append(out, cat.Clone())
		}
	}
	return out
}

// Tree returns the top-category view filtered down to categories with a
// positive counter for the given window filter, ordered by the upstream
// sorting order. An empty filter or "all" returns the unfiltered view.
func (c *Controller) Tree(lang, filter string) []*models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.slotFor(lang)
	if s == nil {
		return nil
	}
	nodes := s.topNodes()
	if filter == "" || filter == "all" {
		out := make([]*models.Category, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, n.Clone())
		}
		return out
	}
	return tree.FilterByWindow(filter, nodes)
}

// SortingOrder returns the ids of all level-1 categories in upstream order.
func (c *Controller) SortingOrder(lang string) []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.slotFor(lang)
	if s == nil {
		return nil
	}
	return append([]int64(nil), s.order...)
}

// topNodes lists the collapsed top-category nodes in sorting order, with any
// stragglers appended by id.
func (s *slot) topNodes() []*models.Category {
	out := make([]*models.Category, 0, len(s.tree))
	seen := make(map[int64]bool, len(s.tree))
	for _, id := range s.order {
		if n := s.tree[id]; n != nil && !seen[id] {
			seen[id] = true
			out = append(out, n)
		}
	}
	rest := make([]int64, 0)
	for id := range s.tree {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, id := range rest {
		out = append(out, s.tree[id])
	}
	return out
}

// Search finds categories whose label contains the query, case-insensitive.
// Queries shorter than two characters return nothing, as do ignored ids.
func (c *Controller) Search(lang, query string) []SearchResult {
	if len(query) < 2 {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.slotFor(lang)
	if s == nil {
		return nil
	}

	needle := strings.ToLower(query)
	ids := make([]int64, 0, len(s.flat))
	for id := range s.flat {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []SearchResult
	for _, id := range ids {
		cat := s.flat[id]
		if c.ignored[cat.ID] || c.ignored[cat.CID] {
			continue
		}
		if strings.Contains(strings.ToLower(cat.Label), needle) {
			out = append(out, SearchResult{
				ID:            cat.ID,
				Label:         cat.Label,
				TopCategoryID: cat.TopCategoryID,
			})
		}
	}
	return out
}

// SearchResult is one hit of a label search.
type SearchResult struct {
	ID            int64  `json:"id"`
	Label         string `json:"label"`
	TopCategoryID int64  `json:"top_category_id"`
}

// liveNowCounters are the counters a live-start bumps.
var liveNowCounters = []string{"count_live_now"}

// liveEndCounters are the counters a live-end winds down on this cache: the
// match leaves the "live now" and "coming live today" buckets.
var liveEndCounters = []string{"count_live_now", "count_today_coming_live"}

// ProcessLiveStart applies a live-start update to the default language's
// top-category tree. Malformed payloads and unknown categories are silent
// no-ops reported through the typed result.
func (c *Controller) ProcessLiveStart(payload []byte) tree.PatchResult {
	upd, err := models.ParseLiveUpdate(payload)
	if err != nil || upd == nil {
		return tree.PatchResult{Outcome: tree.Skipped, Reason: "malformed payload"}
	}
	c.mu.Lock()
	s := c.slotFor(c.defaultLang)
	if s == nil {
		c.mu.Unlock()
		return tree.PatchResult{Outcome: tree.Skipped, Reason: "empty cache"}
	}
	res := tree.ApplyLiveStart(s.tree, upd, liveNowCounters)
	c.mu.Unlock()

	if res.Outcome == tree.Applied && c.nudge != nil {
		c.nudge()
	}
	return res
}

// ProcessLiveEnd applies a live-end update: the live counters are wound down
// (floored at zero) on the top category and the matching child.
func (c *Controller) ProcessLiveEnd(payload []byte) tree.PatchResult {
	upd, err := models.ParseLiveUpdate(payload)
	if err != nil || upd == nil {
		return tree.PatchResult{Outcome: tree.Skipped, Reason: "malformed payload"}
	}
	c.mu.Lock()
	s := c.slotFor(c.defaultLang)
	if s == nil {
		c.mu.Unlock()
		return tree.PatchResult{Outcome: tree.Skipped, Reason: "empty cache"}
	}
	res := tree.ApplyLiveEnd(s.tree, upd, liveEndCounters, nil)
	c.mu.Unlock()

	if res.Outcome == tree.Applied && c.nudge != nil {
		c.nudge()
	}
	return res
}
