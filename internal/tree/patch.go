// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import "sportboard/internal/models"

// Outcome says whether a patch touched the cache.
type Outcome int

const (
	Applied Outcome = iota
	Skipped
)

// PatchResult is the typed answer of an incremental patch. A Skipped result
// carries the reason; callers on the live-feed path treat it as a silent
// no-op, which keeps one bad message from ever halting the update stream.
type PatchResult struct {
	Outcome Outcome
	Reason  string
}

func skipped(reason string) PatchResult {
	return PatchResult{Outcome: Skipped, Reason: reason}
}

// ApplyLiveStart increments the given counters by one on the update's top
// category and on the matching child. The cache is only touched when the
// top category referenced by the update exists.
func ApplyLiveStart(top map[int64]*models.Category, upd *models.LiveUpdate, counters []string) PatchResult {
	node, res := resolveTop(top, upd)
	if node == nil {
		return res
	}
	bump(node, counters)
	if child := findChild(node, upd.CategoryID.Int()); child != nil {
		bump(child, counters)
	}
	return PatchResult{Outcome: Applied}
}

// ApplyLiveEnd decrements the dec counters (floored at zero, see
// Category.DecCount) and increments the inc counters on the top category and
// the matching child.
func ApplyLiveEnd(top map[int64]*models.Category, upd *models.LiveUpdate, dec, inc []string) PatchResult {
	node, res := resolveTop(top, upd)
	if node == nil {
		return res
	}
	shift(node, dec, inc)
	if child := findChild(node, upd.CategoryID.Int()); child != nil {
		shift(child, dec, inc)
	}
	return PatchResult{Outcome: Applied}
}

func resolveTop(top map[int64]*models.Category, upd *models.LiveUpdate) (*models.Category, PatchResult) {
	if len(top) == 0 {
		return nil, skipped("empty cache")
	}
	if upd == nil {
		return nil, skipped("empty update")
	}
	id := upd.TopCategoryID()
	if id == 0 {
		return nil, skipped("missing category tree")
	}
	node := top[id]
	if node == nil {
		return nil, skipped("unknown top category")
	}
	return node, PatchResult{}
}

func findChild(node *models.Category, id int64) *models.Category {
	for _, ch := range node.Children {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}

func bump(c *models.Category, counters []string) {
	for _, name := range counters {
		c.AddCount(name, 1)
	}
}

func shift(c *models.Category, dec, inc []string) {
	for _, name := range dec {
		c.DecCount(name)
	}
	for _, name := range inc {
		c.AddCount(name, 1)
	}
}
