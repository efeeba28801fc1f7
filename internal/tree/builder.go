// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree turns flat category dumps into the three materialized views
// the query layer reads: the nested hierarchy, the collapsed top-category
// tree and the flat id-keyed map. It also hosts the tree merger and the
// incremental counter patcher.
package tree

import (
	"sort"
	"strings"

	"sportboard/internal/models"
	"sportboard/internal/timing"
)

// Options carries the static category configuration injected into a build.
type Options struct {
	// MergePoints marks category ids whose children are collapsed into a
	// MergedTree id list instead of staying structural children (used for
	// outright/futures subtrees).
	MergePoints map[int64]bool
}

// Result bundles the views produced by one build pass. Tree and Flat never
// share nodes, so in-place patches on Tree cannot leak into Flat.
type Result struct {
	// Nested maps root id to the fully nested category. Orphans (categories
	// whose parent never resolved) are included here under their own id.
	Nested map[int64]*models.Category
	// Tree maps level-1 category id to a node whose descendants are
	// collapsed into one flat children list.
	Tree map[int64]*models.Category
	// Flat maps every category id to its annotated flat form
	// (top_category_id, count_subcat).
	Flat map[int64]*models.Category
}

// Build constructs all views from a flat category dump and the classified
// event list. Window boundaries come from the supplied snapshot, so a build
// is reproducible as long as the snapshot is held fixed.
func Build(cats []models.RawCategory, events []*models.Event, ws *timing.WindowSet, opts Options) *Result {
	arena := newArena(cats)
	classifyInto(arena, events, ws)
	roots := attach(arena, cats)

	return &Result{
		Nested: roots,
		Tree:   collapse(cloneMap(roots), opts.MergePoints),
		Flat:   flatten(cloneMap(roots)),
	}
}

// newArena flattens the raw dump into an id-keyed working map. Each entry
// starts with its own label as path.
func newArena(cats []models.RawCategory) map[int64]*models.Category {
	arena := make(map[int64]*models.Category, len(cats))
	for _, raw := range cats {
		id := raw.ID.Int()
		if id == 0 {
			continue
		}
		arena[id] = &models.Category{
			ID:       id,
			CID:      id,
			ParentID: raw.ParentID.Int(),
			Level:    int(raw.Level.Int()),
			Label:    raw.Label,
			Path:     raw.Label,
			Detail:   raw.Label,
		}
	}
	return arena
}

// classifyInto sums each event's window counts into its leaf category.
// Events referencing unknown categories are dropped.
func classifyInto(arena map[int64]*models.Category, events []*models.Event, ws *timing.WindowSet) {
	for _, ev := range events {
		leaf := arena[ev.CategoryID.Int()]
		if leaf == nil {
			continue
		}
		timing.SumInto(timing.Classify(ws, ev), leaf)
	}
}

// attach links every category into its parent, deepest level first, summing
// counts upward and computing full ancestor paths. It returns the map of
// remaining roots: level-1 categories plus orphans whose parent id never
// resolved (orphans stay out of the hierarchy but remain addressable).
func attach(arena map[int64]*models.Category, cats []models.RawCategory) map[int64]*models.Category {
	maxLevel := 0
	for _, raw := range cats {
		if lvl := int(raw.Level.Int()); lvl > maxLevel {
			maxLevel = lvl
		}
	}

	attached := make(map[int64]bool, len(arena))
	for lvl := maxLevel; lvl > 1; lvl-- {
		for _, raw := range cats {
			c := arena[raw.ID.Int()]
			if c == nil || c.Level != lvl {
				continue
			}
			parent := arena[c.ParentID]
			if parent == nil || parent == c {
				continue
			}
			c.Path = fullPath(arena, c)
			parent.Children = append(parent.Children, c)
			timing.SumInto(c.Counts, parent)
			attached[c.ID] = true
		}
	}

	roots := make(map[int64]*models.Category)
	for id, c := range arena {
		if !attached[id] {
			roots[id] = c
		}
	}
	return roots
}

// fullPath joins the ancestor labels root-first: "Football / Bundesliga".
// A visited set guards against malformed dumps with parent cycles.
func fullPath(arena map[int64]*models.Category, c *models.Category) string {
	parts := []string{c.Label}
	seen := map[int64]bool{c.ID: true}
	for p := arena[c.ParentID]; p != nil && !seen[p.ID]; p = arena[p.ParentID] {
		seen[p.ID] = true
		parts = append([]string{p.Label}, parts...)
	}
	return strings.Join(parts, " / ")
}

// collapse reduces the nested roots to the top-category view: every level-1
// node keeps a single flat children list of its terminal descendants. A
// merge-point child swallows its own children into a MergedTree id list
// instead of contributing them individually.
func collapse(roots map[int64]*models.Category, mergePoints map[int64]bool) map[int64]*models.Category {
	out := make(map[int64]*models.Category)
	for _, root := range roots {
		if root.Level != 1 {
			continue
		}
		root.Children = collectLeaves(root, nil, mergePoints)
		out[root.ID] = root
	}
	return out
}

func collectLeaves(parent *models.Category, acc []*models.Category, mergePoints map[int64]bool) []*models.Category {
	for _, ch := range parent.Children {
		if len(ch.Children) > 0 && !mergePoints[ch.CID] {
			acc = collectLeaves(ch, acc, mergePoints)
			continue
		}
		if mergePoints[ch.CID] {
			ids := make([]int64, 0, len(ch.Children))
			for _, g := range ch.Children {
				ids = append(ids, g.ID)
			}
			ch.MergedTree = ids
		}
		ch.Children = nil
		ch.Path = trimPath(ch.Path)
		acc = append(acc, ch)
	}
	return acc
}

// trimPath drops the first and last path segments, leaving the intermediate
// ancestor chain ("Football / Bundesliga / 1. BL" -> " Bundesliga ").
func trimPath(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) <= 2 {
		return ""
	}
	return strings.Join(parts[1:len(parts)-1], "/")
}

// flatten walks the nested roots and produces the id-keyed map annotated
// with top_category_id and count_subcat.
func flatten(roots map[int64]*models.Category) map[int64]*models.Category {
	flat := make(map[int64]*models.Category)
	ids := make([]int64, 0, len(roots))
	for id := range roots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		flattenNode(roots[id], 0, flat)
	}
	return flat
}

func flattenNode(c *models.Category, topID int64, flat map[int64]*models.Category) {
	if c.Level == 1 {
		topID = c.ID
	}
	if len(c.Children) > 0 {
		cp := *c
		cp.Children = nil
		cp.CountSubcat = len(c.Children)
		cp.TopCategoryID = topID
		flat[c.ID] = &cp
		for _, ch := range c.Children {
			flattenNode(ch, topID, flat)
		}
		return
	}
	c.TopCategoryID = topID
	flat[c.ID] = c
}

func cloneMap(src map[int64]*models.Category) map[int64]*models.Category {
	out := make(map[int64]*models.Category, len(src))
	for id, c := range src {
		out[id] = c.Clone()
	}
	return out
}
