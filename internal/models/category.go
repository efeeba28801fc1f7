// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the shared domain types for the sportboard
// aggregation service: categories, events, live-feed updates and canonical
// result records.
package models

// Counts maps a window name (e.g. "count_today", "count_live_now") to the
// number of events currently falling into that window. Entries are sparse:
// a missing key means zero.
type Counts map[string]int64

// Category is one node of the sports category hierarchy. The same struct is
// used for the flat id-keyed view, the nested tree and the collapsed
// top-category view; fields not relevant to a particular view stay zero.
type Category struct {
	ID       int64  `json:"id"`
	CID      int64  `json:"cid,omitempty"`
	ParentID int64  `json:"parent_id,omitempty"`
	Level    int    `json:"level"`
	Label    string `json:"label"`
	Path     string `json:"path,omitempty"`
	Detail   string `json:"detail,omitempty"`

	// TopCategoryID is the nearest level-1 ancestor, stamped on the flat view
	// for O(1) lookup regardless of depth.
	TopCategoryID int64 `json:"top_category_id,omitempty"`

	// CountSubcat is the number of direct children at flatten time.
	CountSubcat int `json:"count_subcat,omitempty"`

	// Last marks the terminal node of a reconstructed result-category chain.
	Last bool `json:"last,omitempty"`

	Counts   Counts      `json:"counts,omitempty"`
	Children []*Category `json:"children,omitempty"`

	// MergedTree lists the ids of categories collapsed into this node when it
	// is configured as a merge point.
	MergedTree []int64 `json:"merged_tree,omitempty"`
}

// Count returns the value of a single window counter, zero when absent.
func (c *Category) Count(name string) int64 {
	if c == nil || c.Counts == nil {
		return 0
	}
	return c.Counts[name]
}

// AddCount increments a window counter by n, creating the map lazily.
func (c *Category) AddCount(name string, n int64) {
	if c.Counts == nil {
		c.Counts = Counts{}
	}
	c.Counts[name] += n
}

// DecCount decrements a window counter by one, flooring at zero. The floor is
// asymmetric: a decrement only happens when a value above one is present,
// otherwise the counter is pinned to zero.
func (c *Category) DecCount(name string) {
	if c.Counts == nil {
		c.Counts = Counts{}
	}
	v, ok := c.Counts[name]
	if !ok || v <= 1 {
		c.Counts[name] = 0
		return
	}
	c.Counts[name] = v - 1
}

// Clone returns a deep copy of the category, including counts, children and
// the merged-tree id list. Query handlers marshal clones so in-place patches
// never race with readers.
func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Counts != nil {
		cp.Counts = make(Counts, len(c.Counts))
		for k, v := range c.Counts {
			cp.Counts[k] = v
		}
	}
	if c.Children != nil {
		cp.Children = make([]*Category, len(c.Children))
		for i, ch := range c.Children {
			cp.Children[i] = ch.Clone()
		}
	}
	if c.MergedTree != nil {
		cp.MergedTree = append([]int64(nil), c.MergedTree...)
	}
	return &cp
}

// RawCategory is one record of the upstream category dump. Upstream encodes
// most numbers as strings, hence the flexible types.
type RawCategory struct {
	ID          FlexInt `json:"id"`
	ParentID    FlexInt `json:"parent_id"`
	Level       FlexInt `json:"level"`
	Label       string  `json:"label"`
	ActivatedID FlexInt `json:"activated_id"`
}
