// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"sportboard/internal/models"
)

// FilterByWindow prunes a node list down to categories whose counter for the
// given filter ("today", "live_now", ...) is positive, recursing into
// children. A parent with a positive count survives even when every child is
// pruned. The returned nodes are clones; callers may hand them out freely.
func FilterByWindow(filter string, nodes []*models.Category) []*models.Category {
	key := "count_" + filter
	var out []*models.Category
	for _, n := range nodes {
		if n.Count(key) <= 0 {
			continue
		}
		cp := n.Clone()
		if len(n.Children) > 0 {
			cp.Children = FilterByWindow(filter, n.Children)
		}
		out = append(out, cp)
	}
	return out
}

// PrepareChildren orders every node's children with a German collator in
// numeric mode, so "2. Liga" sorts before "10. Liga" and umlauts collate
// where a German reader expects them. Each child is stamped with its
// parent's id as top_category_id. The pass is pure and idempotent; it is a
// presentation step, not part of tree construction.
func PrepareChildren(nodes []*models.Category) []*models.Category {
	// A collator is not safe for concurrent use, so each call gets its own.
	cl := collate.New(language.German, collate.Numeric, collate.IgnoreCase)
	for _, n := range nodes {
		sort.SliceStable(n.Children, func(i, j int) bool {
			a, b := n.Children[i], n.Children[j]
			return cl.CompareString(a.Path+a.Label, b.Path+b.Label) < 0
		})
		for _, ch := range n.Children {
			ch.TopCategoryID = n.ID
		}
	}
	return nodes
}
