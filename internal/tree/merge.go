// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import "sportboard/internal/models"

// MergeTrees reconciles the forward-looking live tree with the
// backward-looking results tree into one list. Categories present only in
// the results tree are appended untouched; categories present in both are
// merged field by field: counter fields add numerically, every other scalar
// keeps the live side's value unless it is empty, in which case the result
// side fills it in. Children merge recursively, depth first. The asymmetry
// (live wins scalar ties) is intentional.
//
// Every returned node carries at least a zero count_today entry, so the
// merged view always exposes the field consumers sort and filter on. Inputs
// are never mutated.
func MergeTrees(live, result []*models.Category) []*models.Category {
	resultByID := make(map[int64]*models.Category, len(result))
	for _, r := range result {
		resultByID[r.ID] = r
	}
	liveIDs := make(map[int64]bool, len(live))
	for _, l := range live {
		liveIDs[l.ID] = true
	}

	combined := make([]*models.Category, 0, len(live)+len(result))
	combined = append(combined, live...)
	for _, r := range result {
		if !liveIDs[r.ID] {
			combined = append(combined, r)
		}
	}

	out := make([]*models.Category, 0, len(combined))
	for _, item := range combined {
		merged := item.Clone()
		if merged.Counts == nil {
			merged.Counts = models.Counts{}
		}
		if _, ok := merged.Counts["count_today"]; !ok {
			merged.Counts["count_today"] = 0
		}

		counterpart := resultByID[item.ID]
		if counterpart != nil && liveIDs[item.ID] {
			if len(counterpart.Children) > 0 {
				merged.Children = MergeTrees(merged.Children, counterpart.Children)
			}
			mergeScalars(merged, counterpart)
		}
		out = append(out, merged)
	}
	return out
}

// mergeScalars folds the counterpart's fields into dst. Counter fields add;
// other scalars fill only empty slots (live wins). Children are excluded —
// the caller has already merged them.
func mergeScalars(dst, src *models.Category) {
	for name, v := range src.Counts {
		dst.Counts[name] += v
	}
	// count_subcat is a counter by name and merges by addition like the rest.
	dst.CountSubcat += src.CountSubcat

	if dst.Label == "" {
		dst.Label = src.Label
	}
	if dst.Path == "" {
		dst.Path = src.Path
	}
	if dst.Detail == "" {
		dst.Detail = src.Detail
	}
	if dst.Level == 0 {
		dst.Level = src.Level
	}
	if dst.ParentID == 0 {
		dst.ParentID = src.ParentID
	}
	if dst.CID == 0 {
		dst.CID = src.CID
	}
	if dst.TopCategoryID == 0 {
		dst.TopCategoryID = src.TopCategoryID
	}
	if len(dst.MergedTree) == 0 && len(src.MergedTree) > 0 {
		dst.MergedTree = append([]int64(nil), src.MergedTree...)
	}
	dst.Last = dst.Last || src.Last
}
