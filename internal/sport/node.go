// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// node.go renders a category subtree in the node format the mobile client
// consumes: the node itself plus one level of items, with the legacy
// string-typed child counters.
package sport

import (
	"strconv"

	"sportboard/internal/models"
)

// TreeNode is the depth-limited tree view of one category. The embedded
// category carries the full field set; the explicit fields shadow legacy
// aliases expected on the wire.
type TreeNode struct {
	models.Category

	ParentName string      `json:"parent_name"`
	ParentID   int64       `json:"parent_id"`
	CountToday int64       `json:"counttoday"`
	CountAll   int64       `json:"countall"`
	Count      string      `json:"count"`
	Count24h   int64       `json:"count24h"`
	Items      []*NodeItem `json:"items"`
}

// NodeItem is one direct child in a TreeNode.
type NodeItem struct {
	models.Category

	MainCat     int64  `json:"maincat"`
	CountSubcat string `json:"count_subcat"`
	CountEvents int64  `json:"count_events"`
}

// CategoriesTree searches the collapsed tree for the given id (breadth
// first) and renders it in node format. A zero id renders a synthetic root
// holding all top categories. An unknown id yields an empty node.
func (c *Controller) CategoriesTree(lang string, id int64) *TreeNode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.slotFor(lang)
	if s == nil {
		return &TreeNode{}
	}

	tops := s.topNodes()
	if id == 0 {
		return formNode(&models.Category{Children: tops})
	}
	if found := searchNode(tops, id); found != nil {
		return formNode(found)
	}
	return &TreeNode{}
}

// searchNode walks the node lists level by level looking for id.
func searchNode(nodes []*models.Category, id int64) *models.Category {
	var next []*models.Category
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		next = append(next, n.Children...)
	}
	if len(next) == 0 {
		return nil
	}
	return searchNode(next, id)
}

func formNode(cat *models.Category) *TreeNode {
	node := &TreeNode{
		Category:   *cat.Clone(),
		ParentName: cat.Label,
		ParentID:   cat.ID,
		CountToday: cat.Count("count_today"),
		CountAll:   cat.Count("count"),
		Count:      strconv.Itoa(len(cat.Children)),
		Count24h:   cat.Count("count_24h"),
	}
	node.Items = make([]*NodeItem, 0, len(cat.Children))
	for _, ch := range cat.Children {
		node.Items = append(node.Items, &NodeItem{
			Category:    *ch.Clone(),
			MainCat:     cat.ID,
			CountSubcat: strconv.Itoa(len(ch.Children)),
			CountEvents: ch.Count("count"),
		})
	}
	return node
}
