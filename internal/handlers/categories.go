// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"sportboard/internal/models"
	"sportboard/internal/results"
	"sportboard/internal/sport"
	"sportboard/internal/tree"
)

// Categories groups the read endpoints over the forward-looking sport cache,
// plus the merged view that folds the results tree in.
type Categories struct {
	sport   *sport.Controller
	results *results.Controller
}

// NewCategories creates the category handler group.
func NewCategories(sportCtl *sport.Controller, resultsCtl *results.Controller) *Categories {
	return &Categories{sport: sportCtl, results: resultsCtl}
}

// ByID returns one category from the flat view.
// GET /api/categories/{id}?lang=de
func (h *Categories) ByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}
	cat := h.sport.CategoryByID(r.URL.Query().Get("lang"), id)
	if cat == nil {
		writeError(w, http.StatusNotFound, "Category not found.")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// List resolves a batch of ids against the flat view, skipping unknown ones.
// GET /api/categories?ids=4,541&lang=de
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	ids, msg := parseIDs(r.URL.Query().Get("ids"))
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	cats := h.sport.CategoriesByIDs(r.URL.Query().Get("lang"), ids)
	if cats == nil {
		cats = []*models.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// Tree returns the collapsed top-category tree, optionally filtered by a
// time window, children ordered for display.
// GET /api/categories/tree?lang=de&filter=today
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if msg := validateFilter(filter); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	nodes := h.sport.Tree(r.URL.Query().Get("lang"), filter)
	if nodes == nil {
		nodes = []*models.Category{}
	}
	writeJSON(w, http.StatusOK, tree.PrepareChildren(nodes))
}

// Node renders one category subtree in the depth-limited node format.
// GET /api/categories/node/{id}?lang=de
func (h *Categories) Node(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 0 {
		writeError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}
	writeJSON(w, http.StatusOK, h.sport.CategoriesTree(r.URL.Query().Get("lang"), id))
}

// Merged returns the reconciled live/results view for a window filter.
// Backward windows come from the results tree alone, forward windows from the
// sport tree alone; "today" (and the unfiltered default) merges both sides.
// GET /api/categories/merged?lang=de&filter=today
func (h *Categories) Merged(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if msg := validateFilter(filter); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	lang := r.URL.Query().Get("lang")

	var nodes []*models.Category
	switch {
	case strings.HasSuffix(filter, "_ago"):
		nodes = h.results.Tree(filter)
	case filter == "" || filter == "all" || filter == "today":
		nodes = tree.MergeTrees(h.sport.Tree(lang, "today"), h.results.Tree("today"))
	default:
		nodes = h.sport.Tree(lang, filter)
	}
	if nodes == nil {
		nodes = []*models.Category{}
	}
	writeJSON(w, http.StatusOK, tree.PrepareChildren(sortByOrder(nodes, h.sport.SortingOrder(lang))))
}

// Search finds categories by label substring.
// GET /api/categories/search?q=bundes&lang=de
func (h *Categories) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) < 2 {
		writeError(w, http.StatusBadRequest, "Query must be at least 2 characters.")
		return
	}
	hits := h.sport.Search(r.URL.Query().Get("lang"), q)
	if hits == nil {
		hits = []sport.SearchResult{}
	}
	writeJSON(w, http.StatusOK, hits)
}

// sortByOrder arranges nodes by the upstream sorting order; ids not in the
// order keep their relative position at the tail.
func sortByOrder(nodes []*models.Category, order []int64) []*models.Category {
	if len(order) == 0 {
		return nodes
	}
	pos := make(map[int64]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	ordered := make([]*models.Category, 0, len(nodes))
	var rest []*models.Category
	for _, id := range order {
		for _, n := range nodes {
			if n.ID == id {
				ordered = append(ordered, n)
				break
			}
		}
	}
	for _, n := range nodes {
		if _, ok := pos[n.ID]; !ok {
			rest = append(rest, n)
		}
	}
	return append(ordered, rest...)
}
