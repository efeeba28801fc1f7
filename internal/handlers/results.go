// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sportboard/internal/models"
	"sportboard/internal/results"
	"sportboard/internal/tree"
)

// Results groups the read endpoints over the finished-events cache.
type Results struct {
	results *results.Controller
}

// NewResults creates the results handler group.
func NewResults(ctl *results.Controller) *Results {
	return &Results{results: ctl}
}

// ByID returns one finished event.
// GET /api/results/{id}
func (h *Results) ByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid event id.")
		return
	}
	rec := h.results.EventByID(id)
	if rec == nil {
		writeError(w, http.StatusNotFound, "Result not found.")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// List filters the finished events by category or betradar ids and an
// expires_ts range.
// GET /api/results?filter_by=CATEGORY&ids=541&date_from=1767225600
func (h *Results) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filterBy := q.Get("filter_by")
	if filterBy != "" && filterBy != "CATEGORY" && filterBy != "BETRADAR" {
		writeError(w, http.StatusBadRequest, "filter_by must be CATEGORY or BETRADAR.")
		return
	}
	ids, msg := parseIDs(q.Get("ids"))
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	from, msg := parseUnixDate(q.Get("date_from"))
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	to, msg := parseUnixDate(q.Get("date_to"))
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	recs := h.results.Filter(results.FilterQuery{
		FilterBy: filterBy,
		IDs:      ids,
		DateFrom: from,
		DateTo:   to,
	})
	if recs == nil {
		recs = []*models.ResultRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// Tree returns the reconstructed results category tree for a window filter.
// GET /api/results/tree?filter=1_days_ago
func (h *Results) Tree(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if msg := validateFilter(filter); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	nodes := h.results.Tree(filter)
	if nodes == nil {
		nodes = []*models.Category{}
	}
	writeJSON(w, http.StatusOK, tree.PrepareChildren(nodes))
}
