// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"sportboard/internal/results"
	"sportboard/internal/sport"
	"sportboard/internal/timing"
)

// Schedule serves the per-day event counts for a set of categories across a
// range of day buckets. Past buckets draw their counts from the results
// cache, future buckets from the sport cache; today gets both.
type Schedule struct {
	engine  *timing.Engine
	sport   *sport.Controller
	results *results.Controller
}

// NewSchedule creates the schedule handler.
func NewSchedule(engine *timing.Engine, sportCtl *sport.Controller, resultsCtl *results.Controller) *Schedule {
	return &Schedule{engine: engine, sport: sportCtl, results: resultsCtl}
}

// Range generates the day buckets between two schedule labels and fills each
// bucket's count with the summed per-day counters of the requested
// categories.
// GET /api/schedule?ids=4&date_from=1_days_ago&date_to=3_days_forward&lang=de
func (h *Schedule) Range(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ids, msg := parseIDs(q.Get("ids"))
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	buckets := h.engine.GenerateScheduleRange(q.Get("date_from"), q.Get("date_to"))
	if buckets == nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule range.")
		return
	}

	lang := q.Get("lang")
	sportCats := h.sport.CategoriesByIDs(lang, ids)
	resultCats := h.results.CategoriesByIDs(ids)

	for i := range buckets {
		key := "count_" + buckets[i].DateLabel
		var total int64
		for _, cat := range sportCats {
			total += cat.Count(key)
		}
		for _, cat := range resultCats {
			total += cat.Count(key)
		}
		buckets[i].Count = total
	}
	writeJSON(w, http.StatusOK, buckets)
}
