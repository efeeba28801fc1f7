// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package timing

import (
	"sync"
	"time"
)

// scheduleVocabulary is the fixed, ordered set of day labels the schedule
// API accepts. A range is valid only when "from" does not come after "to"
// in this ordering.
var scheduleVocabulary = []string{
	"7_days_ago",
	"6_days_ago",
	"5_days_ago",
	"4_days_ago",
	"3_days_ago",
	"2_days_ago",
	"1_days_ago",
	"today",
	"1_days_forward",
	"2_days_forward",
	"3_days_forward",
	"4_days_forward",
	"5_days_forward",
	"6_days_forward",
	"7_days_forward",
}

const scheduleDateFormat = "02.01.2006"

// ScheduleBucket is one day of a generated schedule range. Count is filled
// in by the caller once the relevant categories are known.
type ScheduleBucket struct {
	DateLabel string `json:"date_label"`
	Date      string `json:"date"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	Count     int64  `json:"count"`
}

// GenerateScheduleRange produces the ordered day buckets between from and to
// (inclusive) out of the fixed vocabulary. Unknown labels or a reversed
// range yield an empty slice.
func (e *Engine) GenerateScheduleRange(from, to string) []ScheduleBucket {
	fromIdx := vocabularyIndex(from)
	toIdx := vocabularyIndex(to)
	if fromIdx == -1 || toIdx == -1 || fromIdx > toIdx {
		return nil
	}

	ws := e.Snapshot()
	buckets := make([]ScheduleBucket, 0, toIdx-fromIdx+1)
	for _, label := range scheduleVocabulary[fromIdx : toIdx+1] {
		start, end, ok := e.bucketBounds(ws, label)
		if !ok {
			continue
		}
		buckets = append(buckets, ScheduleBucket{
			DateLabel: label,
			Date:      time.UnixMilli(start).In(e.loc).Format(scheduleDateFormat),
			Start:     start,
			End:       end,
		})
	}
	return buckets
}

// bucketBounds resolves a vocabulary label to its window boundaries. "today"
// spans the whole local day (start of the backward window to the end of the
// forward one).
func (e *Engine) bucketBounds(ws *WindowSet, label string) (start, end int64, ok bool) {
	if label == "today" {
		var sod int64
		for _, w := range ws.Backward {
			if w.Name == "count_today" {
				sod = w.Start
			}
		}
		fw, found := ws.Find("count_today")
		if !found {
			return 0, 0, false
		}
		return sod, fw.End, true
	}
	w, found := ws.Find("count_" + label)
	if !found {
		return 0, 0, false
	}
	return w.Start, w.End, true
}

func vocabularyIndex(label string) int {
	for i, l := range scheduleVocabulary {
		if l == label {
			return i
		}
	}
	return -1
}

// KnownFilter reports whether a query-level filter value maps onto a window
// name ("today", "live_now", "3_days_forward", "1_days_ago", ...). "all" is
// accepted as the unfiltered view.
func KnownFilter(filter string) bool {
	if filter == "" || filter == "all" {
		return filter == "all"
	}
	for _, name := range filterNames() {
		if name == filter {
			return true
		}
	}
	return false
}

var (
	filterNamesOnce sync.Once
	filterNamesList []string
)

// filterNames derives the accepted filter vocabulary from a reference window
// build. Window names are static; only their boundaries move.
func filterNames() []string {
	filterNamesOnce.Do(func() {
		fwd, back := buildWindows(time.Now(), time.UTC)
		seen := map[string]bool{}
		for _, w := range append(fwd, back...) {
			name := w.Name[len("count_"):]
			if !seen[name] {
				seen[name] = true
				filterNamesList = append(filterNamesList, name)
			}
		}
	})
	return filterNamesList
}
