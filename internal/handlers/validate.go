package handlers

import (
	"strconv"
	"strings"

	"sportboard/internal/timing"
)

// maxQueryIDs bounds how many ids a single lookup request may carry.
const maxQueryIDs = 200

// parseIDs splits a comma-separated id list. Returns an error message for
// the first entry that is not a positive integer; an empty input is fine.
func parseIDs(value string) ([]int64, string) {
	if strings.TrimSpace(value) == "" {
		return nil, ""
	}
	parts := strings.Split(value, ",")
	if len(parts) > maxQueryIDs {
		return nil, "Too many ids (max 200)."
	}
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, "Invalid id: " + p
		}
		ids = append(ids, id)
	}
	return ids, ""
}

// validateFilter checks a window filter value ("today", "live_now",
// "3_days_forward", ...). Empty and "all" pass through untouched.
func validateFilter(filter string) string {
	if filter == "" || filter == "all" {
		return ""
	}
	if !timing.KnownFilter(filter) {
		return "Unknown filter: " + filter
	}
	return ""
}

// parseUnixDate parses an optional numeric unix-seconds bound. Zero means
// the bound is open.
func parseUnixDate(value string) (float64, string) {
	if strings.TrimSpace(value) == "" {
		return 0, ""
	}
	ts, err := strconv.ParseFloat(value, 64)
	if err != nil || ts < 0 {
		return 0, "Invalid date: " + value
	}
	return ts, ""
}
