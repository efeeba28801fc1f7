// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package results

import (
	"encoding/json"
	"strings"
	"time"

	"sportboard/internal/models"
)

// dateTimeLayouts are the timestamp encodings seen on the ended-event detail
// feed.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ConvertEventToResult turns an ended-event update into the canonical result
// record. The category chain is the update's ancestor tree plus the leaf;
// labels for the chain come from splitting the event path, and the fixture
// label splits into home/away on " - ". A missing or unreadable score yields
// the empty score payload.
func ConvertEventToResult(upd *models.LiveUpdate, score json.RawMessage) *models.ResultRecord {
	catIDs := make([]int64, 0, len(upd.CategoryTree)+1)
	for _, id := range upd.CategoryTree {
		catIDs = append(catIDs, id.Int())
	}
	catIDs = append(catIDs, upd.CategoryID.Int())

	pathParts := strings.Split(upd.Path, "/")
	cats := make([]models.ResultCat, 0, len(catIDs))
	for i, id := range catIDs {
		var label string
		if i < len(pathParts) {
			label = strings.TrimSpace(pathParts[i])
		}
		topCatID := int64(0)
		if i > 0 {
			topCatID = catIDs[i-1]
		}
		cats = append(cats, models.ResultCat{
			ID:       id,
			Label:    models.Label{DE: label, EN: label},
			TopCatID: topCatID,
		})
	}

	home, away := upd.Label, upd.Label
	if idx := strings.Index(upd.Label, " - "); idx != -1 {
		home = upd.Label[:idx]
		away = upd.Label[idx+len(" - "):]
	}

	return &models.ResultRecord{
		ID:        upd.EvID.Int(),
		BID:       upd.BetradarID.Int(),
		ExpiresTS: parseDateTime(upd.DateTime2),
		CID:       upd.CategoryID.Int(),
		Cats:      cats,
		Teams: models.Teams{
			Home: models.Team{Label: home},
			Away: models.Team{Label: away},
		},
		JSON:         models.ScoreEnvelope{Data: decodeScore(score)},
		Label:        models.Label{DE: upd.Label, EN: upd.Label},
		CategoryPath: models.Label{DE: upd.Path, EN: upd.Path},
	}
}

func parseDateTime(value string) float64 {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return float64(t.Unix())
		}
	}
	return 0
}

func decodeScore(score json.RawMessage) models.ScoreData {
	empty := models.ScoreData{Periods: []models.ScorePeriod{}}
	if len(score) == 0 {
		return empty
	}
	var data models.ScoreData
	if err := json.Unmarshal(score, &data); err != nil {
		return empty
	}
	if data.Periods == nil {
		data.Periods = []models.ScorePeriod{}
	}
	return data
}
