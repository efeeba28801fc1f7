// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists finished-event results to PostgreSQL. The in-memory
// caches stay authoritative for queries; the table is the durable archive of
// every result the live feed produced.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"sportboard/internal/models"
)

// ResultStore manages result records in the database.
type ResultStore struct {
	db *sql.DB
}

// NewResultStore returns a new ResultStore.
func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{db: db}
}

// Put upserts a result record keyed by event id. The full record is stored
// as a JSONB payload; the extracted columns exist for querying.
func (s *ResultStore) Put(ctx context.Context, rec *models.ResultRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal result %d: %w", rec.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (id, betradar_id, category_id, expires_ts, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			betradar_id = EXCLUDED.betradar_id,
			category_id = EXCLUDED.category_id,
			expires_ts = EXCLUDED.expires_ts,
			payload = EXCLUDED.payload,
			updated_at = now()
	`, rec.ID, rec.BID, rec.CID, rec.ExpiresTS, payload)
	if err != nil {
		return fmt.Errorf("upsert result %d: %w", rec.ID, err)
	}
	return nil
}

// Get loads one result record by event id. Returns sql.ErrNoRows when the
// id is unknown.
func (s *ResultStore) Get(ctx context.Context, id int64) (*models.ResultRecord, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM results WHERE id = $1`, id,
	).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("get result %d: %w", id, err)
	}

	var rec models.ResultRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode result %d: %w", id, err)
	}
	return &rec, nil
}

// ListByCategory returns stored results for a category, newest first.
func (s *ResultStore) ListByCategory(ctx context.Context, categoryID int64, limit int) ([]models.ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM results
		WHERE category_id = $1
		ORDER BY expires_ts DESC
		LIMIT $2
	`, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var items []models.ResultRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		var rec models.ResultRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}
