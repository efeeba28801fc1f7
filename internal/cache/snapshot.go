// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// snapshot.go provides a Valkey-backed store for raw upstream dump payloads.
// After every successful fetch cycle the payloads are snapshotted so a
// restarted process can rebuild its in-memory trees immediately instead of
// waiting for the first fetch to complete.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// snapshotKeyPrefix is the Valkey key prefix for dump snapshots.
	snapshotKeyPrefix = "dump:"

	// DefaultSnapshotTTL bounds how stale a restored snapshot may be. A
	// snapshot older than this is worthless; the next fetch supersedes it
	// anyway.
	DefaultSnapshotTTL = 24 * time.Hour
)

// SnapshotStore persists raw dump payloads keyed by fetcher name.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore creates a snapshot store backed by the given client.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl == 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotStore{client: client, ttl: ttl}
}

// Save stores one fetch cycle's payloads. Failures are logged, not
// propagated: snapshotting is best effort.
func (s *SnapshotStore) Save(ctx context.Context, name string, payload map[string]json.RawMessage) {
	if s == nil || s.client == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("snapshot marshal error", "name", name, "error", err)
		return
	}
	if err := s.client.Set(ctx, snapshotKeyPrefix+name, data, s.ttl).Err(); err != nil {
		slog.Warn("snapshot save error", "name", name, "error", err)
		return
	}
	slog.Debug("snapshot saved", "name", name, "bytes", len(data))
}

// Load retrieves the last saved payloads for a fetcher name. Returns false
// on miss or any error.
func (s *SnapshotStore) Load(ctx context.Context, name string) (map[string]json.RawMessage, bool) {
	if s == nil || s.client == nil {
		return nil, false
	}
	data, err := s.client.Get(ctx, snapshotKeyPrefix+name).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("snapshot load error", "name", name, "error", err)
		return nil, false
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		slog.Warn("snapshot decode error", "name", name, "error", err)
		return nil, false
	}
	slog.Info("snapshot restored", "name", name, "keys", len(payload))
	return payload, true
}

// Clear removes a stored snapshot.
func (s *SnapshotStore) Clear(ctx context.Context, name string) {
	if s == nil || s.client == nil {
		return
	}
	if err := s.client.Del(ctx, snapshotKeyPrefix+name).Err(); err != nil {
		slog.Warn("snapshot clear error", "name", name, "error", err)
	}
}
