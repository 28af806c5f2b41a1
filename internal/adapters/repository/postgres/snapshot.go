// Package postgres provides a PostgreSQL-backed snapshot saver.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blockflow/blockflow/internal/core/snapshot"
	"github.com/blockflow/blockflow/pkg/serialization"
)

// SnapshotSaver implements snapshot.Saver for PostgreSQL. Element states, log
// and processed set travel through the serializer; metadata is stored as
// JSONB for queryability.
type SnapshotSaver struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// NewSnapshotSaver creates a new PostgreSQL snapshot saver.
func NewSnapshotSaver(pool *pgxpool.Pool, serializer *serialization.Serializer) *SnapshotSaver {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &SnapshotSaver{
		pool:       pool,
		serializer: serializer,
		tableName:  "snapshots",
	}
}

// payload is the serialized portion of a snapshot row.
type payload struct {
	ElementStates map[string]map[string]interface{} `msgpack:"element_states"`
	Log           []string                          `msgpack:"log"`
	Processed     []string                          `msgpack:"processed"`
}

// EnsureSchema creates the snapshots table if it does not exist.
func (s *SnapshotSaver) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			program_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			payload BYTEA NOT NULL,
			metadata JSONB NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			version TEXT NOT NULL
		)`, s.tableName)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure snapshot schema: %w", err)
	}
	return nil
}

// Save stores a snapshot, upserting on ID.
func (s *SnapshotSaver) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if snap == nil {
		return snapshot.ErrInvalidSnapshotID
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	data, err := s.serializer.Serialize(payload{
		ElementStates: snap.ElementStates,
		Log:           snap.Log,
		Processed:     snap.Processed,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot payload: %w", err)
	}
	metadataJSON, err := json.Marshal(snap.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, program_id, run_id, payload, metadata, timestamp, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			metadata = EXCLUDED.metadata,
			timestamp = EXCLUDED.timestamp
	`, s.tableName)

	if _, err := s.pool.Exec(ctx, query,
		snap.ID, snap.ProgramID, snap.RunID, data, metadataJSON, snap.Timestamp, snap.Version); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves a snapshot by ID.
func (s *SnapshotSaver) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT id, program_id, run_id, payload, metadata, timestamp, version
		FROM %s WHERE id = $1
	`, s.tableName)

	snap, err := s.scanRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, snapshot.ErrSnapshotNotFound
		}
		return nil, err
	}
	return snap, nil
}

// List returns snapshots matching the filter, newest first.
func (s *SnapshotSaver) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, program_id, run_id, payload, metadata, timestamp, version
		FROM %s
		WHERE ($1 = '' OR program_id = $1)
		  AND ($2 = '' OR run_id = $2)
		  AND ($3::timestamptz IS NULL OR timestamp >= $3)
		  AND ($4::timestamptz IS NULL OR timestamp < $4)
		ORDER BY timestamp DESC
		LIMIT $5 OFFSET $6
	`, s.tableName)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, query,
		filter.ProgramID, filter.RunID, filter.Since, filter.Before, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*snapshot.Snapshot
	for rows.Next() {
		snap, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Delete removes a snapshot by ID.
func (s *SnapshotSaver) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return snapshot.ErrSnapshotNotFound
	}
	return nil
}

func (s *SnapshotSaver) scanRow(row pgx.Row) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	var data []byte
	var metadataJSON []byte
	if err := row.Scan(&snap.ID, &snap.ProgramID, &snap.RunID, &data, &metadataJSON, &snap.Timestamp, &snap.Version); err != nil {
		return nil, err
	}

	var p payload
	if err := s.serializer.Deserialize(data, &p); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot payload: %w", err)
	}
	snap.ElementStates = p.ElementStates
	snap.Log = p.Log
	snap.Processed = p.Processed

	if err := json.Unmarshal(metadataJSON, &snap.Metadata); err != nil {
		return nil, fmt.Errorf("failed to deserialize metadata: %w", err)
	}
	return &snap, nil
}
