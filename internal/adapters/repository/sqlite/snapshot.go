// Package sqlite provides a SQLite-backed snapshot saver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/blockflow/blockflow/internal/core/snapshot"
	"github.com/blockflow/blockflow/pkg/serialization"
)

// SnapshotSaver implements snapshot.Saver for SQLite via database/sql with
// the pure-Go modernc driver.
type SnapshotSaver struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// NewSnapshotSaver creates a new SQLite snapshot saver.
func NewSnapshotSaver(db *sql.DB, serializer *serialization.Serializer) *SnapshotSaver {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &SnapshotSaver{
		db:         db,
		serializer: serializer,
		tableName:  "snapshots",
	}
}

// Open opens (or creates) a SQLite database at path and ensures the schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

// WithTableName overrides the default table name. Only alphanumeric and
// underscore are permitted to prevent SQL injection via identifiers.
func (s *SnapshotSaver) WithTableName(name string) *SnapshotSaver {
	if isSafeIdent(name) {
		s.tableName = name
	}
	return s
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

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
			payload BLOB NOT NULL,
			metadata TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			version TEXT NOT NULL
		)`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
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
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			payload = excluded.payload,
			metadata = excluded.metadata,
			timestamp = excluded.timestamp
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query,
		snap.ID, snap.ProgramID, snap.RunID, data, string(metadataJSON),
		snap.Timestamp.UnixNano(), snap.Version); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves a snapshot by ID.
func (s *SnapshotSaver) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT id, program_id, run_id, payload, metadata, timestamp, version
		FROM %s WHERE id = ?
	`, s.tableName)

	snap, err := s.scanRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		WHERE (? = '' OR program_id = ?)
		  AND (? = '' OR run_id = ?)
		  AND (? IS NULL OR timestamp >= ?)
		  AND (? IS NULL OR timestamp < ?)
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`, s.tableName)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	var since, before sql.NullInt64
	if filter.Since != nil {
		since = sql.NullInt64{Int64: filter.Since.UnixNano(), Valid: true}
	}
	if filter.Before != nil {
		before = sql.NullInt64{Int64: filter.Before.UnixNano(), Valid: true}
	}

	rows, err := s.db.QueryContext(ctx, query,
		filter.ProgramID, filter.ProgramID, filter.RunID, filter.RunID,
		since, since, before, before, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.tableName)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return snapshot.ErrSnapshotNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *SnapshotSaver) scanRow(row scanner) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	var data []byte
	var metadataJSON string
	var ts int64
	if err := row.Scan(&snap.ID, &snap.ProgramID, &snap.RunID, &data, &metadataJSON, &ts, &snap.Version); err != nil {
		return nil, err
	}
	snap.Timestamp = time.Unix(0, ts)

	var p payload
	if err := s.serializer.Deserialize(data, &p); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot payload: %w", err)
	}
	snap.ElementStates = p.ElementStates
	snap.Log = p.Log
	snap.Processed = p.Processed

	if err := json.Unmarshal([]byte(metadataJSON), &snap.Metadata); err != nil {
		return nil, fmt.Errorf("failed to deserialize metadata: %w", err)
	}
	return &snap, nil
}
