// Package adapters provides concrete implementations of snapshot storage
package adapters

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/blockflow/blockflow/internal/core/snapshot"
	"github.com/blockflow/blockflow/pkg/serialization"
)

// InMemorySaver implements snapshot.Saver with thread-safe in-memory storage,
// per-entry TTL, and LRU eviction under a memory budget. Entries are kept in
// serialized form so memory accounting matches what a persistent saver would
// store.
type InMemorySaver struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	defaultTTL time.Duration
	maxBytes   int64
	totalBytes int64
	serializer *serialization.Serializer

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	closeOnce     sync.Once
}

// Config holds configuration for InMemorySaver.
type Config struct {
	DefaultTTL      time.Duration             // Per-entry lifetime; zero means no expiry
	MaxMemoryMB     int64                     // Memory budget before LRU eviction
	CleanupInterval time.Duration             // Sweep interval for expired entries
	Serializer      *serialization.Serializer // Custom serializer (optional)
}

type entry struct {
	snap       *snapshot.Snapshot
	data       []byte
	size       int64
	createdAt  time.Time
	accessedAt time.Time
}

// NewInMemorySaver creates an in-memory snapshot saver.
func NewInMemorySaver(config Config) *InMemorySaver {
	if config.Serializer == nil {
		config.Serializer = serialization.Default()
	}
	if config.MaxMemoryMB <= 0 {
		config.MaxMemoryMB = 64
	}
	s := &InMemorySaver{
		entries:    make(map[string]*entry),
		defaultTTL: config.DefaultTTL,
		maxBytes:   config.MaxMemoryMB * 1024 * 1024,
		serializer: config.Serializer,
	}
	if config.CleanupInterval > 0 && config.DefaultTTL > 0 {
		s.cleanupTicker = time.NewTicker(config.CleanupInterval)
		s.stopCleanup = make(chan struct{})
		go s.cleanupLoop()
	}
	return s
}

// DefaultInMemorySaver returns a saver with a 64MB budget and no expiry,
// suitable for local usage and tests.
func DefaultInMemorySaver() *InMemorySaver {
	return NewInMemorySaver(Config{})
}

// Save persists a snapshot.
func (s *InMemorySaver) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if snap == nil {
		return snapshot.ErrInvalidSnapshotID
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	data, err := s.serializer.Serialize(snap)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if old, ok := s.entries[snap.ID]; ok {
		s.totalBytes -= old.size
	}
	e := &entry{
		snap:       snap,
		data:       data,
		size:       int64(len(data)),
		createdAt:  now,
		accessedAt: now,
	}
	s.entries[snap.ID] = e
	s.totalBytes += e.size
	s.evictLocked()
	return nil
}

// Load retrieves a snapshot by ID.
func (s *InMemorySaver) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || s.expired(e) {
		return nil, snapshot.ErrSnapshotNotFound
	}
	e.accessedAt = time.Now()

	var snap snapshot.Snapshot
	if err := s.serializer.Deserialize(e.data, &snap); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
	}
	return &snap, nil
}

// List returns snapshots matching the filter, newest first.
func (s *InMemorySaver) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var matched []*snapshot.Snapshot
	for _, e := range s.entries {
		if s.expired(e) {
			continue
		}
		if matches(e.snap, filter) {
			matched = append(matched, e.snap)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Delete removes a snapshot by ID.
func (s *InMemorySaver) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return snapshot.ErrSnapshotNotFound
	}
	s.totalBytes -= e.size
	delete(s.entries, id)
	return nil
}

// Close stops the background cleanup loop.
func (s *InMemorySaver) Close() error {
	s.closeOnce.Do(func() {
		if s.cleanupTicker != nil {
			s.cleanupTicker.Stop()
			close(s.stopCleanup)
		}
	})
	return nil
}

func (s *InMemorySaver) expired(e *entry) bool {
	return s.defaultTTL > 0 && time.Since(e.createdAt) > s.defaultTTL
}

// evictLocked drops least-recently-accessed entries until the budget holds.
func (s *InMemorySaver) evictLocked() {
	for s.totalBytes > s.maxBytes && len(s.entries) > 1 {
		var oldestID string
		var oldest time.Time
		for id, e := range s.entries {
			if oldestID == "" || e.accessedAt.Before(oldest) {
				oldestID = id
				oldest = e.accessedAt
			}
		}
		s.totalBytes -= s.entries[oldestID].size
		delete(s.entries, oldestID)
	}
}

func (s *InMemorySaver) cleanupLoop() {
	for {
		select {
		case <-s.stopCleanup:
			return
		case <-s.cleanupTicker.C:
			s.mu.Lock()
			for id, e := range s.entries {
				if s.expired(e) {
					s.totalBytes -= e.size
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

func matches(snap *snapshot.Snapshot, filter snapshot.Filter) bool {
	if filter.ProgramID != "" && snap.ProgramID != filter.ProgramID {
		return false
	}
	if filter.RunID != "" && snap.RunID != filter.RunID {
		return false
	}
	if filter.Since != nil && snap.Timestamp.Before(*filter.Since) {
		return false
	}
	if filter.Before != nil && !snap.Timestamp.Before(*filter.Before) {
		return false
	}
	return true
}
