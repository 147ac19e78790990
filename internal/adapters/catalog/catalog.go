// Package catalog defines the entity catalog interface and its in-memory
// implementation.
//
// The catalog is the source of truth for schedulable entities between
// ingestion and projection. Version() increases on every mutation and is
// the cache-busting component of projection cache keys.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/marquee-live/marquee/internal/domain/model"
	"github.com/marquee-live/marquee/pkg/metrics"
)

// Store provides read/write access to the entity catalog.
type Store interface {
	// Upsert inserts or replaces an entity keyed by (type, id).
	Upsert(ctx context.Context, e model.Entity) error

	// Remove deletes an entity. Returns true if it existed.
	Remove(ctx context.Context, typ model.EntityType, id string) bool

	// Get returns a single entity or ErrNotFound.
	Get(ctx context.Context, typ model.EntityType, id string) (model.Entity, error)

	// Snapshot returns all entities in deterministic key order.
	Snapshot(ctx context.Context) []model.Entity

	// Count returns the number of entities tracked.
	Count(ctx context.Context) int

	// Version returns a counter that increases on every mutation.
	Version(ctx context.Context) uint64
}

// MemoryStore implements Store with a mutex-guarded map.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]model.Entity
	version  atomic.Uint64
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	capacity := 0
	for _, opt := range opts {
		capacity = opt(capacity)
	}
	s.entities = make(map[string]model.Entity, capacity)
	return s
}

// Upsert inserts or replaces an entity.
func (s *MemoryStore) Upsert(ctx context.Context, e model.Entity) error {
	if e.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidEntity)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: type %q", ErrInvalidEntity, e.Type)
	}

	s.mu.Lock()
	s.entities[e.Key()] = e
	count := len(s.entities)
	s.mu.Unlock()

	s.version.Add(1)
	metrics.RecordCatalogUpsert()
	metrics.UpdateCatalogEntities(count)
	return nil
}

// Remove deletes an entity if present.
func (s *MemoryStore) Remove(ctx context.Context, typ model.EntityType, id string) bool {
	key := string(typ) + "/" + id

	s.mu.Lock()
	_, ok := s.entities[key]
	if ok {
		delete(s.entities, key)
	}
	count := len(s.entities)
	s.mu.Unlock()

	if ok {
		s.version.Add(1)
		metrics.UpdateCatalogEntities(count)
	}
	return ok
}

// Get returns a single entity by (type, id).
func (s *MemoryStore) Get(ctx context.Context, typ model.EntityType, id string) (model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[string(typ)+"/"+id]
	if !ok {
		return model.Entity{}, ErrNotFound
	}
	return e, nil
}

// Snapshot returns all entities sorted by catalog key so repeated calls
// over an unchanged catalog produce identical slices.
func (s *MemoryStore) Snapshot(ctx context.Context) []model.Entity {
	s.mu.RLock()
	out := make([]model.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Count returns the number of entities tracked.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Version returns the mutation counter.
func (s *MemoryStore) Version(ctx context.Context) uint64 {
	return s.version.Load()
}
