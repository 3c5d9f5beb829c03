package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/model"
)

// MemStore implements Store with in-memory storage. It is the default
// backend and the collaborator used by tests.
type MemStore struct {
	mu     sync.RWMutex
	funkos map[string]model.Funko
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		funkos: make(map[string]model.Funko),
	}
}

// FindAll returns every Funko sorted by id.
func (s *MemStore) FindAll(ctx context.Context) ([]model.Funko, error) {
	if err := ctxErr(ctx, "find all"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Funko, 0, len(s.funkos))
	for _, f := range s.funkos {
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindByName returns all Funkos with an exact name match, sorted by id.
func (s *MemStore) FindByName(ctx context.Context, name string) ([]model.Funko, error) {
	if err := ctxErr(ctx, "find by name"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Funko, 0)
	for _, f := range s.funkos {
		if f.Name == name {
			out = append(out, f)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindByID retrieves a Funko by its id.
func (s *MemStore) FindByID(ctx context.Context, id string) (*model.Funko, error) {
	if err := ctxErr(ctx, "find by id"); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.funkos[id]
	if !exists {
		return nil, ErrNotFound
	}

	return &f, nil
}

// Save persists a new Funko under its own id.
func (s *MemStore) Save(ctx context.Context, f *model.Funko) (*model.Funko, error) {
	if err := ctxErr(ctx, "save"); err != nil {
		return nil, err
	}

	if f == nil {
		return nil, ErrNilFunko
	}
	if f.ID == "" {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.funkos[f.ID]; exists {
		return nil, ErrAlreadyExists
	}

	stored := *f
	s.funkos[stored.ID] = stored

	return &stored, nil
}

// Update replaces the Funko stored under id.
func (s *MemStore) Update(ctx context.Context, id string, f *model.Funko) (*model.Funko, error) {
	if err := ctxErr(ctx, "update"); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, ErrInvalidID
	}
	if f == nil {
		return nil, ErrNilFunko
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.funkos[id]; !exists {
		return nil, ErrNotFound
	}

	updated := *f
	updated.ID = id
	s.funkos[id] = updated

	return &updated, nil
}

// Delete removes a Funko by id, reporting whether a row was removed.
func (s *MemStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctxErr(ctx, "delete"); err != nil {
		return false, err
	}

	if id == "" {
		return false, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.funkos[id]; !exists {
		return false, nil
	}

	delete(s.funkos, id)
	return true, nil
}

// ctxErr reports context cancellation as a wrapped error.
func ctxErr(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}
