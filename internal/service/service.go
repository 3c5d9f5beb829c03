// Package service implements the catalog service: a read/write-through
// LRU cache in front of the store, the validation gate guarding every
// mutation, and the bulk-import and backup protocols.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/cache"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/model"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/store"
)

// Catalog error taxonomy. Store-level absence and rejection surface as
// typed failures; anything wrapped in ErrStore is a transport or
// database-level communication failure.
var (
	ErrNotValid   = errors.New("funko not valid")
	ErrNotFound   = errors.New("funko not found")
	ErrNotSaved   = errors.New("funko not saved")
	ErrNotRemoved = errors.New("funko not removed")
	ErrStore      = errors.New("store communication failure")
)

// Prometheus metrics.
var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Number of FindByID requests answered from the cache",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Number of FindByID requests that had to query the store",
	})

	importRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_rows_total",
			Help: "Bulk import rows by outcome",
		},
		[]string{"outcome"},
	)
)

// Event actions published to the notifier.
const (
	ActionSaved   = "saved"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event describes a catalog mutation.
type Event struct {
	Action string      `json:"action"`
	Funko  model.Funko `json:"funko"`
}

// Notifier receives catalog mutation events. Implementations must not
// block; the service calls Notify synchronously after each successful
// mutation.
type Notifier interface {
	Notify(Event)
}

// CatalogService orchestrates validation, cache and store for every
// catalog operation. It is safe for concurrent use.
type CatalogService struct {
	store    store.Store
	cache    *cache.FunkoCache
	logger   *zap.Logger
	notifier Notifier
}

// NewCatalogService creates a CatalogService. All collaborators are
// injected explicitly; there is no process-wide instance.
func NewCatalogService(st store.Store, c *cache.FunkoCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:  st,
		cache:  c,
		logger: logger,
	}
}

// SetNotifier registers a mutation event listener. Passing nil
// disables notifications.
func (s *CatalogService) SetNotifier(n Notifier) {
	s.notifier = n
}

// FindAll returns the full catalog straight from the store. Bulk reads
// never consult the cache; an empty catalog is not an error.
func (s *CatalogService) FindAll(ctx context.Context) ([]model.Funko, error) {
	s.logger.Debug("finding all funkos")

	funkos, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: finding all: %v", ErrStore, err)
	}
	return funkos, nil
}

// FindByName returns every Funko whose name matches exactly, in
// store-defined order. An empty result fails with ErrNotFound.
func (s *CatalogService) FindByName(ctx context.Context, name string) ([]model.Funko, error) {
	s.logger.Debug("finding funkos by name", zap.String("name", name))

	funkos, err := s.store.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: finding by name: %v", ErrStore, err)
	}
	if len(funkos) == 0 {
		return nil, fmt.Errorf("%w: name %q", ErrNotFound, name)
	}
	return funkos, nil
}

// FindByID retrieves a Funko, answering from the cache when possible.
// A cache miss queries the store and, when found, populates the cache.
func (s *CatalogService) FindByID(ctx context.Context, id string) (*model.Funko, error) {
	if f, ok := s.cache.Get(id); ok {
		cacheHits.Inc()
		s.logger.Debug("funko found in cache", zap.String("id", id))
		return &f, nil
	}
	cacheMisses.Inc()
	s.logger.Debug("funko not in cache, querying store", zap.String("id", id))

	f, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: finding by id: %v", ErrStore, err)
	}

	s.cache.Put(id, *f)
	return f, nil
}

// Save validates and persists a new Funko, generating an id when the
// caller supplied none. The Funko is cached before the write-through;
// an invalid Funko never reaches cache or store.
func (s *CatalogService) Save(ctx context.Context, f *model.Funko) (*model.Funko, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil funko", ErrNotValid)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotValid, err)
	}

	toSave := *f
	if toSave.ID == "" {
		toSave.ID = model.NewID()
	}
	s.logger.Debug("saving funko", zap.String("id", toSave.ID), zap.String("name", toSave.Name))

	s.cache.Put(toSave.ID, toSave)

	saved, err := s.store.Save(ctx, &toSave)
	if isRejection(err) {
		s.cache.Remove(toSave.ID)
		return nil, fmt.Errorf("%w: %v", ErrNotSaved, err)
	}
	if err != nil {
		s.cache.Remove(toSave.ID)
		return nil, fmt.Errorf("%w: saving: %v", ErrStore, err)
	}

	s.notify(Event{Action: ActionSaved, Funko: *saved})
	return saved, nil
}

// Update validates the replacement and writes it through under the
// caller-supplied id. The replacement is re-keyed: whatever id it
// carried is discarded in favor of the lookup id, so Update can never
// move a Funko to a new identity.
func (s *CatalogService) Update(ctx context.Context, id string, f *model.Funko) (*model.Funko, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil funko", ErrNotValid)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotValid, err)
	}

	replacement := *f
	replacement.ID = id
	s.logger.Debug("updating funko", zap.String("id", id))

	s.cache.Put(id, replacement)

	updated, err := s.store.Update(ctx, id, &replacement)
	if errors.Is(err, store.ErrNotFound) {
		s.cache.Remove(id)
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	if isRejection(err) {
		s.cache.Remove(id)
		return nil, fmt.Errorf("%w: %v", ErrNotValid, err)
	}
	if err != nil {
		s.cache.Remove(id)
		return nil, fmt.Errorf("%w: updating: %v", ErrStore, err)
	}

	s.notify(Event{Action: ActionUpdated, Funko: *updated})
	return updated, nil
}

// Delete removes a Funko by id and returns it. Absence fails with
// ErrNotFound; a store that refuses to remove an existing Funko fails
// with ErrNotRemoved. The cache entry is invalidated on success so a
// later FindByID cannot serve the deleted value.
func (s *CatalogService) Delete(ctx context.Context, id string) (*model.Funko, error) {
	f, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("deleting funko", zap.String("id", id))

	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: deleting: %v", ErrStore, err)
	}
	if !removed {
		return nil, fmt.Errorf("%w: id %s", ErrNotRemoved, id)
	}

	s.cache.Remove(id)
	s.notify(Event{Action: ActionDeleted, Funko: *f})
	return f, nil
}

func (s *CatalogService) notify(e Event) {
	if s.notifier != nil {
		s.notifier.Notify(e)
	}
}

// isRejection reports whether the store refused the write for semantic
// reasons rather than failing to communicate.
func isRejection(err error) bool {
	return errors.Is(err, store.ErrAlreadyExists) ||
		errors.Is(err, store.ErrInvalidID) ||
		errors.Is(err, store.ErrNilFunko)
}
