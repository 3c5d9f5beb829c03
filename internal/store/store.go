// Package store provides durable storage for the Funko catalog.
// The store is the sole source of truth; the service's cache only
// shadows it.
package store

import (
	"context"
	"errors"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/model"
)

// Store errors. These signal semantic outcomes (absence, rejection);
// anything else returned by an implementation is a communication
// failure with the backing storage.
var (
	ErrNotFound      = errors.New("funko not found")
	ErrAlreadyExists = errors.New("funko already exists")
	ErrInvalidID     = errors.New("invalid funko ID")
	ErrNilFunko      = errors.New("funko cannot be nil")
)

// Store defines the persistence operations consumed by the catalog
// service.
type Store interface {
	// FindAll returns every Funko in the store. An empty catalog
	// yields an empty slice, not an error.
	FindAll(ctx context.Context) ([]model.Funko, error)

	// FindByName returns all Funkos whose name matches exactly, in
	// store-defined order. No match yields an empty slice.
	FindByName(ctx context.Context, name string) ([]model.Funko, error)

	// FindByID retrieves a Funko by its id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Funko, error)

	// Save persists a new Funko. ErrAlreadyExists reports a semantic
	// rejection distinct from a communication failure.
	Save(ctx context.Context, f *model.Funko) (*model.Funko, error)

	// Update replaces the Funko stored under id, or ErrNotFound.
	Update(ctx context.Context, id string, f *model.Funko) (*model.Funko, error)

	// Delete removes a Funko by id. The boolean reports whether a row
	// was actually removed; false with a nil error means there was
	// nothing to delete.
	Delete(ctx context.Context, id string) (bool, error)
}
