// Package controller is the boundary external callers depend on. It
// is a thin pass-through over the catalog service where absence is
// reported as an explicit typed failure rather than a quiet empty
// result.
package controller

import (
	"context"

	"go.uber.org/zap"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/model"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/service"
)

// FunkoController fronts the catalog service for the presentation
// layer.
type FunkoController struct {
	service *service.CatalogService
	logger  *zap.Logger
}

// NewFunkoController creates a FunkoController.
func NewFunkoController(svc *service.CatalogService, logger *zap.Logger) *FunkoController {
	return &FunkoController{
		service: svc,
		logger:  logger,
	}
}

// FindAll returns the full catalog.
func (c *FunkoController) FindAll(ctx context.Context) ([]model.Funko, error) {
	c.logger.Debug("controller: find all")
	return c.service.FindAll(ctx)
}

// FindByID returns the Funko with the given id, or
// service.ErrNotFound.
func (c *FunkoController) FindByID(ctx context.Context, id string) (*model.Funko, error) {
	c.logger.Debug("controller: find by id", zap.String("id", id))
	return c.service.FindByID(ctx, id)
}

// FindByName returns all Funkos matching name, or service.ErrNotFound
// when there are none.
func (c *FunkoController) FindByName(ctx context.Context, name string) ([]model.Funko, error) {
	c.logger.Debug("controller: find by name", zap.String("name", name))
	return c.service.FindByName(ctx, name)
}

// Save validates and stores a new Funko.
func (c *FunkoController) Save(ctx context.Context, f *model.Funko) (*model.Funko, error) {
	c.logger.Debug("controller: save")
	return c.service.Save(ctx, f)
}

// Update replaces the Funko stored under id.
func (c *FunkoController) Update(ctx context.Context, id string, f *model.Funko) (*model.Funko, error) {
	c.logger.Debug("controller: update", zap.String("id", id))
	return c.service.Update(ctx, id, f)
}

// Delete removes the Funko with the given id and returns it. Absence
// surfaces as service.ErrNotFound, a refused removal as
// service.ErrNotRemoved.
func (c *FunkoController) Delete(ctx context.Context, id string) (*model.Funko, error) {
	c.logger.Debug("controller: delete", zap.String("id", id))
	return c.service.Delete(ctx, id)
}

// ImportCSV bulk-loads Funkos from a delimited file.
func (c *FunkoController) ImportCSV(ctx context.Context, path string, policy service.ImportPolicy) (service.ImportReport, error) {
	c.logger.Debug("controller: import", zap.String("path", path))
	return c.service.ImportCSV(ctx, path, policy)
}

// Backup writes a snapshot of the full catalog.
func (c *FunkoController) Backup(ctx context.Context, dir, fileName string) error {
	c.logger.Debug("controller: backup", zap.String("dir", dir), zap.String("file", fileName))
	return c.service.Backup(ctx, dir, fileName)
}
