package handlers

import (
	"context"

	"edf-viewer/internal/catalog"
	"edf-viewer/internal/edf"
)

// Catalog is the part of the catalogue the handlers depend on.
type Catalog interface {
	List(ctx context.Context) ([]edf.Record, error)
	ListSorted(ctx context.Context) ([]edf.Record, error)
	Rescan(ctx context.Context, sorted bool) ([]edf.Record, error)
	IsReady() bool
	GetHealthStatus() catalog.HealthStatus
}

type Handlers struct {
	catalog Catalog
}

func New(cat Catalog) *Handlers {
	return &Handlers{
		catalog: cat,
	}
}
