package ports

import (
	"context"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// ContentRepository persists one collection of site content. Every method
// is a single store operation.
type ContentRepository[T domain.Content] interface {
	// List returns the records matching q in the collection's display order.
	List(ctx context.Context, q domain.ContentQuery) ([]T, error)
	// FindByID returns domain.ErrContentNotFound when no record matches.
	FindByID(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, item T) error
	// Replace overwrites the record with item's id. Returns
	// domain.ErrContentNotFound when it does not exist.
	Replace(ctx context.Context, item T) error
	// Delete returns domain.ErrContentNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error
}

// ContentService manages one kind of site content from the admin area.
type ContentService[T domain.Content] interface {
	Kind() domain.ContentKind
	List(ctx context.Context, q domain.ContentQuery) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, item T) (T, error)
	// Update replaces the record id with item, keeping its creation time.
	Update(ctx context.Context, id string, item T) (T, error)
	Delete(ctx context.Context, id string) error
}
