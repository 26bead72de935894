package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/api/metrics"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

var contentMessages = fieldMessages{
	"*.required":       "Please fill in all required fields",
	"*.url":            "Please enter a valid image URL",
	"*.oneof":          "Please choose a category from the list",
	"Difficulty.oneof": "Please choose a difficulty from the list",
	"Level.min":        "Level must be between 1 and 3",
	"Level.max":        "Level must be between 1 and 3",
	"Lessons.min":      "Lessons cannot be negative",
}

type contentService[T domain.Content] struct {
	kind  domain.ContentKind
	repo  ports.ContentRepository[T]
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// NewContentService returns the ContentService for one kind of content.
func NewContentService[T domain.Content](kind domain.ContentKind, repo ports.ContentRepository[T], log zerolog.Logger) ports.ContentService[T] {
	return &contentService[T]{
		kind:  kind,
		repo:  repo,
		log:   log.With().Str("kind", string(kind)).Logger(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *contentService[T]) Kind() domain.ContentKind { return s.kind }

// List never returns a nil slice, so an empty result encodes as [].
func (s *contentService[T]) List(ctx context.Context, q domain.ContentQuery) ([]T, error) {
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)

	items, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, domain.NewStoreError("list "+string(s.kind), err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *contentService[T]) Get(ctx context.Context, id string) (T, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		var zero T
		if errors.Is(err, domain.ErrContentNotFound) {
			return zero, err
		}
		return zero, domain.NewStoreError("find "+string(s.kind), err)
	}
	return item, nil
}

func (s *contentService[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	item.Normalize()
	if err := validateInput(item, contentMessages, "Please fill in all required fields"); err != nil {
		return zero, err
	}

	now := s.now().UTC()
	item.Stamp(s.newID(), now, now)
	if err := s.repo.Insert(ctx, item); err != nil {
		return zero, domain.NewStoreError("insert "+string(s.kind), err)
	}

	metrics.ContentWritesTotal.WithLabelValues(string(s.kind), "create").Inc()
	s.log.Info().Str("id", item.RecordID()).Msg("content created")
	return item, nil
}

func (s *contentService[T]) Update(ctx context.Context, id string, item T) (T, error) {
	var zero T
	item.Normalize()
	if err := validateInput(item, contentMessages, "Please fill in all required fields"); err != nil {
		return zero, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	item.Stamp(id, existing.Created(), s.now().UTC())
	if err := s.repo.Replace(ctx, item); err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			return zero, err
		}
		return zero, domain.NewStoreError("replace "+string(s.kind), err)
	}

	metrics.ContentWritesTotal.WithLabelValues(string(s.kind), "update").Inc()
	s.log.Info().Str("id", id).Msg("content updated")
	return item, nil
}

func (s *contentService[T]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			return err
		}
		return domain.NewStoreError("delete "+string(s.kind), err)
	}

	metrics.ContentWritesTotal.WithLabelValues(string(s.kind), "delete").Inc()
	s.log.Info().Str("id", id).Msg("content deleted")
	return nil
}
