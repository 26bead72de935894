package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// CatalogRepository resolves workshop and course references in batches.
type CatalogRepository struct {
	workshops *mongo.Collection
	courses   *mongo.Collection
}

var (
	_ ports.WorkshopRepository = (*CatalogRepository)(nil)
	_ ports.CourseRepository   = (*CatalogRepository)(nil)
)

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		workshops: db.Collection(workshopsCollection),
		courses:   db.Collection(coursesCollection),
	}
}

// titleOnly keeps the join payload to what the feed renders.
var titleOnly = options.Find().SetProjection(bson.M{"title": 1})

func (r *CatalogRepository) FindWorkshopsByIDs(ctx context.Context, ids []string) ([]domain.Workshop, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := findAll[domain.Workshop](ctx, r.workshops, bson.M{"_id": bson.M{"$in": ids}}, titleOnly)
	if err != nil {
		return nil, fmt.Errorf("find workshops by ids: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) FindCoursesByIDs(ctx context.Context, ids []string) ([]domain.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := findAll[domain.Course](ctx, r.courses, bson.M{"_id": bson.M{"$in": ids}}, titleOnly)
	if err != nil {
		return nil, fmt.Errorf("find courses by ids: %w", err)
	}
	return out, nil
}
