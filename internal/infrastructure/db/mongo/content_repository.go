package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// contentLayout describes how one content collection is listed.
type contentLayout struct {
	collection string
	sort       bson.D
	// searchFields are matched by ContentQuery.Search.
	searchFields []string
}

var contentLayouts = map[domain.ContentKind]contentLayout{
	domain.ContentCourses: {
		collection:   coursesCollection,
		sort:         bson.D{{Key: "created_at", Value: 1}},
		searchFields: []string{"title", "description"},
	},
	domain.ContentWorkshops: {
		collection:   workshopsCollection,
		sort:         bson.D{{Key: "date", Value: 1}},
		searchFields: []string{"title", "description"},
	},
	domain.ContentElectronics: {
		collection:   electronicsCollection,
		sort:         bson.D{{Key: "name", Value: 1}},
		searchFields: []string{"name", "description"},
	},
	domain.ContentProjects: {
		collection:   projectsCollection,
		sort:         bson.D{{Key: "created_at", Value: -1}},
		searchFields: []string{"title", "description"},
	},
}

// ContentRepository implements ports.ContentRepository for one content
// collection.
type ContentRepository[T domain.Content] struct {
	col    *mongo.Collection
	layout contentLayout
}

var (
	_ ports.ContentRepository[*domain.Course]     = (*ContentRepository[*domain.Course])(nil)
	_ ports.ContentRepository[*domain.Workshop]   = (*ContentRepository[*domain.Workshop])(nil)
	_ ports.ContentRepository[*domain.Electronic] = (*ContentRepository[*domain.Electronic])(nil)
	_ ports.ContentRepository[*domain.Project]    = (*ContentRepository[*domain.Project])(nil)
)

func NewContentRepository[T domain.Content](db *mongo.Database, kind domain.ContentKind) (*ContentRepository[T], error) {
	layout, ok := contentLayouts[kind]
	if !ok {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	return &ContentRepository[T]{col: db.Collection(layout.collection), layout: layout}, nil
}

// contentFilter builds the list filter. Search is a literal, case-insensitive
// substring match on any of the search fields.
func contentFilter(layout contentLayout, q domain.ContentQuery) bson.M {
	filter := bson.M{}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		or := make(bson.A, 0, len(layout.searchFields))
		for _, field := range layout.searchFields {
			or = append(or, bson.M{field: pattern})
		}
		filter["$or"] = or
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	return filter
}

func (r *ContentRepository[T]) List(ctx context.Context, q domain.ContentQuery) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items, err := findAll[T](ctx, r.col, contentFilter(r.layout, q), options.Find().SetSort(r.layout.sort))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.layout.collection, err)
	}
	return items, nil
}

func (r *ContentRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var zero T
	items, err := findAll[T](ctx, r.col, bson.M{"_id": id}, options.Find().SetLimit(1))
	if err != nil {
		return zero, fmt.Errorf("find %s: %w", r.layout.collection, err)
	}
	if len(items) == 0 {
		return zero, domain.ErrContentNotFound
	}
	return items[0], nil
}

func (r *ContentRepository[T]) Insert(ctx context.Context, item T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert %s: %w", r.layout.collection, err)
	}
	return nil
}

func (r *ContentRepository[T]) Replace(ctx context.Context, item T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": item.RecordID()}, item)
	if err != nil {
		return fmt.Errorf("replace %s: %w", r.layout.collection, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

func (r *ContentRepository[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.layout.collection, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

// EnsureIndexes indexes the category filter.
func (r *ContentRepository[T]) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	})
	return err
}
