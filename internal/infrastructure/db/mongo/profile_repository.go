package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// ProfileRepository implements ports.ProfileRepository on the profiles
// collection. Documents are keyed by the identity id.
type ProfileRepository struct {
	col *mongo.Collection
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{col: db.Collection(profilesCollection)}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *ProfileRepository) findOne(ctx context.Context, filter bson.M) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Profile
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

// FindByIDs loads every profile whose id is in ids with a single $in query.
func (r *ProfileRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	profiles, err := findAll[domain.Profile](ctx, r.col, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find profiles by ids: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) Insert(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// Upsert writes p keyed on its id in one statement. created_at is only set
// when the document is inserted.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"email":                  p.Email,
			"full_name":              p.FullName,
			"is_admin":               p.IsAdmin,
			"email_notifications":    p.EmailNotifications,
			"contact_notifications":  p.ContactNotifications,
			"workshop_notifications": p.WorkshopNotifications,
			"course_notifications":   p.CourseNotifications,
			"updated_at":             p.UpdatedAt.UTC(),
		},
		"$setOnInsert": bson.M{"created_at": p.CreatedAt.UTC()},
	}

	_, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) CountAdmins(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"is_admin": true})
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// Update applies the non-nil fields of patch to the profile with id.
func (r *ProfileRepository) Update(ctx context.Context, id string, patch domain.ProfilePatch, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": at.UTC()}
	if patch.Email != nil {
		set["email"] = domain.NormalizeEmail(*patch.Email)
	}
	if patch.FullName != nil {
		set["full_name"] = *patch.FullName
	}
	if patch.IsAdmin != nil {
		set["is_admin"] = *patch.IsAdmin
	}
	if patch.EmailNotifications != nil {
		set["email_notifications"] = *patch.EmailNotifications
	}
	if patch.ContactNotifications != nil {
		set["contact_notifications"] = *patch.ContactNotifications
	}
	if patch.WorkshopNotifications != nil {
		set["workshop_notifications"] = *patch.WorkshopNotifications
	}
	if patch.CourseNotifications != nil {
		set["course_notifications"] = *patch.CourseNotifications
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
