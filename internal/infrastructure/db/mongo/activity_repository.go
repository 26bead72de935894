package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// ActivityRepository reads the three activity collections the notification
// feed is built from. Rows are written by the public site.
type ActivityRepository struct {
	db *mongo.Database
}

var (
	_ ports.ContactRepository      = (*ActivityRepository)(nil)
	_ ports.RegistrationRepository = (*ActivityRepository)(nil)
	_ ports.EnrollmentRepository   = (*ActivityRepository)(nil)
)

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}

func (r *ActivityRepository) ListContacts(ctx context.Context) ([]domain.ContactSubmission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := findAll[domain.ContactSubmission](ctx, r.db.Collection(contactsCollection), bson.M{}, newestFirst("created_at"))
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	return rows, nil
}

// MarkContactRead sets read=true on one submission.
func (r *ActivityRepository) MarkContactRead(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.Collection(contactsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("mark contact read: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *ActivityRepository) ListWorkshopRegistrations(ctx context.Context) ([]domain.WorkshopRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := findAll[domain.WorkshopRegistration](ctx, r.db.Collection(registrationsCollection), bson.M{}, newestFirst("registered_at"))
	if err != nil {
		return nil, fmt.Errorf("list workshop registrations: %w", err)
	}
	return rows, nil
}

func (r *ActivityRepository) ListCourseEnrollments(ctx context.Context) ([]domain.CourseEnrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := findAll[domain.CourseEnrollment](ctx, r.db.Collection(enrollmentsCollection), bson.M{}, newestFirst("enrolled_at"))
	if err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return rows, nil
}

// EnsureIndexes creates the descending time indexes the listings sort on.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for coll, field := range map[string]string{
		contactsCollection:      "created_at",
		registrationsCollection: "registered_at",
		enrollmentsCollection:   "enrolled_at",
	} {
		model := mongo.IndexModel{Keys: bson.D{{Key: field, Value: -1}}}
		if _, err := r.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("index %s.%s: %w", coll, field, err)
		}
	}
	return nil
}
