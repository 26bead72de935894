package ports

import (
	"context"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// WorkshopRepository looks up workshops in batches.
type WorkshopRepository interface {
	// FindWorkshopsByIDs returns the workshops whose id is in ids. Missing
	// ids are simply absent from the result.
	FindWorkshopsByIDs(ctx context.Context, ids []string) ([]domain.Workshop, error)
}

// CourseRepository looks up courses in batches.
type CourseRepository interface {
	// FindCoursesByIDs returns the courses whose id is in ids.
	FindCoursesByIDs(ctx context.Context, ids []string) ([]domain.Course, error)
}

// ProfileLookup is the read-only slice of ProfileRepository the aggregator
// needs for actor names.
type ProfileLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Profile, error)
}
