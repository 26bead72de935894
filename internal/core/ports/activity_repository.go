package ports

import (
	"context"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// ContactRepository reads contact form submissions and persists their read flag.
type ContactRepository interface {
	// ListContacts returns submissions newest first.
	ListContacts(ctx context.Context) ([]domain.ContactSubmission, error)
	// MarkContactRead sets read=true. Returns domain.ErrRecordNotFound.
	MarkContactRead(ctx context.Context, id string) error
}

// RegistrationRepository reads workshop registrations.
type RegistrationRepository interface {
	// ListWorkshopRegistrations returns registrations newest first.
	ListWorkshopRegistrations(ctx context.Context) ([]domain.WorkshopRegistration, error)
}

// EnrollmentRepository reads course enrollments.
type EnrollmentRepository interface {
	// ListCourseEnrollments returns enrollments newest first.
	ListCourseEnrollments(ctx context.Context) ([]domain.CourseEnrollment, error)
}
