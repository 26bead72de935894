package domain

import "time"

// ContactSubmission is a message sent through the public contact form.
type ContactSubmission struct {
	ID        string    `json:"id" bson:"_id"`
	FirstName string    `json:"first_name" bson:"first_name"`
	LastName  string    `json:"last_name" bson:"last_name"`
	Email     string    `json:"email" bson:"email"`
	Subject   string    `json:"subject" bson:"subject"`
	Message   string    `json:"message" bson:"message"`
	UserID    string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// WorkshopRegistration links a user to a workshop they signed up for.
type WorkshopRegistration struct {
	ID           string    `json:"id" bson:"_id"`
	WorkshopID   string    `json:"workshop_id" bson:"workshop_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
}

// CourseEnrollment links a user to a course and tracks their progress.
type CourseEnrollment struct {
	ID         string    `json:"id" bson:"_id"`
	CourseID   string    `json:"course_id" bson:"course_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	Progress   int       `json:"progress" bson:"progress"`
	Completed  bool      `json:"completed" bson:"completed"`
	EnrolledAt time.Time `json:"enrolled_at" bson:"enrolled_at"`
}
