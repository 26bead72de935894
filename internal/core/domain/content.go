package domain

import (
	"strings"
	"time"
)

// ContentKind names a collection of site content managed from the admin area.
type ContentKind string

const (
	ContentCourses     ContentKind = "courses"
	ContentWorkshops   ContentKind = "workshops"
	ContentElectronics ContentKind = "electronics"
	ContentProjects    ContentKind = "projects"
)

// ContentQuery narrows a content listing. Search matches the title (name for
// electronics) or the description, case-insensitively. Category is exact.
type ContentQuery struct {
	Search   string
	Category string
}

// Content is implemented by the pointer types of the managed content records.
type Content interface {
	*Course | *Workshop | *Electronic | *Project
	RecordID() string
	Created() time.Time
	// Stamp sets the id and timestamps a write persists.
	Stamp(id string, createdAt, updatedAt time.Time)
	// Normalize trims free-text input.
	Normalize()
}

// Course is a self-paced course. The notification feed only reads its title.
type Course struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title" validate:"required"`
	Description string    `json:"description" bson:"description" validate:"required"`
	Category    string    `json:"category" bson:"category" validate:"required,oneof=Beginner Intermediate Advanced"`
	Level       int       `json:"level" bson:"level" validate:"min=1,max=3"`
	Lessons     int       `json:"lessons" bson:"lessons" validate:"min=0"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (c *Course) RecordID() string { return c.ID }

func (c *Course) Created() time.Time { return c.CreatedAt }

func (c *Course) Stamp(id string, createdAt, updatedAt time.Time) {
	c.ID, c.CreatedAt, c.UpdatedAt = id, createdAt, updatedAt
}

func (c *Course) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.ImageURL = strings.TrimSpace(c.ImageURL)
}

// Workshop is an in-person session. Date is free text as entered by staff.
type Workshop struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title" validate:"required"`
	Description string    `json:"description" bson:"description" validate:"required"`
	Date        string    `json:"date" bson:"date" validate:"required"`
	Location    string    `json:"location" bson:"location" validate:"required"`
	Category    string    `json:"category" bson:"category" validate:"required"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (w *Workshop) RecordID() string { return w.ID }

func (w *Workshop) Created() time.Time { return w.CreatedAt }

func (w *Workshop) Stamp(id string, createdAt, updatedAt time.Time) {
	w.ID, w.CreatedAt, w.UpdatedAt = id, createdAt, updatedAt
}

func (w *Workshop) Normalize() {
	w.Title = strings.TrimSpace(w.Title)
	w.Description = strings.TrimSpace(w.Description)
	w.Date = strings.TrimSpace(w.Date)
	w.Location = strings.TrimSpace(w.Location)
	w.Category = strings.TrimSpace(w.Category)
	w.ImageURL = strings.TrimSpace(w.ImageURL)
}

// Electronic is an electronic-component reference entry.
type Electronic struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name" validate:"required"`
	Description string    `json:"description" bson:"description" validate:"required"`
	Category    string    `json:"category" bson:"category" validate:"required,oneof=Passives Semiconductors ICs Sensors Displays Electromechanical"`
	HowItWorks  string    `json:"how_it_works,omitempty" bson:"how_it_works,omitempty"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (e *Electronic) RecordID() string { return e.ID }

func (e *Electronic) Created() time.Time { return e.CreatedAt }

func (e *Electronic) Stamp(id string, createdAt, updatedAt time.Time) {
	e.ID, e.CreatedAt, e.UpdatedAt = id, createdAt, updatedAt
}

func (e *Electronic) Normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Description = strings.TrimSpace(e.Description)
	e.HowItWorks = strings.TrimSpace(e.HowItWorks)
	e.ImageURL = strings.TrimSpace(e.ImageURL)
}

// Project is a guided build project.
type Project struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title" validate:"required"`
	Description string    `json:"description" bson:"description" validate:"required"`
	Category    string    `json:"category" bson:"category" validate:"required,oneof='Start from Basics' 'Improve Through Projects' 'Write Simple Code'"`
	Difficulty  string    `json:"difficulty" bson:"difficulty" validate:"required,oneof=Beginner Intermediate Advanced"`
	Time        string    `json:"time" bson:"time" validate:"required"`
	Tools       []string  `json:"tools" bson:"tools"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (p *Project) RecordID() string { return p.ID }

func (p *Project) Created() time.Time { return p.CreatedAt }

func (p *Project) Stamp(id string, createdAt, updatedAt time.Time) {
	p.ID, p.CreatedAt, p.UpdatedAt = id, createdAt, updatedAt
}

// Normalize trims every field and drops blank tools, so "a, ,b" stores [a b].
func (p *Project) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Time = strings.TrimSpace(p.Time)
	p.ImageURL = strings.TrimSpace(p.ImageURL)

	tools := make([]string, 0, len(p.Tools))
	for _, t := range p.Tools {
		if t = strings.TrimSpace(t); t != "" {
			tools = append(tools, t)
		}
	}
	p.Tools = tools
}
