package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotificationKind identifies which source collection an event came from.
type NotificationKind string

const (
	KindContact  NotificationKind = "contact"
	KindWorkshop NotificationKind = "workshop"
	KindCourse   NotificationKind = "course"
)

// AllKinds lists every kind in source-collection fetch order. Ties in
// OccurredAt keep this order.
var AllKinds = []NotificationKind{KindContact, KindWorkshop, KindCourse}

// Filter selects which kinds a listing includes.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterContact  Filter = Filter(KindContact)
	FilterWorkshop Filter = Filter(KindWorkshop)
	FilterCourse   Filter = Filter(KindCourse)
)

// ParseFilter maps raw input to a Filter. Empty input means all.
func ParseFilter(raw string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterContact, FilterWorkshop, FilterCourse:
		return f, nil
	default:
		return "", NewValidationError(fmt.Sprintf("unknown notification filter %q", raw))
	}
}

// Includes reports whether kind is part of the filter.
func (f Filter) Includes(kind NotificationKind) bool {
	return f == FilterAll || f == Filter(kind)
}

// Kinds returns the kinds selected by f in fetch order.
func (f Filter) Kinds() []NotificationKind {
	out := make([]NotificationKind, 0, len(AllKinds))
	for _, k := range AllKinds {
		if f.Includes(k) {
			out = append(out, k)
		}
	}
	return out
}

// NotificationEvent is the normalized view of one row from any source
// collection. It is rebuilt on every listing and never stored.
type NotificationEvent struct {
	ID         string           `json:"id"`
	SourceID   string           `json:"source_id"`
	Kind       NotificationKind `json:"kind"`
	Title      string           `json:"title"`
	Summary    string           `json:"summary"`
	Detail     any              `json:"detail"`
	Read       bool             `json:"read"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// ContactDetail is the expanded view of a contact submission.
type ContactDetail struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// WorkshopDetail is the expanded view of a workshop registration.
type WorkshopDetail struct {
	UserName      string    `json:"user_name"`
	WorkshopTitle string    `json:"workshop_title"`
	RegisteredAt  time.Time `json:"registered_at"`
}

// CourseDetail is the expanded view of a course enrollment.
type CourseDetail struct {
	UserName    string    `json:"user_name"`
	CourseTitle string    `json:"course_title"`
	Progress    int       `json:"progress"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

// EventID builds the feed-wide identifier for a source row. Source ids are
// only unique within their collection.
func EventID(kind NotificationKind, sourceID string) string {
	return string(kind) + ":" + sourceID
}

// ParseEventID splits an event id into kind and source id.
func ParseEventID(id string) (NotificationKind, string, error) {
	kind, sourceID, ok := strings.Cut(id, ":")
	if !ok || sourceID == "" {
		return "", "", NewValidationError(fmt.Sprintf("malformed notification id %q", id))
	}
	switch k := NotificationKind(kind); k {
	case KindContact, KindWorkshop, KindCourse:
		return k, sourceID, nil
	default:
		return "", "", NewValidationError(fmt.Sprintf("unknown notification kind %q", kind))
	}
}

// RelativeTime renders occurred relative to now the way the notification
// list shows it.
func RelativeTime(occurred, now time.Time) string {
	diff := now.Sub(occurred)
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return plural(minutes, "minute") + " ago"
	case hours < 24:
		return plural(hours, "hour") + " ago"
	case days < 7:
		return plural(days, "day") + " ago"
	default:
		return occurred.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
