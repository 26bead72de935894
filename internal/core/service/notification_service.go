package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/circuitcraft/academy-admin/internal/api/metrics"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

const (
	titleContact  = "New Contact Form Submission"
	titleWorkshop = "New Workshop Registration"
	titleCourse   = "New Course Enrollment"

	actorSummaryFallback    = "User"
	actorDetailFallback     = "Unknown"
	workshopSummaryFallback = "Workshop"
	workshopDetailFallback  = "Unknown Workshop"
	courseSummaryFallback   = "Course"
	courseDetailFallback    = "Unknown Course"
)

// NotificationSources groups the collections the feed is built from.
type NotificationSources struct {
	Contacts      ports.ContactRepository
	Registrations ports.RegistrationRepository
	Enrollments   ports.EnrollmentRepository
	Workshops     ports.WorkshopRepository
	Courses       ports.CourseRepository
	Profiles      ports.ProfileLookup
}

type notificationService struct {
	src NotificationSources
	log zerolog.Logger
}

// NewNotificationService returns a NotificationService implementation.
func NewNotificationService(src NotificationSources, log zerolog.Logger) ports.NotificationService {
	return &notificationService{src: src, log: log}
}

// ListNotifications fetches every kind selected by filter concurrently,
// joins each kind's rows to their workshop, course and actor in batches, and
// returns the merged events newest first.
func (s *notificationService) ListNotifications(ctx context.Context, filter domain.Filter) ([]domain.NotificationEvent, error) {
	filter, err := domain.ParseFilter(string(filter))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.NotificationListDuration.WithLabelValues(string(filter)).Observe(time.Since(start).Seconds())
	}()

	kinds := filter.Kinds()
	results := make([][]domain.NotificationEvent, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			events, err := s.fetchKind(gctx, kind)
			if err != nil {
				// One failing source must not hide the others.
				s.log.Error().Err(err).Str("kind", string(kind)).Msg("notification source fetch failed")
				metrics.NotificationSourceErrorsTotal.WithLabelValues(string(kind)).Inc()
				return nil
			}
			results[i] = events
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []domain.NotificationEvent
	for _, events := range results {
		merged = append(merged, events...)
	}
	// Stable so equal timestamps keep fetch order.
	slices.SortStableFunc(merged, func(a, b domain.NotificationEvent) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})

	return merged, nil
}

func (s *notificationService) fetchKind(ctx context.Context, kind domain.NotificationKind) ([]domain.NotificationEvent, error) {
	switch kind {
	case domain.KindContact:
		return s.contactEvents(ctx)
	case domain.KindWorkshop:
		return s.workshopEvents(ctx)
	case domain.KindCourse:
		return s.courseEvents(ctx)
	default:
		return nil, fmt.Errorf("unsupported notification kind %q", kind)
	}
}

func (s *notificationService) contactEvents(ctx context.Context) ([]domain.NotificationEvent, error) {
	rows, err := s.src.Contacts.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	events := make([]domain.NotificationEvent, 0, len(rows))
	for _, c := range rows {
		name := c.FirstName + " " + c.LastName
		events = append(events, domain.NotificationEvent{
			ID:       domain.EventID(domain.KindContact, c.ID),
			SourceID: c.ID,
			Kind:     domain.KindContact,
			Title:    titleContact,
			Summary:  name + " - " + c.Subject,
			Detail: domain.ContactDetail{
				Name:    name,
				Email:   c.Email,
				Subject: c.Subject,
				Message: c.Message,
			},
			Read:       c.Read,
			OccurredAt: c.CreatedAt,
		})
	}
	return events, nil
}

func (s *notificationService) workshopEvents(ctx context.Context) ([]domain.NotificationEvent, error) {
	rows, err := s.src.Registrations.ListWorkshopRegistrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workshop registrations: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	workshopIDs := make([]string, 0, len(rows))
	userIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		workshopIDs = append(workshopIDs, r.WorkshopID)
		userIDs = append(userIDs, r.UserID)
	}

	titles := s.workshopTitles(ctx, distinct(workshopIDs))
	actors := s.actorProfiles(ctx, distinct(userIDs))

	events := make([]domain.NotificationEvent, 0, len(rows))
	for _, r := range rows {
		title, found := titles[r.WorkshopID]
		if !found {
			metrics.NotificationJoinMissesTotal.WithLabelValues("workshops").Inc()
		}
		actor := actors[r.UserID]
		if actor == nil {
			metrics.NotificationJoinMissesTotal.WithLabelValues("profiles").Inc()
		}

		events = append(events, domain.NotificationEvent{
			ID:       domain.EventID(domain.KindWorkshop, r.ID),
			SourceID: r.ID,
			Kind:     domain.KindWorkshop,
			Title:    titleWorkshop,
			Summary:  actorLabel(actor, actorSummaryFallback) + " registered for " + orDefault(title, workshopSummaryFallback),
			Detail: domain.WorkshopDetail{
				UserName:      actorLabel(actor, actorDetailFallback),
				WorkshopTitle: orDefault(title, workshopDetailFallback),
				RegisteredAt:  r.RegisteredAt,
			},
			OccurredAt: r.RegisteredAt,
		})
	}
	return events, nil
}

func (s *notificationService) courseEvents(ctx context.Context) ([]domain.NotificationEvent, error) {
	rows, err := s.src.Enrollments.ListCourseEnrollments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	courseIDs := make([]string, 0, len(rows))
	userIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		courseIDs = append(courseIDs, r.CourseID)
		userIDs = append(userIDs, r.UserID)
	}

	titles := s.courseTitles(ctx, distinct(courseIDs))
	actors := s.actorProfiles(ctx, distinct(userIDs))

	events := make([]domain.NotificationEvent, 0, len(rows))
	for _, r := range rows {
		title, found := titles[r.CourseID]
		if !found {
			metrics.NotificationJoinMissesTotal.WithLabelValues("courses").Inc()
		}
		actor := actors[r.UserID]
		if actor == nil {
			metrics.NotificationJoinMissesTotal.WithLabelValues("profiles").Inc()
		}

		events = append(events, domain.NotificationEvent{
			ID:       domain.EventID(domain.KindCourse, r.ID),
			SourceID: r.ID,
			Kind:     domain.KindCourse,
			Title:    titleCourse,
			Summary:  actorLabel(actor, actorSummaryFallback) + " enrolled in " + orDefault(title, courseSummaryFallback),
			Detail: domain.CourseDetail{
				UserName:    actorLabel(actor, actorDetailFallback),
				CourseTitle: orDefault(title, courseDetailFallback),
				Progress:    r.Progress,
				EnrolledAt:  r.EnrolledAt,
			},
			OccurredAt: r.EnrolledAt,
		})
	}
	return events, nil
}

// workshopTitles batch-loads titles by id. A failed lookup is logged and
// yields an empty map so every row falls back to a placeholder.
func (s *notificationService) workshopTitles(ctx context.Context, ids []string) map[string]string {
	workshops, err := s.src.Workshops.FindWorkshopsByIDs(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Int("ids", len(ids)).Msg("workshop lookup failed, using placeholders")
		return nil
	}
	out := make(map[string]string, len(workshops))
	for _, w := range workshops {
		out[w.ID] = w.Title
	}
	return out
}

func (s *notificationService) courseTitles(ctx context.Context, ids []string) map[string]string {
	courses, err := s.src.Courses.FindCoursesByIDs(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Int("ids", len(ids)).Msg("course lookup failed, using placeholders")
		return nil
	}
	out := make(map[string]string, len(courses))
	for _, c := range courses {
		out[c.ID] = c.Title
	}
	return out
}

func (s *notificationService) actorProfiles(ctx context.Context, ids []string) map[string]*domain.Profile {
	profiles, err := s.src.Profiles.FindByIDs(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Int("ids", len(ids)).Msg("actor lookup failed, using placeholders")
		return nil
	}
	out := make(map[string]*domain.Profile, len(profiles))
	for i := range profiles {
		out[profiles[i].ID] = &profiles[i]
	}
	return out
}

// MarkRead persists the read flag of a contact event. Workshop and course
// events have no read column; for them it reports false and writes nothing.
func (s *notificationService) MarkRead(ctx context.Context, eventID string) (bool, error) {
	kind, sourceID, err := domain.ParseEventID(eventID)
	if err != nil {
		return false, err
	}
	if kind != domain.KindContact {
		return false, nil
	}

	if err := s.src.Contacts.MarkContactRead(ctx, sourceID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return false, err
		}
		return false, domain.NewStoreError("mark contact read", err)
	}

	s.log.Debug().Str("event_id", eventID).Msg("notification marked read")
	return true, nil
}

func (s *notificationService) UnreadCount(ctx context.Context) (int, error) {
	events, err := s.ListNotifications(ctx, domain.FilterAll)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range events {
		if !e.Read {
			n++
		}
	}
	return n, nil
}

func actorLabel(p *domain.Profile, fallback string) string {
	switch {
	case p == nil:
		return fallback
	case p.FullName != "":
		return p.FullName
	case p.Email != "":
		return p.Email
	default:
		return fallback
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// distinct returns ids without duplicates or empty strings, keeping first
// occurrence order.
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
