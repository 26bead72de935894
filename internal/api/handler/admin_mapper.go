package handler

import (
	"time"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

func toProfileResponse(p *domain.Profile) profileResponse {
	return profileResponse{
		ID:                    p.ID,
		Email:                 p.Email,
		FullName:              p.FullName,
		IsAdmin:               p.IsAdmin,
		EmailNotifications:    p.EmailNotifications,
		ContactNotifications:  p.ContactNotifications,
		WorkshopNotifications: p.WorkshopNotifications,
		CourseNotifications:   p.CourseNotifications,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   s.ExpiresAt,
	}
}

func toGateResponse(state domain.GateState, profile *domain.Profile, seq uint64) gateResponse {
	resp := gateResponse{State: state, Seq: seq}
	if state == domain.GateAuthorized && profile != nil {
		p := toProfileResponse(profile)
		resp.Profile = &p
	}
	return resp
}

func toGrantAdminResponse(r *ports.ElevationResult) grantAdminResponse {
	resp := grantAdminResponse{
		Outcome:             string(r.Outcome),
		ProfileID:           r.ProfileID,
		Email:               r.Email,
		VerificationPending: r.VerificationPending,
	}
	switch {
	case r.Outcome == ports.ElevationUpdated:
		resp.Message = "Admin privileges granted to " + r.Email
	case r.VerificationPending:
		resp.Message = "Admin account created for " + r.Email + ". They must confirm their email before signing in."
	default:
		resp.Message = "Admin account created for " + r.Email
	}
	return resp
}

// toNotificationResponses renders events with their relative time computed
// against now.
func toNotificationResponses(events []domain.NotificationEvent, now time.Time) ([]notificationResponse, int) {
	out := make([]notificationResponse, 0, len(events))
	unread := 0
	for _, ev := range events {
		if !ev.Read {
			unread++
		}
		out = append(out, notificationResponse{
			ID:           ev.ID,
			Kind:         ev.Kind,
			Title:        ev.Title,
			Summary:      ev.Summary,
			Detail:       ev.Detail,
			Read:         ev.Read,
			OccurredAt:   ev.OccurredAt,
			RelativeTime: domain.RelativeTime(ev.OccurredAt, now),
		})
	}
	return out, unread
}
