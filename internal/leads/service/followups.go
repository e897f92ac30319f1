package service

import (
	"context"
	"time"

	"salesdesk_backend/internal/authz"
	"salesdesk_backend/internal/leads/transport"
)

// stalledAfter is how long an opportunity may sit in proposal/negotiation
// before it counts as overdue.
const stalledAfter = 48 * time.Hour

// FollowUpsDueToday returns open leads whose follow-up date falls today plus
// opportunities that entered proposal/negotiation yesterday.
func (s *Service) FollowUpsDueToday(ctx context.Context, scope authz.Scope) (transport.FollowUpsResponse, error) {
	now := s.now().UTC()
	dayStart := startOfDay(now)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	leads, err := s.repo.LeadsDueBetween(ctx, scope, dayStart, dayEnd)
	if err != nil {
		return transport.FollowUpsResponse{}, err
	}

	yesterdayStart := dayStart.Add(-24 * time.Hour)
	yesterdayEnd := dayStart.Add(-time.Nanosecond)
	opps, err := s.repo.OpportunitiesEnteredLateStageBetween(ctx, scope, yesterdayStart, yesterdayEnd)
	if err != nil {
		return transport.FollowUpsResponse{}, err
	}

	return transport.FollowUpsResponse{
		Leads:         toLeadResponses(leads),
		Opportunities: toFollowUpOpportunities(opps),
	}, nil
}

// OverdueFollowUps returns open leads whose follow-up date has passed plus
// opportunities stalled in proposal/negotiation for more than two days with
// no call logged since the stage change.
func (s *Service) OverdueFollowUps(ctx context.Context, scope authz.Scope) (transport.FollowUpsResponse, error) {
	now := s.now().UTC()
	dayStart := startOfDay(now)

	leads, err := s.repo.LeadsOverdue(ctx, scope, dayStart)
	if err != nil {
		return transport.FollowUpsResponse{}, err
	}

	opps, err := s.repo.OpportunitiesStalledSince(ctx, scope, now.Add(-stalledAfter))
	if err != nil {
		return transport.FollowUpsResponse{}, err
	}

	return transport.FollowUpsResponse{
		Leads:         toLeadResponses(leads),
		Opportunities: toFollowUpOpportunities(opps),
	}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
