package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
)

// Dashboard returns the owner summary for the caller's location, served from
// the cache while it is fresh. A summary computed while a mutation committed
// at the same location is returned but not left in the cache.
func (s *Service) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	actor, ok := ActorFromContext(ctx)
	var seen uint64
	if ok {
		seen = s.version(actor.LocationID)
		cached, hit, err := s.dashboard.Get(ctx, actor.LocationID)
		if err != nil {
			log.Warn().Err(err).Str("component", "cache").Str("location_id", actor.LocationID).Msg("dashboard cache read failed")
		}
		if hit {
			return cached, nil
		}
	}

	var summary domain.DashboardSummary
	err := s.view(ctx, "dashboard.view", func(q store.Tx, actor domain.Actor) error {
		var err error
		summary, err = q.GetDashboardSummary(ctx, actor.LocationID, dayStart(s.now()))
		summary.LocationID = actor.LocationID
		return err
	})
	if err != nil {
		return nil, err
	}
	summary.GeneratedAt = s.now()

	if s.version(actor.LocationID) != seen {
		return &summary, nil
	}
	if err := s.dashboard.Set(ctx, actor.LocationID, &summary, s.dashboardTTL); err != nil {
		log.Warn().Err(err).Str("component", "cache").Str("location_id", actor.LocationID).Msg("dashboard cache write failed")
	}
	if s.version(actor.LocationID) != seen {
		if err := s.dashboard.Invalidate(context.WithoutCancel(ctx), actor.LocationID); err != nil {
			log.Warn().Err(err).Str("component", "cache").Str("location_id", actor.LocationID).Msg("failed to drop stale dashboard")
		}
	}
	return &summary, nil
}
