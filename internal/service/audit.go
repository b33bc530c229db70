package service

import (
	"context"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
)

func (s *Service) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	err := s.view(ctx, "audit.list", func(q store.Tx, actor domain.Actor) error {
		logs, err := q.ListAuditLogs(ctx, actor.LocationID, clampLimit(limit))
		out = logs
		return err
	})
	return out, err
}
