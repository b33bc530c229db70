package service

import (
	"context"
	"strings"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/events"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

const maxMessageLength = 2000

// PostMessage appends a message to the thread of a sale, stock request or
// product. Sellers may only write on their own sales and stock requests.
func (s *Service) PostMessage(ctx context.Context, req domain.MessageCreateRequest) (*domain.Message, error) {
	entityType := strings.ToLower(strings.TrimSpace(req.EntityType))
	entityID := strings.TrimSpace(req.EntityID)
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, apperr.New(apperr.Invalid, "message is required")
	}
	if len(text) > maxMessageLength {
		return nil, apperr.Newf(apperr.Invalid, "message must be at most %d bytes", maxMessageLength)
	}

	var created domain.Message
	err := s.mutate(ctx, "message.post", func(m *mutation) error {
		if err := checkThread(ctx, m.tx, m.actor, entityType, entityID); err != nil {
			return err
		}
		created = domain.Message{
			ID:         xid.New("msg"),
			LocationID: m.actor.LocationID,
			EntityType: entityType,
			EntityID:   entityID,
			UserID:     m.actor.UserID,
			Role:       m.actor.Role,
			Message:    text,
			CreatedAt:  m.now,
		}
		if err := m.tx.CreateMessage(ctx, created); err != nil {
			return err
		}
		m.emit(events.MessagePosted, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListMessages returns the thread of one entity, oldest first.
func (s *Service) ListMessages(ctx context.Context, entityType string, entityID string) ([]domain.Message, error) {
	entityType = strings.ToLower(strings.TrimSpace(entityType))
	entityID = strings.TrimSpace(entityID)

	var out []domain.Message
	err := s.view(ctx, "message.list", func(q store.Tx, actor domain.Actor) error {
		if err := checkThread(ctx, q, actor, entityType, entityID); err != nil {
			return err
		}
		messages, err := q.ListMessages(ctx, actor.LocationID, entityType, entityID, maxListLimit)
		out = messages
		return err
	})
	return out, err
}

// checkThread resolves the entity a thread hangs off and applies the same
// visibility rules as reading the entity itself.
func checkThread(ctx context.Context, q store.Tx, actor domain.Actor, entityType, entityID string) error {
	if entityID == "" {
		return apperr.New(apperr.Invalid, "entity id is required")
	}
	switch entityType {
	case domain.EntitySale:
		sale, err := q.GetSale(ctx, actor.LocationID, entityID)
		if err != nil {
			return notFound(err, apperr.SaleNotFound, "sale not found")
		}
		if actor.Role == domain.RoleSeller && sale.SellerID != actor.UserID {
			return apperr.New(apperr.SaleNotFound, "sale not found")
		}
	case domain.EntityStockRequest:
		req, err := q.GetStockRequest(ctx, actor.LocationID, entityID)
		if err != nil {
			return notFound(err, apperr.NotFound, "stock request not found")
		}
		if actor.Role == domain.RoleSeller && req.SellerID != actor.UserID {
			return apperr.New(apperr.NotFound, "stock request not found")
		}
	case domain.EntityInventory:
		if _, err := q.GetProduct(ctx, actor.LocationID, entityID); err != nil {
			return notFound(err, apperr.ProductNotFound, "product not found")
		}
	default:
		return apperr.New(apperr.Invalid, "entity type must be sale, stock_request or inventory")
	}
	return nil
}
