package service

import (
	"context"
	"fmt"
	"strings"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/events"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

// CreateStockRequest asks the warehouse for stock on behalf of the calling
// seller. Repeated products are merged into one line.
func (s *Service) CreateStockRequest(ctx context.Context, req domain.StockRequestCreateRequest) (*domain.StockRequest, error) {
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.BadQty, "stock request needs at least one item")
	}

	var created domain.StockRequest
	err := s.mutate(ctx, "stock_request.create", func(m *mutation) error {
		items := make([]domain.StockRequestItem, 0, len(req.Items))
		index := make(map[string]int, len(req.Items))
		for i, line := range req.Items {
			if line.QtyRequested <= 0 {
				return apperr.Newf(apperr.BadQty, "item %d: qty requested must be positive", i+1)
			}
			if _, err := m.tx.GetProduct(ctx, m.actor.LocationID, line.ProductID); err != nil {
				return notFound(err, apperr.ProductNotFound, fmt.Sprintf("product %s not found", line.ProductID))
			}
			if at, ok := index[line.ProductID]; ok {
				items[at].QtyRequested += line.QtyRequested
				continue
			}
			index[line.ProductID] = len(items)
			items = append(items, domain.StockRequestItem{ProductID: line.ProductID, QtyRequested: line.QtyRequested})
		}

		created = domain.StockRequest{
			ID:         xid.New("req"),
			LocationID: m.actor.LocationID,
			SellerID:   m.actor.UserID,
			Status:     domain.RequestStatusPending,
			Note:       strings.TrimSpace(req.Note),
			CreatedAt:  m.now,
			Items:      items,
		}
		if err := m.tx.CreateStockRequest(ctx, created); err != nil {
			return err
		}

		m.emit(events.StockRequestCreated, created)
		return m.audit("STOCK_REQUEST_CREATE", "stock_request", created.ID, fmt.Sprintf("Stock request %s with %d line(s)", created.ID, len(items)))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DecideStockRequest approves or rejects a pending request. On approval each
// line gets its override from QtyApproved, or the full requested quantity.
func (s *Service) DecideStockRequest(ctx context.Context, requestID string, req domain.StockRequestDecision) (*domain.StockRequest, error) {
	decision := strings.ToUpper(strings.TrimSpace(req.Decision))
	if decision != domain.DecisionApprove && decision != domain.DecisionReject {
		return nil, apperr.New(apperr.Invalid, "decision must be APPROVE or REJECT")
	}

	var updated domain.StockRequest
	err := s.mutate(ctx, "stock_request.decide", func(m *mutation) error {
		request, err := m.tx.LockStockRequest(ctx, m.actor.LocationID, requestID)
		if err != nil {
			return notFound(err, apperr.NotFound, "stock request not found")
		}
		if request.Status != domain.RequestStatusPending {
			return apperr.WrongStatus("stock request", request.Status)
		}

		action := "STOCK_REQUEST_REJECT"
		request.Status = domain.RequestStatusRejected
		if decision == domain.DecisionApprove {
			action = "STOCK_REQUEST_APPROVE"
			request.Status = domain.RequestStatusApproved
			for i, item := range request.Items {
				approved := item.QtyRequested
				if override, ok := req.QtyApproved[item.ProductID]; ok {
					if override < 0 || override > item.QtyRequested {
						return apperr.Newf(apperr.BadQty, "approved qty for %s must be within 0..%d", item.ProductID, item.QtyRequested)
					}
					approved = override
				}
				request.Items[i].QtyApproved = approved
			}
		}

		decidedAt := m.now
		request.DecidedBy = m.actor.UserID
		request.DecidedAt = &decidedAt
		if err := m.tx.UpdateStockRequest(ctx, *request); err != nil {
			return err
		}
		updated = *request

		m.emit(events.StockRequestDecided, updated)
		return m.audit(action, "stock_request", request.ID, fmt.Sprintf("Stock request %s %s", request.ID, strings.ToLower(request.Status)))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ReleaseStockRequest moves every approved quantity from the warehouse to the
// requesting seller. A shortfall on any line aborts the whole release.
func (s *Service) ReleaseStockRequest(ctx context.Context, requestID string) (*domain.StockRequest, error) {
	var updated domain.StockRequest
	err := s.mutate(ctx, "stock_request.release", func(m *mutation) error {
		request, err := m.tx.LockStockRequest(ctx, m.actor.LocationID, requestID)
		if err != nil {
			return notFound(err, apperr.NotFound, "stock request not found")
		}
		if request.Status != domain.RequestStatusApproved {
			return apperr.WrongStatus("stock request", request.Status)
		}

		moved := 0
		for _, item := range request.Items {
			if item.QtyApproved <= 0 {
				continue
			}
			if err := m.ledger.TransferWarehouseToSeller(ctx, request.LocationID, request.SellerID, item.ProductID, item.QtyApproved); err != nil {
				return err
			}
			moved += item.QtyApproved
		}

		releasedAt := m.now
		request.Status = domain.RequestStatusReleased
		request.ReleasedBy = m.actor.UserID
		request.ReleasedAt = &releasedAt
		if err := m.tx.UpdateStockRequest(ctx, *request); err != nil {
			return err
		}
		updated = *request

		m.emit(events.StockRequestReleased, updated)
		return m.audit("STOCK_RELEASE_TO_SELLER", "stock_request", request.ID, fmt.Sprintf("Released %d unit(s) to seller %s", moved, request.SellerID))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) GetStockRequest(ctx context.Context, requestID string) (*domain.StockRequest, error) {
	var out *domain.StockRequest
	err := s.view(ctx, "stock_request.get", func(q store.Tx, actor domain.Actor) error {
		request, err := q.GetStockRequest(ctx, actor.LocationID, requestID)
		if err != nil {
			return notFound(err, apperr.NotFound, "stock request not found")
		}
		if actor.Role == domain.RoleSeller && request.SellerID != actor.UserID {
			return apperr.New(apperr.NotFound, "stock request not found")
		}
		out = request
		return nil
	})
	return out, err
}

// ListStockRequests filters by status. Sellers only see their own requests.
func (s *Service) ListStockRequests(ctx context.Context, status string, limit int) ([]domain.StockRequest, error) {
	var out []domain.StockRequest
	err := s.view(ctx, "stock_request.list", func(q store.Tx, actor domain.Actor) error {
		sellerID := ""
		if actor.Role == domain.RoleSeller {
			sellerID = actor.UserID
		}
		requests, err := q.ListStockRequests(ctx, actor.LocationID, strings.ToUpper(strings.TrimSpace(status)), sellerID, clampLimit(limit))
		out = requests
		return err
	})
	return out, err
}
