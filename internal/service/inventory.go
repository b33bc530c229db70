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

type inventoryAdjusted struct {
	ProductID string `json:"product_id"`
	QtyChange int    `json:"qty_change"`
	QtyOnHand int    `json:"qty_on_hand"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// AdjustInventory applies a signed correction to the warehouse balance.
func (s *Service) AdjustInventory(ctx context.Context, req domain.InventoryAdjustRequest) (*domain.InventoryAdjustResponse, error) {
	if req.QtyChange == 0 {
		return nil, apperr.New(apperr.BadQty, "qty change must not be zero")
	}

	var resp domain.InventoryAdjustResponse
	err := s.mutate(ctx, "inventory.adjust", func(m *mutation) error {
		qty, err := adjustWarehouse(m, req.ProductID, req.QtyChange, strings.TrimSpace(req.Reason), "")
		if err != nil {
			return err
		}
		resp = domain.InventoryAdjustResponse{ProductID: req.ProductID, QtyOnHand: qty}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func adjustWarehouse(m *mutation, productID string, delta int, reason, requestID string) (int, error) {
	product, err := m.tx.GetProduct(m.ctx, m.actor.LocationID, productID)
	if err != nil {
		return 0, notFound(err, apperr.ProductNotFound, fmt.Sprintf("product %s not found", productID))
	}
	qty, err := m.ledger.AdjustInventory(m.ctx, product.LocationID, product.ID, delta)
	if err != nil {
		return 0, err
	}

	m.emit(events.InventoryAdjusted, inventoryAdjusted{
		ProductID: product.ID,
		QtyChange: delta,
		QtyOnHand: qty,
		Reason:    reason,
		RequestID: requestID,
	})
	return qty, m.audit("INVENTORY_ADJUST", "inventory", product.ID, fmt.Sprintf(
		"Adjusted %s by %+d to %d. reason=%s", product.SKU, delta, qty, defaultString(reason, "-"),
	))
}

// RecordArrival books goods received into the warehouse together with the
// supporting document links.
func (s *Service) RecordArrival(ctx context.Context, req domain.ArrivalCreateRequest) (*domain.InventoryArrival, error) {
	if req.QtyReceived <= 0 {
		return nil, apperr.New(apperr.BadQty, "qty received must be positive")
	}

	var created domain.InventoryArrival
	err := s.mutate(ctx, "inventory.arrival", func(m *mutation) error {
		product, err := m.tx.GetProduct(ctx, m.actor.LocationID, req.ProductID)
		if err != nil {
			return notFound(err, apperr.ProductNotFound, fmt.Sprintf("product %s not found", req.ProductID))
		}
		if _, err := m.ledger.AdjustInventory(ctx, product.LocationID, product.ID, req.QtyReceived); err != nil {
			return err
		}

		docs := make([]domain.ArrivalDocument, 0, len(req.DocumentURLs))
		for _, raw := range req.DocumentURLs {
			url := strings.TrimSpace(raw)
			if url == "" {
				continue
			}
			docs = append(docs, domain.ArrivalDocument{ID: xid.New("doc"), FileURL: url, UploadedAt: m.now})
		}

		created = domain.InventoryArrival{
			ID:          xid.New("arrival"),
			LocationID:  product.LocationID,
			ProductID:   product.ID,
			QtyReceived: req.QtyReceived,
			Notes:       strings.TrimSpace(req.Notes),
			CreatedBy:   m.actor.UserID,
			CreatedAt:   m.now,
			Documents:   docs,
		}
		if err := m.tx.CreateArrival(ctx, created); err != nil {
			return err
		}

		m.emit(events.InventoryArrivalRecorded, created)
		return m.audit("INVENTORY_ARRIVAL", "inventory_arrival", created.ID, fmt.Sprintf("Received %d of %s with %d document(s)", created.QtyReceived, product.SKU, len(docs)))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) ListArrivals(ctx context.Context, limit int) ([]domain.InventoryArrival, error) {
	var out []domain.InventoryArrival
	err := s.view(ctx, "inventory.arrivals", func(q store.Tx, actor domain.Actor) error {
		arrivals, err := q.ListArrivals(ctx, actor.LocationID, clampLimit(limit))
		out = arrivals
		return err
	})
	return out, err
}

func (s *Service) CreateAdjustmentRequest(ctx context.Context, req domain.AdjustmentCreateRequest) (*domain.AdjustmentRequest, error) {
	if req.QtyChange == 0 {
		return nil, apperr.New(apperr.BadQty, "qty change must not be zero")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperr.New(apperr.Invalid, "reason is required")
	}

	var created domain.AdjustmentRequest
	err := s.mutate(ctx, "adjust_request.create", func(m *mutation) error {
		if _, err := m.tx.GetProduct(ctx, m.actor.LocationID, req.ProductID); err != nil {
			return notFound(err, apperr.ProductNotFound, fmt.Sprintf("product %s not found", req.ProductID))
		}

		created = domain.AdjustmentRequest{
			ID:          xid.New("adjreq"),
			LocationID:  m.actor.LocationID,
			ProductID:   req.ProductID,
			QtyChange:   req.QtyChange,
			Reason:      reason,
			Status:      domain.AdjustStatusPending,
			RequestedBy: m.actor.UserID,
			CreatedAt:   m.now,
		}
		if err := m.tx.CreateAdjustmentRequest(ctx, created); err != nil {
			return err
		}
		return m.audit("INVENTORY_ADJUST_REQUEST_CREATE", "inventory_adjust_request", created.ID, fmt.Sprintf("Requested %+d of %s. reason=%s", created.QtyChange, created.ProductID, reason))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DecideAdjustmentRequest approves (and applies) or declines a pending request.
func (s *Service) DecideAdjustmentRequest(ctx context.Context, requestID string, decision string) (*domain.AdjustmentRequest, error) {
	decision = strings.ToUpper(strings.TrimSpace(decision))
	if decision != domain.DecisionApprove && decision != domain.DecisionDecline {
		return nil, apperr.New(apperr.Invalid, "decision must be APPROVE or DECLINE")
	}

	var updated domain.AdjustmentRequest
	err := s.mutate(ctx, "adjust_request.decide", func(m *mutation) error {
		req, err := m.tx.LockAdjustmentRequest(ctx, m.actor.LocationID, requestID)
		if err != nil {
			return notFound(err, apperr.NotFound, "adjustment request not found")
		}
		if req.Status != domain.AdjustStatusPending {
			return apperr.Newf(apperr.AlreadyDecided, "adjustment request is already %s", req.Status)
		}

		req.Status = domain.AdjustStatusDeclined
		if decision == domain.DecisionApprove {
			req.Status = domain.AdjustStatusApproved
			if _, err := adjustWarehouse(m, req.ProductID, req.QtyChange, req.Reason, req.ID); err != nil {
				return err
			}
		}

		decidedAt := m.now
		req.DecidedBy = m.actor.UserID
		req.DecidedAt = &decidedAt
		if err := m.tx.UpdateAdjustmentRequest(ctx, *req); err != nil {
			return err
		}
		updated = *req

		return m.audit("INVENTORY_ADJUST_REQUEST_"+decision, "inventory_adjust_request", req.ID, fmt.Sprintf("Adjustment request %s %s", req.ID, strings.ToLower(req.Status)))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) ListAdjustmentRequests(ctx context.Context, status string, limit int) ([]domain.AdjustmentRequest, error) {
	var out []domain.AdjustmentRequest
	err := s.view(ctx, "adjust_request.list", func(q store.Tx, actor domain.Actor) error {
		reqs, err := q.ListAdjustmentRequests(ctx, actor.LocationID, strings.ToUpper(strings.TrimSpace(status)), clampLimit(limit))
		out = reqs
		return err
	})
	return out, err
}

func (s *Service) ListInventory(ctx context.Context) ([]domain.InventoryBalance, error) {
	var out []domain.InventoryBalance
	err := s.view(ctx, "inventory.list", func(q store.Tx, actor domain.Actor) error {
		balances, err := q.ListInventoryBalances(ctx, actor.LocationID)
		out = balances
		return err
	})
	return out, err
}

// ListHoldings returns seller holdings. Sellers always get their own; other
// roles may narrow to one seller or pass "" for all.
func (s *Service) ListHoldings(ctx context.Context, sellerID string) ([]domain.SellerHolding, error) {
	var out []domain.SellerHolding
	err := s.view(ctx, "inventory.holdings", func(q store.Tx, actor domain.Actor) error {
		if actor.Role == domain.RoleSeller {
			sellerID = actor.UserID
		}
		holdings, err := q.ListSellerHoldings(ctx, actor.LocationID, strings.TrimSpace(sellerID))
		out = holdings
		return err
	})
	return out, err
}
