package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/events"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

const creditRejectedReason = "Credit rejected"

// CreateCredit opens a credit for the full amount of a pending sale.
func (s *Service) CreateCredit(ctx context.Context, req domain.CreditCreateRequest) (*domain.Credit, error) {
	var created domain.Credit
	err := s.mutate(ctx, "credit.create", func(m *mutation) error {
		sale, err := m.tx.LockSale(ctx, m.actor.LocationID, strings.TrimSpace(req.SaleID))
		if err != nil {
			return notFound(err, apperr.SaleNotFound, "sale not found")
		}
		if sale.Status != domain.SaleStatusPending {
			return apperr.WrongStatus("sale", sale.Status)
		}
		if _, err := m.tx.GetCreditBySale(ctx, sale.LocationID, sale.ID); err == nil {
			return apperr.New(apperr.DuplicateCredit, "sale already has a credit")
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		customerID := sale.CustomerID
		if requested := strings.TrimSpace(req.CustomerID); requested != "" {
			if _, err := m.tx.GetCustomer(ctx, sale.LocationID, requested); err != nil {
				return notFound(err, apperr.NotFound, "customer not found")
			}
			customerID = requested
		}

		created = domain.Credit{
			ID:         xid.New("credit"),
			LocationID: sale.LocationID,
			SaleID:     sale.ID,
			CustomerID: customerID,
			Amount:     sale.TotalAmount,
			Status:     domain.CreditStatusOpen,
			Note:       strings.TrimSpace(req.Note),
			CreatedBy:  m.actor.UserID,
			CreatedAt:  m.now,
		}
		if err := m.tx.CreateCredit(ctx, created); err != nil {
			return conflict(err, apperr.DuplicateCredit, "sale already has a credit")
		}

		m.emit(events.CreditCreated, created)
		return m.audit("CREDIT_CREATE", "credit", created.ID, fmt.Sprintf("Credit %d opened for sale %s", created.Amount, sale.ID))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DecideCredit approves an open credit, or rejects it. Rejection cancels the
// sale, restores its stock and closes the credit.
func (s *Service) DecideCredit(ctx context.Context, creditID string, req domain.CreditDecision) (*domain.Credit, error) {
	decision := strings.ToUpper(strings.TrimSpace(req.Decision))
	if decision != domain.DecisionApprove && decision != domain.DecisionReject {
		return nil, apperr.New(apperr.Invalid, "decision must be APPROVE or REJECT")
	}

	var updated domain.Credit
	err := s.mutate(ctx, "credit.decide", func(m *mutation) error {
		credit, err := m.tx.LockCredit(ctx, m.actor.LocationID, creditID)
		if err != nil {
			return notFound(err, apperr.NotFound, "credit not found")
		}
		if credit.Status != domain.CreditStatusOpen {
			return apperr.WrongStatus("credit", credit.Status)
		}
		if credit.ApprovedAt != nil {
			return apperr.WrongStatus("credit", "APPROVED")
		}

		decidedAt := m.now
		credit.ApprovedBy = m.actor.UserID
		credit.ApprovedAt = &decidedAt
		note := strings.TrimSpace(req.Note)

		action := "CREDIT_APPROVE"
		if decision == domain.DecisionReject {
			action = "CREDIT_REJECT"
			sale, err := m.tx.LockSale(ctx, credit.LocationID, credit.SaleID)
			if err != nil {
				return notFound(err, apperr.SaleNotFound, "sale not found")
			}
			if err := cancelSale(m, sale, defaultString(note, creditRejectedReason)); err != nil {
				return err
			}
			credit.Status = domain.CreditStatusSettled
			credit.SettledBy = m.actor.UserID
			credit.SettledAt = &decidedAt
			credit.Note = defaultString(note, creditRejectedReason)
		} else if note != "" {
			credit.Note = note
		}

		if err := m.tx.UpdateCredit(ctx, *credit); err != nil {
			return err
		}
		updated = *credit

		m.emit(events.CreditDecided, map[string]any{"decision": decision, "credit": updated})
		return m.audit(action, "credit", credit.ID, fmt.Sprintf("Credit %s %s", credit.ID, strings.ToLower(decision)))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SettleCredit collects an approved credit: the payment is recorded, the sale
// completes and the credit closes.
func (s *Service) SettleCredit(ctx context.Context, creditID string, req domain.CreditSettleRequest) (*domain.CreditSettleResponse, error) {
	var resp domain.CreditSettleResponse
	err := s.mutate(ctx, "credit.settle", func(m *mutation) error {
		credit, err := m.tx.LockCredit(ctx, m.actor.LocationID, creditID)
		if err != nil {
			return notFound(err, apperr.NotFound, "credit not found")
		}
		if credit.Status != domain.CreditStatusOpen {
			return apperr.WrongStatus("credit", credit.Status)
		}
		if credit.ApprovedAt == nil {
			return apperr.New(apperr.NotApproved, "credit must be approved first")
		}

		sale, err := m.tx.LockSale(ctx, credit.LocationID, credit.SaleID)
		if err != nil {
			return notFound(err, apperr.SaleNotFound, "sale not found")
		}
		if err := ensureNoPayment(m, sale.ID); err != nil {
			return err
		}
		if sale.Status != domain.SaleStatusPending && sale.Status != domain.SaleStatusAwaitingPaymentRecord {
			return apperr.WrongStatus("sale", sale.Status)
		}

		payment, err := insertPayment(m, sale, "", defaultString(req.Method, domain.MethodCash), defaultString(req.Note, "Credit settlement"))
		if err != nil {
			return err
		}
		if err := appendCash(m, domain.CashTypeCreditSettlement, payment, fmt.Sprintf("Credit settlement for sale %s", sale.ID)); err != nil {
			return err
		}
		if err := completeSale(m, sale); err != nil {
			return err
		}

		settledAt := m.now
		credit.Status = domain.CreditStatusSettled
		credit.SettledBy = m.actor.UserID
		credit.SettledAt = &settledAt
		if note := strings.TrimSpace(req.Note); note != "" {
			credit.Note = note
		}
		if err := m.tx.UpdateCredit(ctx, *credit); err != nil {
			return err
		}

		resp = domain.CreditSettleResponse{Credit: *credit, Payment: payment}
		m.emit(events.CreditSettled, resp)
		return m.audit("CREDIT_SETTLE", "credit", credit.ID, fmt.Sprintf("Credit %s settled with payment %s", credit.ID, payment.ID))
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListCredits returns credits at the caller's location; status "" lists all.
func (s *Service) ListCredits(ctx context.Context, status string, limit int) ([]domain.Credit, error) {
	var out []domain.Credit
	err := s.view(ctx, "credit.list", func(q store.Tx, actor domain.Actor) error {
		credits, err := q.ListCredits(ctx, actor.LocationID, strings.ToUpper(strings.TrimSpace(status)), clampLimit(limit))
		out = credits
		return err
	})
	return out, err
}
