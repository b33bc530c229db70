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

// RecordPayment settles a marked sale in full and books the cash inflow.
func (s *Service) RecordPayment(ctx context.Context, saleID string, req domain.PaymentRecordRequest) (*domain.PaymentResponse, error) {
	var resp domain.PaymentResponse
	err := s.mutate(ctx, "payment.record", func(m *mutation) error {
		sale, err := m.tx.LockSale(ctx, m.actor.LocationID, saleID)
		if err != nil {
			return notFound(err, apperr.NotFound, "sale not found")
		}
		if sale.Status != domain.SaleStatusPending && sale.Status != domain.SaleStatusAwaitingPaymentRecord {
			return apperr.WrongStatus("sale", sale.Status)
		}
		if req.Amount != sale.TotalAmount {
			return apperr.Newf(apperr.BadAmount, "payment amount %d must equal sale total %d", req.Amount, sale.TotalAmount)
		}
		if err := ensureNoPayment(m, sale.ID); err != nil {
			return err
		}

		sessionID := strings.TrimSpace(req.CashSessionID)
		if sessionID != "" {
			if err := requireOpenSession(m, sessionID); err != nil {
				return err
			}
		}

		payment, err := insertPayment(m, sale, sessionID, defaultString(req.Method, domain.MethodCash), req.Note)
		if err != nil {
			return err
		}
		if err := appendCash(m, domain.CashTypeSalePayment, payment, fmt.Sprintf("Payment for sale %s", sale.ID)); err != nil {
			return err
		}
		if err := completeSale(m, sale); err != nil {
			return err
		}

		resp = domain.PaymentResponse{Sale: *sale, Payment: payment}
		return m.audit("PAYMENT_RECORD", "payment", payment.ID, fmt.Sprintf("Payment %d %s recorded for sale %s", payment.Amount, payment.Method, sale.ID))
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func ensureNoPayment(m *mutation, saleID string) error {
	_, err := m.tx.GetPaymentBySale(m.ctx, m.actor.LocationID, saleID)
	switch {
	case err == nil:
		return apperr.New(apperr.DuplicatePayment, "sale already has a payment")
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return err
	}
}

func requireOpenSession(m *mutation, sessionID string) error {
	session, err := m.tx.GetCashSession(m.ctx, m.actor.LocationID, sessionID)
	if err != nil {
		return notFound(err, apperr.SessionNotFound, "cash session not found")
	}
	if session.Status != domain.SessionStatusOpen {
		return apperr.New(apperr.SessionNotFound, "cash session is not open")
	}
	if session.CashierID != m.actor.UserID {
		return apperr.New(apperr.SessionNotFound, "cash session belongs to another cashier")
	}
	return nil
}

func insertPayment(m *mutation, sale *domain.Sale, sessionID, method, note string) (domain.Payment, error) {
	payment := domain.Payment{
		ID:            xid.New("pay"),
		LocationID:    sale.LocationID,
		SaleID:        sale.ID,
		CashierID:     m.actor.UserID,
		CashSessionID: sessionID,
		Amount:        sale.TotalAmount,
		Method:        strings.ToUpper(method),
		Note:          strings.TrimSpace(note),
		CreatedAt:     m.now,
	}
	if err := m.tx.CreatePayment(m.ctx, payment); err != nil {
		return domain.Payment{}, conflict(err, apperr.DuplicatePayment, "sale already has a payment")
	}
	return payment, nil
}

// appendCash books a system cash entry for a payment.
func appendCash(m *mutation, entryType string, payment domain.Payment, note string) error {
	return m.tx.AppendCashEntry(m.ctx, domain.CashLedgerEntry{
		ID:         xid.New("cash"),
		LocationID: payment.LocationID,
		CashierID:  m.actor.UserID,
		Type:       entryType,
		Direction:  domain.CashDirection(entryType),
		Amount:     payment.Amount,
		Method:     payment.Method,
		SaleID:     payment.SaleID,
		PaymentID:  payment.ID,
		Note:       note,
		CreatedAt:  m.now,
	})
}

func completeSale(m *mutation, sale *domain.Sale) error {
	sale.Status = domain.SaleStatusCompleted
	sale.UpdatedAt = m.now
	if err := m.tx.UpdateSale(m.ctx, *sale); err != nil {
		return err
	}
	m.emit(events.SaleCompleted, *sale)
	return nil
}

func (s *Service) ListPayments(ctx context.Context, limit int) ([]domain.Payment, error) {
	var out []domain.Payment
	err := s.view(ctx, "payment.list", func(q store.Tx, actor domain.Actor) error {
		payments, err := q.ListPayments(ctx, actor.LocationID, clampLimit(limit))
		out = payments
		return err
	})
	return out, err
}
