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

// RefundSale reverses a completed sale: stock goes back to the seller and the
// warehouse, and the full amount leaves the drawer.
func (s *Service) RefundSale(ctx context.Context, saleID string, reason string) (*domain.RefundResponse, error) {
	var resp domain.RefundResponse
	err := s.mutate(ctx, "refund.create", func(m *mutation) error {
		sale, err := m.tx.LockSale(ctx, m.actor.LocationID, saleID)
		if err != nil {
			return notFound(err, apperr.NotFound, "sale not found")
		}
		if sale.Status == domain.SaleStatusRefunded {
			return apperr.New(apperr.AlreadyRefunded, "sale already refunded")
		}
		if sale.Status != domain.SaleStatusCompleted {
			return apperr.WrongStatus("sale", sale.Status)
		}
		if _, err := m.tx.GetRefundBySale(ctx, sale.LocationID, sale.ID); err == nil {
			return apperr.New(apperr.AlreadyRefunded, "sale already refunded")
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := restoreSaleStock(m, sale); err != nil {
			return err
		}

		refund := domain.Refund{
			ID:         xid.New("refund"),
			LocationID: sale.LocationID,
			SaleID:     sale.ID,
			Amount:     sale.TotalAmount,
			Reason:     strings.TrimSpace(reason),
			CreatedBy:  m.actor.UserID,
			CreatedAt:  m.now,
		}
		if err := m.tx.CreateRefund(ctx, refund); err != nil {
			return conflict(err, apperr.AlreadyRefunded, "sale already refunded")
		}

		err = m.tx.AppendCashEntry(ctx, domain.CashLedgerEntry{
			ID:         xid.New("cash"),
			LocationID: sale.LocationID,
			CashierID:  m.actor.UserID,
			Type:       domain.CashTypeRefund,
			Direction:  domain.CashDirection(domain.CashTypeRefund),
			Amount:     refund.Amount,
			Method:     domain.MethodCash,
			SaleID:     sale.ID,
			Note:       fmt.Sprintf("Refund for sale %s", sale.ID),
			CreatedAt:  m.now,
		})
		if err != nil {
			return err
		}

		sale.Status = domain.SaleStatusRefunded
		sale.UpdatedAt = m.now
		if err := m.tx.UpdateSale(ctx, *sale); err != nil {
			return err
		}

		resp = domain.RefundResponse{Sale: *sale, Refund: refund}
		m.emit(events.SaleRefunded, resp)
		return m.audit("REFUND_CREATE", "refund", refund.ID, fmt.Sprintf("Refund %d for sale %s. reason=%s", refund.Amount, sale.ID, defaultString(reason, "-")))
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
