package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/events"
	"retailpos/backend/internal/money"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

// CreateSale prices the requested lines and stores a DRAFT sale for the
// calling seller. Drafts reserve no stock.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (*domain.Sale, error) {
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.BadQty, "sale needs at least one item")
	}

	var created domain.Sale
	err := s.mutate(ctx, "sale.create", func(m *mutation) error {
		loc := m.actor.LocationID

		customerID := strings.TrimSpace(req.CustomerID)
		if customerID != "" {
			if _, err := m.tx.GetCustomer(ctx, loc, customerID); err != nil {
				return notFound(err, apperr.NotFound, "customer not found")
			}
		}

		items := make([]domain.SaleItem, 0, len(req.Items))
		var subtotal int64
		strictest := 100
		for i, line := range req.Items {
			product, err := m.tx.GetProduct(ctx, loc, line.ProductID)
			if err != nil {
				return notFound(err, apperr.ProductNotFound, fmt.Sprintf("product %s not found", line.ProductID))
			}
			if !product.IsActive {
				return apperr.Newf(apperr.ProductNotFound, "product %s is inactive", product.ID)
			}
			item, err := priceLine(i, *product, line)
			if err != nil {
				return err
			}
			if product.MaxDiscountPercent < strictest {
				strictest = product.MaxDiscountPercent
			}
			if subtotal, err = money.Add(subtotal, item.LineTotal); err != nil {
				return err
			}
			items = append(items, item)
		}

		var salePercent int
		if req.DiscountPercent != nil {
			salePercent = *req.DiscountPercent
		}
		if salePercent < 0 {
			return apperr.New(apperr.BadDiscount, "sale discount percent must not be negative")
		}
		if salePercent > strictest {
			return apperr.Newf(apperr.SaleDiscountTooHigh, "sale discount %d%% exceeds the %d%% allowed for these products", salePercent, strictest)
		}
		var saleFlat int64
		if req.DiscountAmount != nil {
			saleFlat = *req.DiscountAmount
		}
		totals, err := money.ApplySaleDiscount(subtotal, salePercent, saleFlat)
		if err != nil {
			return err
		}

		created = domain.Sale{
			ID:              xid.New("sale"),
			LocationID:      loc,
			SellerID:        m.actor.UserID,
			CustomerID:      customerID,
			Status:          domain.SaleStatusDraft,
			Subtotal:        subtotal,
			DiscountPercent: totals.DiscountPercent,
			DiscountAmount:  totals.DiscountAmount,
			TotalAmount:     totals.Total,
			Note:            strings.TrimSpace(req.Note),
			CreatedAt:       m.now,
			UpdatedAt:       m.now,
			Items:           items,
		}
		if err := m.tx.CreateSale(ctx, created); err != nil {
			return err
		}

		m.emit(events.SaleCreated, created)
		return m.audit("SALE_CREATE", "sale", created.ID, fmt.Sprintf("Sale %s created with %d item(s), total %d", created.ID, len(items), created.TotalAmount))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func priceLine(index int, product domain.Product, line domain.SaleLineRequest) (domain.SaleItem, error) {
	if line.Qty <= 0 {
		return domain.SaleItem{}, apperr.Newf(apperr.BadQty, "item %d: qty must be positive", index+1)
	}

	unitPrice := product.SellingPrice
	if line.UnitPrice != nil {
		unitPrice = *line.UnitPrice
	}
	if unitPrice < 0 {
		return domain.SaleItem{}, apperr.Newf(apperr.BadPrice, "item %d: unit price must not be negative", index+1)
	}
	if unitPrice > product.SellingPrice {
		return domain.SaleItem{}, apperr.Newf(apperr.PriceTooHigh, "item %d: unit price %d is above selling price %d", index+1, unitPrice, product.SellingPrice)
	}

	var pct int
	if line.DiscountPercent != nil {
		pct = *line.DiscountPercent
	}
	if pct < 0 {
		return domain.SaleItem{}, apperr.Newf(apperr.BadDiscount, "item %d: discount percent must not be negative", index+1)
	}
	if pct > product.MaxDiscountPercent {
		return domain.SaleItem{}, apperr.Newf(apperr.DiscountTooHigh, "item %d: discount %d%% exceeds max %d%%", index+1, pct, product.MaxDiscountPercent)
	}

	var flat int64
	if line.DiscountAmount != nil {
		flat = *line.DiscountAmount
	}
	priced, err := money.ComputeLine(line.Qty, unitPrice, pct, flat)
	if err != nil {
		return domain.SaleItem{}, err
	}

	return domain.SaleItem{
		ProductID:       product.ID,
		Qty:             line.Qty,
		UnitPrice:       unitPrice,
		DiscountPercent: priced.DiscountPercent,
		DiscountAmount:  priced.DiscountAmount,
		LineTotal:       priced.Total,
	}, nil
}

// MarkSale hands the goods over: every item leaves the seller's holding and
// the warehouse balance. This is the only transition that moves stock out.
func (s *Service) MarkSale(ctx context.Context, saleID string, req domain.SaleMarkRequest) (*domain.Sale, error) {
	var updated domain.Sale
	err := s.mutate(ctx, "sale.mark", func(m *mutation) error {
		sale, err := m.tx.LockSale(ctx, m.actor.LocationID, saleID)
		if err != nil {
			return notFound(err, apperr.NotFound, "sale not found")
		}
		if sale.SellerID != m.actor.UserID {
			return apperr.New(apperr.Forbidden, "only the seller who created the sale can mark it")
		}
		if sale.Status != domain.SaleStatusDraft {
			return apperr.WrongStatus("sale", sale.Status)
		}
		if len(sale.Items) == 0 {
			return apperr.New(apperr.BadQty, "sale has no items")
		}

		for _, item := range sale.Items {
			if err := m.ledger.DeductFromSeller(ctx, sale.LocationID, sale.SellerID, item.ProductID, item.Qty); err != nil {
				return err
			}
			if err := m.ledger.DeductFromWarehouse(ctx, sale.LocationID, item.ProductID, item.Qty); err != nil {
				return err
			}
		}

		sale.Status = domain.SaleStatusPending
		if req.Paid {
			sale.Status = domain.SaleStatusAwaitingPaymentRecord
		}
		sale.UpdatedAt = m.now
		if err := m.tx.UpdateSale(ctx, *sale); err != nil {
			return err
		}
		updated = *sale

		m.emit(events.SaleMarked, updated)
		return m.audit("SALE_MARK", "sale", sale.ID, fmt.Sprintf("Sale %s marked %s", sale.ID, sale.Status))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CancelSale voids a sale that has not been paid. Stock is restored to the
// seller and the warehouse when the sale had already been marked.
func (s *Service) CancelSale(ctx context.Context, saleID string, reason string) (*domain.Sale, error) {
	var updated domain.Sale
	err := s.mutate(ctx, "sale.cancel", func(m *mutation) error {
		sale, err := m.tx.LockSale(ctx, m.actor.LocationID, saleID)
		if err != nil {
			return notFound(err, apperr.NotFound, "sale not found")
		}
		if m.actor.Role == domain.RoleSeller && sale.SellerID != m.actor.UserID {
			return apperr.New(apperr.Forbidden, "sellers can only cancel their own sales")
		}
		if err := cancelSale(m, sale, reason); err != nil {
			return err
		}
		if err := closeOpenCredit(m, sale.ID, defaultString(reason, "Sale cancelled")); err != nil {
			return err
		}
		updated = *sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// cancelSale applies the cancel transition to a locked sale. Credit rejection
// reuses it.
func cancelSale(m *mutation, sale *domain.Sale, reason string) error {
	switch sale.Status {
	case domain.SaleStatusDraft, domain.SaleStatusPending, domain.SaleStatusAwaitingPaymentRecord:
	default:
		return apperr.WrongStatus("sale", sale.Status)
	}

	if domain.SaleStockDeducted(sale.Status) {
		if err := restoreSaleStock(m, sale); err != nil {
			return err
		}
	}

	canceledAt := m.now
	sale.Status = domain.SaleStatusCancelled
	sale.CanceledAt = &canceledAt
	sale.CanceledBy = m.actor.UserID
	sale.CancelReason = strings.TrimSpace(reason)
	sale.UpdatedAt = m.now
	if err := m.tx.UpdateSale(m.ctx, *sale); err != nil {
		return err
	}

	m.emit(events.SaleCancelled, *sale)
	return m.audit("SALE_CANCEL", "sale", sale.ID, fmt.Sprintf("Sale %s cancelled. reason=%s", sale.ID, defaultString(reason, "-")))
}

// closeOpenCredit settles the open credit of a cancelled sale without a
// payment.
func closeOpenCredit(m *mutation, saleID, note string) error {
	existing, err := m.tx.GetCreditBySale(m.ctx, m.actor.LocationID, saleID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	credit, err := m.tx.LockCredit(m.ctx, existing.LocationID, existing.ID)
	if err != nil {
		return err
	}
	if credit.Status != domain.CreditStatusOpen {
		return nil
	}

	settledAt := m.now
	credit.Status = domain.CreditStatusSettled
	credit.SettledBy = m.actor.UserID
	credit.SettledAt = &settledAt
	credit.Note = note
	if err := m.tx.UpdateCredit(m.ctx, *credit); err != nil {
		return err
	}

	m.emit(events.CreditSettled, *credit)
	return m.audit("CREDIT_CLOSE", "credit", credit.ID, fmt.Sprintf("Credit %s closed with cancelled sale %s", credit.ID, saleID))
}

func restoreSaleStock(m *mutation, sale *domain.Sale) error {
	for _, item := range sale.Items {
		if err := m.ledger.RestoreToBoth(m.ctx, sale.LocationID, sale.SellerID, item.ProductID, item.Qty); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	var out *domain.Sale
	err := s.view(ctx, "sale.get", func(q store.Tx, actor domain.Actor) error {
		sale, err := q.GetSale(ctx, actor.LocationID, saleID)
		if err != nil {
			return notFound(err, apperr.NotFound, "sale not found")
		}
		if actor.Role == domain.RoleSeller && sale.SellerID != actor.UserID {
			return apperr.New(apperr.NotFound, "sale not found")
		}
		out = sale
		return nil
	})
	return out, err
}

// ListSales filters by status and seller. Sellers only ever see their own sales.
func (s *Service) ListSales(ctx context.Context, status string, sellerID string, limit int) ([]domain.Sale, error) {
	var out []domain.Sale
	err := s.view(ctx, "sale.list", func(q store.Tx, actor domain.Actor) error {
		filter := domain.SaleFilter{
			LocationID: actor.LocationID,
			Status:     strings.ToUpper(strings.TrimSpace(status)),
			SellerID:   strings.TrimSpace(sellerID),
			Limit:      clampLimit(limit),
		}
		if actor.Role == domain.RoleSeller {
			filter.SellerID = actor.UserID
		}
		sales, err := q.ListSales(ctx, filter)
		if err != nil {
			return err
		}
		out = sales
		return nil
	})
	return out, err
}
