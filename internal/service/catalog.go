package service

import (
	"context"
	"fmt"
	"strings"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/policy"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	sku := strings.TrimSpace(req.SKU)
	if name == "" || sku == "" {
		return nil, apperr.New(apperr.Invalid, "name and sku are required")
	}
	if req.SellingPrice < 0 {
		return nil, apperr.New(apperr.BadPrice, "selling price must not be negative")
	}

	var costPrice int64
	if req.CostPrice != nil {
		costPrice = *req.CostPrice
	}
	if costPrice < 0 {
		return nil, apperr.New(apperr.BadPrice, "cost price must not be negative")
	}

	var maxDiscount int
	if req.MaxDiscountPercent != nil {
		maxDiscount = *req.MaxDiscountPercent
	}
	if maxDiscount < 0 || maxDiscount > 100 {
		return nil, apperr.New(apperr.BadDiscount, "max discount percent must be within 0..100")
	}

	var created domain.Product
	err := s.mutate(ctx, "product.create", func(m *mutation) error {
		created = domain.Product{
			ID:                 xid.New("prd"),
			LocationID:         m.actor.LocationID,
			Name:               name,
			SKU:                sku,
			Unit:               defaultString(req.Unit, "unit"),
			SellingPrice:       req.SellingPrice,
			CostPrice:          costPrice,
			MaxDiscountPercent: maxDiscount,
			IsActive:           true,
			CreatedAt:          m.now,
			UpdatedAt:          m.now,
		}
		if err := m.tx.CreateProduct(ctx, created); err != nil {
			return conflict(err, apperr.Invalid, fmt.Sprintf("sku %s already exists", sku))
		}
		if _, err := m.tx.LockInventoryBalance(ctx, created.LocationID, created.ID); err != nil {
			return err
		}
		return m.audit("PRODUCT_CREATE", "product", created.ID, fmt.Sprintf("Created product %s (%s)", created.Name, created.SKU))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePricing replaces the purchase price, selling price and discount
// ceiling of a product in the caller's location.
func (s *Service) UpdatePricing(ctx context.Context, productID string, req domain.PricingUpdateRequest) (*domain.Product, error) {
	switch {
	case req.SellingPrice <= 0:
		return nil, apperr.New(apperr.BadPrice, "selling price must be positive")
	case req.PurchasePrice < 0:
		return nil, apperr.New(apperr.BadPrice, "purchase price must not be negative")
	case req.MaxDiscountPercent < 0 || req.MaxDiscountPercent > 100:
		return nil, apperr.New(apperr.BadPrice, "max discount percent must be within 0..100")
	case req.SellingPrice < req.PurchasePrice:
		return nil, apperr.New(apperr.BadPrice, "selling price must not be below purchase price")
	}

	var updated domain.Product
	err := s.mutate(ctx, "product.pricing", func(m *mutation) error {
		product, err := m.tx.GetProduct(ctx, m.actor.LocationID, productID)
		if err != nil {
			return notFound(err, apperr.NotFound, "product not found")
		}

		previous := *product
		product.CostPrice = req.PurchasePrice
		product.SellingPrice = req.SellingPrice
		product.MaxDiscountPercent = req.MaxDiscountPercent
		product.UpdatedAt = m.now
		if err := m.tx.UpdateProduct(ctx, *product); err != nil {
			return err
		}
		updated = *product

		return m.audit("PRODUCT_PRICING_UPDATE", "product", product.ID, fmt.Sprintf(
			"Pricing %s: selling %d -> %d, purchase %d -> %d, max discount %d%% -> %d%%",
			product.SKU,
			previous.SellingPrice, product.SellingPrice,
			previous.CostPrice, product.CostPrice,
			previous.MaxDiscountPercent, product.MaxDiscountPercent,
		))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListProducts returns the catalog with warehouse quantities. Purchase prices
// are included only when asked for and the caller's role may see them.
func (s *Service) ListProducts(ctx context.Context, includeCostPrice bool) ([]domain.ProductView, error) {
	var out []domain.ProductView
	err := s.view(ctx, "product.list", func(q store.Tx, actor domain.Actor) error {
		products, err := q.ListProducts(ctx, actor.LocationID)
		if err != nil {
			return err
		}
		balances, err := q.ListInventoryBalances(ctx, actor.LocationID)
		if err != nil {
			return err
		}
		onHand := make(map[string]int, len(balances))
		for _, b := range balances {
			onHand[b.ProductID] = b.QtyOnHand
		}

		showCost := includeCostPrice && policy.SeesCostPrice(actor.Role)
		out = make([]domain.ProductView, 0, len(products))
		for _, p := range products {
			view := domain.ProductView{
				ID:                 p.ID,
				Name:               p.Name,
				SKU:                p.SKU,
				Unit:               p.Unit,
				SellingPrice:       p.SellingPrice,
				MaxDiscountPercent: p.MaxDiscountPercent,
				IsActive:           p.IsActive,
				QtyOnHand:          onHand[p.ID],
			}
			if showCost {
				cost := p.CostPrice
				view.PurchasePrice = &cost
			}
			out = append(out, view)
		}
		return nil
	})
	return out, err
}
