package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

const (
	customerSearchLimit  = 20
	customerHistoryLimit = 50
)

// CreateCustomer registers a customer. A phone number already known at the
// location returns the existing record instead.
func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (*domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, apperr.New(apperr.Invalid, "name and phone are required")
	}

	var out domain.Customer
	err := s.mutate(ctx, "customer.create", func(m *mutation) error {
		existing, err := m.tx.GetCustomerByPhone(ctx, m.actor.LocationID, phone)
		if err == nil {
			out = *existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		out = domain.Customer{
			ID:         xid.New("cust"),
			LocationID: m.actor.LocationID,
			Name:       name,
			Phone:      phone,
			Notes:      strings.TrimSpace(req.Notes),
			CreatedAt:  m.now,
		}
		if err := m.tx.CreateCustomer(ctx, out); err != nil {
			return err
		}
		return m.audit("CUSTOMER_CREATE", "customer", out.ID, fmt.Sprintf("Customer %s (%s) created", name, phone))
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	var out []domain.Customer
	err := s.view(ctx, "customer.search", func(q store.Tx, actor domain.Actor) error {
		customers, err := q.SearchCustomers(ctx, actor.LocationID, strings.TrimSpace(query), customerSearchLimit)
		out = customers
		return err
	})
	return out, err
}

// CustomerHistory returns the customer with their most recent sales, newest first.
func (s *Service) CustomerHistory(ctx context.Context, customerID string) (*domain.CustomerHistory, error) {
	var out domain.CustomerHistory
	err := s.view(ctx, "customer.history", func(q store.Tx, actor domain.Actor) error {
		customer, err := q.GetCustomer(ctx, actor.LocationID, strings.TrimSpace(customerID))
		if err != nil {
			return notFound(err, apperr.NotFound, "customer not found")
		}
		sales, err := q.ListSales(ctx, domain.SaleFilter{
			LocationID: actor.LocationID,
			CustomerID: customer.ID,
			Limit:      customerHistoryLimit,
		})
		if err != nil {
			return err
		}

		out.Customer = *customer
		out.Sales = make([]domain.CustomerSale, 0, len(sales))
		for _, sale := range sales {
			out.Sales = append(out.Sales, domain.CustomerSale{
				ID:          sale.ID,
				Status:      sale.Status,
				TotalAmount: sale.TotalAmount,
				SellerID:    sale.SellerID,
				CreatedAt:   sale.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
