package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/events"
)

func TestSaleThreadFollowsSaleVisibility(t *testing.T) {
	svc, recorder := newTestService(t)
	sale := createSale(t, svc, "prd-telur", 1)

	first, err := svc.PostMessage(sellerCtx, domain.MessageCreateRequest{EntityType: "sale", EntityID: sale.ID, Message: " customer pays tomorrow "})
	require.NoError(t, err)
	assert.Equal(t, "customer pays tomorrow", first.Message)
	assert.Equal(t, domain.RoleSeller, first.Role)

	_, err = svc.PostMessage(managerCtx, domain.MessageCreateRequest{EntityType: "SALE", EntityID: sale.ID, Message: "ok, keep it pending"})
	require.NoError(t, err)

	thread, err := svc.ListMessages(sellerCtx, "sale", sale.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, first.ID, thread[0].ID)
	assert.Equal(t, "manager-1", thread[1].UserID)

	_, err = svc.ListMessages(seller2Ctx, "sale", sale.ID)
	requireCode(t, err, apperr.SaleNotFound)
	_, err = svc.PostMessage(seller2Ctx, domain.MessageCreateRequest{EntityType: "sale", EntityID: sale.ID, Message: "mine now"})
	requireCode(t, err, apperr.SaleNotFound)

	assert.Contains(t, recorder.Types(), events.MessagePosted)
}

func TestMessageValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name string
		req  domain.MessageCreateRequest
		code apperr.Code
	}{
		{"empty", domain.MessageCreateRequest{EntityType: "inventory", EntityID: "prd-mie", Message: "  "}, apperr.Invalid},
		{"too long", domain.MessageCreateRequest{EntityType: "inventory", EntityID: "prd-mie", Message: strings.Repeat("x", maxMessageLength+1)}, apperr.Invalid},
		{"unknown entity type", domain.MessageCreateRequest{EntityType: "invoice", EntityID: "inv-1", Message: "hi"}, apperr.Invalid},
		{"missing entity id", domain.MessageCreateRequest{EntityType: "sale", Message: "hi"}, apperr.Invalid},
		{"missing sale", domain.MessageCreateRequest{EntityType: "sale", EntityID: "sale-missing", Message: "hi"}, apperr.SaleNotFound},
		{"missing product", domain.MessageCreateRequest{EntityType: "inventory", EntityID: "prd-none", Message: "hi"}, apperr.ProductNotFound},
		{"missing stock request", domain.MessageCreateRequest{EntityType: "stock_request", EntityID: "req-missing", Message: "hi"}, apperr.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PostMessage(keeperCtx, tc.req)
			requireCode(t, err, tc.code)
		})
	}

	thread, err := svc.ListMessages(keeperCtx, "inventory", "prd-mie")
	require.NoError(t, err)
	assert.Empty(t, thread)
}

func TestStockRequestAndProductThreads(t *testing.T) {
	svc, _ := newTestService(t)
	req, err := svc.CreateStockRequest(sellerCtx, domain.StockRequestCreateRequest{
		Items: []domain.StockRequestLine{{ProductID: "prd-gula", QtyRequested: 2}},
	})
	require.NoError(t, err)

	_, err = svc.PostMessage(keeperCtx, domain.MessageCreateRequest{EntityType: "stock_request", EntityID: req.ID, Message: "only 2 bags left on the shelf"})
	require.NoError(t, err)
	_, err = svc.PostMessage(keeperCtx, domain.MessageCreateRequest{EntityType: "inventory", EntityID: "prd-gula", Message: "reorder gula"})
	require.NoError(t, err)

	thread, err := svc.ListMessages(sellerCtx, "stock_request", req.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "keeper-1", thread[0].UserID)

	_, err = svc.ListMessages(seller2Ctx, "stock_request", req.ID)
	requireCode(t, err, apperr.NotFound)

	products, err := svc.ListMessages(sellerCtx, "inventory", "prd-gula")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "reorder gula", products[0].Message)
}
