package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/metrics"
	"retailpos/backend/internal/service"
	"retailpos/backend/internal/store/memory"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
	metrics *metrics.Metrics
}

// newTestAPI wires the real service over a seeded memory store so handler
// tests exercise the complete request path.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	m := metrics.New()
	svc := service.New(memory.NewSeeded(), service.WithMetrics(m))
	api := New(svc, NewAuthenticator(testSecret), m)
	return &testAPI{t: t, handler: api.Handler(), metrics: m}
}

func (a *testAPI) tokenFor(role, userID string) string {
	return signToken(a.t, jwtlib.SigningMethodHS256, []byte(testSecret), claimsFor(userID, role, memory.DefaultLocationID, time.Hour))
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), "body: %s", rec.Body.String())
	return out
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Status string `json:"status"`
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestAPIRequiresBearerToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/products", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPermissionTableIsEnforced(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/v1/products", api.tokenFor(domain.RoleSeller, "seller-1"), domain.ProductCreateRequest{
		Name: "Roti", SKU: "SKU-ROTI-01", SellingPrice: 12000,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeBody[errorBody](t, rec).Code)

	rec = api.do(http.MethodPost, "/api/v1/sales", api.tokenFor(domain.RoleCashier, "cashier-1"), domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: "prd-mie", Qty: 1}},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/dashboard", api.tokenFor(domain.RoleCashier, "cashier-1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/dashboard", api.tokenFor(domain.RoleOwner, "owner-1"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSaleLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	seller := api.tokenFor(domain.RoleSeller, "seller-1")
	manager := api.tokenFor(domain.RoleManager, "manager-1")
	keeper := api.tokenFor(domain.RoleStoreKeeper, "keeper-1")
	cashier := api.tokenFor(domain.RoleCashier, "cashier-1")

	rec := api.do(http.MethodPost, "/api/v1/stock-requests", seller, domain.StockRequestCreateRequest{
		Items: []domain.StockRequestLine{{ProductID: "prd-mie", QtyRequested: 5}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	request := decodeBody[domain.StockRequest](t, rec)

	rec = api.do(http.MethodPost, "/api/v1/stock-requests/"+request.ID+"/decision", manager, domain.StockRequestDecision{Decision: domain.DecisionApprove})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = api.do(http.MethodPost, "/api/v1/stock-requests/"+request.ID+"/release", keeper, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/v1/sales", seller, domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: "prd-mie", Qty: 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decodeBody[domain.Sale](t, rec)
	assert.Equal(t, domain.SaleStatusDraft, sale.Status)
	assert.Equal(t, int64(7000), sale.TotalAmount)

	rec = api.do(http.MethodPost, "/api/v1/sales/"+sale.ID+"/mark", seller, domain.SaleMarkRequest{Paid: true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.SaleStatusAwaitingPaymentRecord, decodeBody[domain.Sale](t, rec).Status)

	rec = api.do(http.MethodPost, "/api/v1/sales/"+sale.ID+"/payments", cashier, domain.PaymentRecordRequest{Amount: 6999})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_AMOUNT", decodeBody[errorBody](t, rec).Code)

	rec = api.do(http.MethodPost, "/api/v1/sales/"+sale.ID+"/payments", cashier, domain.PaymentRecordRequest{Amount: 7000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	paid := decodeBody[domain.PaymentResponse](t, rec)
	assert.Equal(t, domain.SaleStatusCompleted, paid.Sale.Status)
	assert.Equal(t, "CASH", paid.Payment.Method)

	rec = api.do(http.MethodPost, "/api/v1/sales/"+sale.ID+"/cancel", manager, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "BAD_STATUS", body.Code)
	assert.Equal(t, domain.SaleStatusCompleted, body.Status)

	rec = api.do(http.MethodGet, "/api/v1/cash/summary/today", cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7000), decodeBody[domain.CashSummary](t, rec).CashIn)
}

func TestErrorClassesMapToStatus(t *testing.T) {
	api := newTestAPI(t)
	seller := api.tokenFor(domain.RoleSeller, "seller-1")

	rec := api.do(http.MethodPost, "/api/v1/sales", seller, domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: "prd-missing", Qty: 1}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeBody[errorBody](t, rec).Code)

	pct := 50
	rec = api.do(http.MethodPost, "/api/v1/sales", seller, domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: "prd-mie", Qty: 1, DiscountPercent: &pct}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "DISCOUNT_TOO_HIGH", decodeBody[errorBody](t, rec).Code)

	rec = api.do(http.MethodPost, "/api/v1/sales", seller, `{"items":[],"surprise":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID", decodeBody[errorBody](t, rec).Code)

	rec = api.do(http.MethodPost, "/api/v1/sales", seller, domain.SaleCreateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_QTY", decodeBody[errorBody](t, rec).Code)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	api := newTestAPI(t)
	manager := api.tokenFor(domain.RoleManager, "manager-1")

	huge := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `","sku":"SKU-BIG"}`
	rec := api.do(http.MethodPost, "/api/v1/products", manager, huge)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSellerListsOnlyOwnSales(t *testing.T) {
	api := newTestAPI(t)
	seller1 := api.tokenFor(domain.RoleSeller, "seller-1")
	seller2 := api.tokenFor(domain.RoleSeller, "seller-2")

	rec := api.do(http.MethodPost, "/api/v1/sales", seller1, domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: "prd-kopi", Qty: 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sale := decodeBody[domain.Sale](t, rec)

	rec = api.do(http.MethodGet, "/api/v1/sales?seller_id=seller-1", seller2, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Items []domain.Sale `json:"items"`
	}](t, rec)
	assert.Empty(t, list.Items)

	rec = api.do(http.MethodGet, "/api/v1/sales/"+sale.ID, seller2, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPMetricsUseRoutePattern(t *testing.T) {
	api := newTestAPI(t)
	owner := api.tokenFor(domain.RoleOwner, "owner-1")

	rec := api.do(http.MethodGet, "/api/v1/sales/sale-unknown", owner, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	counter := api.metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/sales/{saleID}", "404")
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))

	rec = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "retailpos_http_requests_total")
}

func TestReportsHistoryAndMessagesOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	owner := api.tokenFor(domain.RoleOwner, "owner-1")
	cashier := api.tokenFor(domain.RoleCashier, "cashier-1")
	seller := api.tokenFor(domain.RoleSeller, "seller-1")

	rec := api.do(http.MethodGet, "/api/v1/reports/daily", cashier, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/reports/yearly", owner, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID", decodeBody[errorBody](t, rec).Code)

	rec = api.do(http.MethodGet, "/api/v1/reports/daily?date="+time.Now().UTC().Format(time.DateOnly), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeBody[domain.PeriodReport](t, rec)
	assert.Equal(t, domain.PeriodDaily, report.Period)
	assert.Len(t, report.Inventory, 6)

	rec = api.do(http.MethodPost, "/api/v1/customers", cashier, domain.CustomerCreateRequest{Name: "Pak Budi", Phone: "0813555000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	customer := decodeBody[domain.Customer](t, rec)

	rec = api.do(http.MethodPost, "/api/v1/sales", seller, domain.SaleCreateRequest{
		CustomerID: customer.ID,
		Items:      []domain.SaleLineRequest{{ProductID: "prd-kopi", Qty: 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decodeBody[domain.Sale](t, rec)

	rec = api.do(http.MethodGet, "/api/v1/customers/"+customer.ID+"/history", cashier, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	history := decodeBody[domain.CustomerHistory](t, rec)
	require.Len(t, history.Sales, 1)
	assert.Equal(t, sale.ID, history.Sales[0].ID)

	rec = api.do(http.MethodGet, "/api/v1/customers/cust-missing/history", cashier, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/messages", seller, domain.MessageCreateRequest{EntityType: "sale", EntityID: sale.ID, Message: "wrap separately"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/messages/sale/"+sale.ID, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	thread := decodeBody[struct {
		Items []domain.Message `json:"items"`
	}](t, rec)
	require.Len(t, thread.Items, 1)
	assert.Equal(t, "wrap separately", thread.Items[0].Message)
}
