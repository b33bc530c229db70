package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/metrics"
	"retailpos/backend/internal/policy"
	"retailpos/backend/internal/service"
)

const (
	defaultLimit = 50
	maxLimit     = 200
	maxBodyBytes = 1 << 20
)

type API struct {
	service *service.Service
	auth    *Authenticator
	metrics *metrics.Metrics
}

func New(svc *service.Service, auth *Authenticator, m *metrics.Metrics) *API {
	return &API{service: svc, auth: auth, metrics: m}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", a.handleHealth)
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(a.requireAuth)

		r.With(requirePermission(policy.ProductList)).Get("/products", a.handleListProducts)
		r.With(requirePermission(policy.ProductCreate)).Post("/products", a.handleCreateProduct)
		r.With(requirePermission(policy.ProductPricing)).Patch("/products/{productID}/pricing", a.handleUpdatePricing)

		r.With(requirePermission(policy.InventoryView)).Get("/inventory", a.handleListInventory)
		r.With(requirePermission(policy.InventoryView)).Get("/inventory/holdings", a.handleListHoldings)
		r.With(requirePermission(policy.InventoryAdjust)).Post("/inventory/adjust", a.handleAdjustInventory)
		r.With(requirePermission(policy.InventoryView)).Get("/inventory/arrivals", a.handleListArrivals)
		r.With(requirePermission(policy.InventoryArrival)).Post("/inventory/arrivals", a.handleRecordArrival)

		r.With(requirePermission(policy.InventoryView)).Get("/adjustment-requests", a.handleListAdjustmentRequests)
		r.With(requirePermission(policy.AdjustRequestCreate)).Post("/adjustment-requests", a.handleCreateAdjustmentRequest)
		r.With(requirePermission(policy.AdjustRequestDecide)).Post("/adjustment-requests/{requestID}/decision", a.handleDecideAdjustmentRequest)

		r.With(requirePermission(policy.StockRequestList)).Get("/stock-requests", a.handleListStockRequests)
		r.With(requirePermission(policy.StockRequestCreate)).Post("/stock-requests", a.handleCreateStockRequest)
		r.With(requirePermission(policy.StockRequestList)).Get("/stock-requests/{requestID}", a.handleGetStockRequest)
		r.With(requirePermission(policy.StockRequestDecide)).Post("/stock-requests/{requestID}/decision", a.handleDecideStockRequest)
		r.With(requirePermission(policy.StockRequestRelease)).Post("/stock-requests/{requestID}/release", a.handleReleaseStockRequest)

		r.With(requirePermission(policy.SaleView)).Get("/sales", a.handleListSales)
		r.With(requirePermission(policy.SaleCreate)).Post("/sales", a.handleCreateSale)
		r.With(requirePermission(policy.SaleView)).Get("/sales/{saleID}", a.handleGetSale)
		r.With(requirePermission(policy.SaleMark)).Post("/sales/{saleID}/mark", a.handleMarkSale)
		r.With(requirePermission(policy.SaleCancel)).Post("/sales/{saleID}/cancel", a.handleCancelSale)
		r.With(requirePermission(policy.PaymentRecord)).Post("/sales/{saleID}/payments", a.handleRecordPayment)
		r.With(requirePermission(policy.RefundCreate)).Post("/sales/{saleID}/refund", a.handleRefundSale)
		r.With(requirePermission(policy.CashView)).Get("/payments", a.handleListPayments)

		r.With(requirePermission(policy.CreditView)).Get("/credits", a.handleListCredits)
		r.With(requirePermission(policy.CreditCreate)).Post("/credits", a.handleCreateCredit)
		r.With(requirePermission(policy.CreditDecide)).Post("/credits/{creditID}/decision", a.handleDecideCredit)
		r.With(requirePermission(policy.CreditSettle)).Post("/credits/{creditID}/settle", a.handleSettleCredit)

		r.Route("/cash", func(r chi.Router) {
			r.With(requirePermission(policy.CashEntry)).Post("/entries", a.handleRecordCashEntry)
			r.With(requirePermission(policy.CashView)).Get("/ledger", a.handleListLedger)
			r.With(requirePermission(policy.CashView)).Get("/summary/today", a.handleTodaySummary)
			r.With(requirePermission(policy.CashSession)).Post("/sessions", a.handleOpenSession)
			r.With(requirePermission(policy.CashSession)).Get("/sessions/current", a.handleCurrentSession)
			r.With(requirePermission(policy.CashSession)).Post("/sessions/{sessionID}/close", a.handleCloseSession)
			r.With(requirePermission(policy.CashReconcile)).Post("/reconciliations", a.handleReconcile)
			r.With(requirePermission(policy.CashView)).Get("/reconciliations", a.handleListReconciliations)
			r.With(requirePermission(policy.CashDeposit)).Post("/deposits", a.handleCreateDeposit)
			r.With(requirePermission(policy.CashView)).Get("/deposits", a.handleListDeposits)
			r.With(requirePermission(policy.CashExpense)).Post("/expenses", a.handleCreateExpense)
			r.With(requirePermission(policy.CashView)).Get("/expenses", a.handleListExpenses)
		})

		r.With(requirePermission(policy.CustomerManage)).Get("/customers", a.handleSearchCustomers)
		r.With(requirePermission(policy.CustomerManage)).Post("/customers", a.handleCreateCustomer)
		r.With(requirePermission(policy.CustomerManage)).Get("/customers/{customerID}/history", a.handleCustomerHistory)

		r.With(requirePermission(policy.MessagePost)).Post("/messages", a.handlePostMessage)
		r.With(requirePermission(policy.MessageView)).Get("/messages/{entityType}/{entityID}", a.handleListMessages)

		r.With(requirePermission(policy.ReportView)).Get("/reports/{period}", a.handleReport)

		r.With(requirePermission(policy.DashboardView)).Get("/dashboard", a.handleDashboard)
		r.With(requirePermission(policy.AuditView)).Get("/audit-logs", a.handleListAuditLogs)
	})

	return r
}

func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		ctx := service.WithActor(r.Context(), actor)
		ctx = service.WithCorrelationID(ctx, middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requirePermission(action policy.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := service.ActorFromContext(r.Context())
			if !ok || !policy.Can(actor.Role, action) {
				writeAppError(w, apperr.Newf(apperr.Forbidden, "role may not perform %s", action))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		startedAt := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if a.metrics != nil {
			a.metrics.ObserveHTTP(r.Method, route, strconv.Itoa(status))
		}

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(startedAt)).
			Msg("request")
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

// decodeOptionalJSON accepts an empty body and leaves dest untouched.
func decodeOptionalJSON(r *http.Request, dest any) error {
	if err := decodeJSON(r, dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func queryLimit(r *http.Request) int {
	return parsePositiveLimit(r.URL.Query().Get("limit"), defaultLimit, maxLimit)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeAppError(w, apperr.Newf(apperr.Invalid, "malformed request body: %v", err))
}

// writeServiceError renders a service failure. Domain errors keep their code
// and message; anything else is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := apperr.As(err); ok {
		writeAppError(w, appErr)
		return
	}
	log.Error().
		Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Msg("unhandled service error")
	writeError(w, http.StatusInternalServerError, err)
}

func writeAppError(w http.ResponseWriter, err *apperr.Error) {
	writeJSON(w, statusForClass(err.Code.Class()), err)
}

func statusForClass(class apperr.Class) int {
	switch class {
	case apperr.ClassNotFound:
		return http.StatusNotFound
	case apperr.ClassConflict:
		return http.StatusConflict
	case apperr.ClassValidation:
		return http.StatusBadRequest
	case apperr.ClassBusinessRule:
		return http.StatusUnprocessableEntity
	case apperr.ClassForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
