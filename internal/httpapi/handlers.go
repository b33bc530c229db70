package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"retailpos/backend/internal/domain"
)

type decisionBody struct {
	Decision string `json:"decision"`
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	includeCost := strings.EqualFold(r.URL.Query().Get("include_cost"), "true")
	products, err := a.service.ListProducts(r.Context(), includeCost)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": products})
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (a *API) handleUpdatePricing(w http.ResponseWriter, r *http.Request) {
	var req domain.PricingUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	product, err := a.service.UpdatePricing(r.Context(), chi.URLParam(r, "productID"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleListInventory(w http.ResponseWriter, r *http.Request) {
	balances, err := a.service.ListInventory(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": balances})
}

func (a *API) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := a.service.ListHoldings(r.Context(), r.URL.Query().Get("seller_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": holdings})
}

func (a *API) handleAdjustInventory(w http.ResponseWriter, r *http.Request) {
	var req domain.InventoryAdjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	result, err := a.service.AdjustInventory(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleListArrivals(w http.ResponseWriter, r *http.Request) {
	arrivals, err := a.service.ListArrivals(r.Context(), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": arrivals})
}

func (a *API) handleRecordArrival(w http.ResponseWriter, r *http.Request) {
	var req domain.ArrivalCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	arrival, err := a.service.RecordArrival(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, arrival)
}

func (a *API) handleListAdjustmentRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := a.service.ListAdjustmentRequests(r.Context(), r.URL.Query().Get("status"), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": requests})
}

func (a *API) handleCreateAdjustmentRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.AdjustmentCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	request, err := a.service.CreateAdjustmentRequest(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (a *API) handleDecideAdjustmentRequest(w http.ResponseWriter, r *http.Request) {
	var req decisionBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	request, err := a.service.DecideAdjustmentRequest(r.Context(), chi.URLParam(r, "requestID"), req.Decision)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (a *API) handleListStockRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := a.service.ListStockRequests(r.Context(), r.URL.Query().Get("status"), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": requests})
}

func (a *API) handleCreateStockRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.StockRequestCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	request, err := a.service.CreateStockRequest(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (a *API) handleGetStockRequest(w http.ResponseWriter, r *http.Request) {
	request, err := a.service.GetStockRequest(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (a *API) handleDecideStockRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.StockRequestDecision
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	request, err := a.service.DecideStockRequest(r.Context(), chi.URLParam(r, "requestID"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (a *API) handleReleaseStockRequest(w http.ResponseWriter, r *http.Request) {
	request, err := a.service.ReleaseStockRequest(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sales, err := a.service.ListSales(r.Context(), query.Get("status"), query.Get("seller_id"), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": sales})
}

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	sale, err := a.service.CreateSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := a.service.GetSale(r.Context(), chi.URLParam(r, "saleID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *API) handleMarkSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleMarkRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	sale, err := a.service.MarkSale(r.Context(), chi.URLParam(r, "saleID"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *API) handleCancelSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleCancelRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	sale, err := a.service.CancelSale(r.Context(), chi.URLParam(r, "saleID"), req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *API) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	result, err := a.service.RecordPayment(r.Context(), chi.URLParam(r, "saleID"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (a *API) handleRefundSale(w http.ResponseWriter, r *http.Request) {
	var req domain.RefundRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	result, err := a.service.RefundSale(r.Context(), chi.URLParam(r, "saleID"), req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (a *API) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := a.service.ListPayments(r.Context(), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payments})
}

func (a *API) handleListCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := a.service.ListCredits(r.Context(), r.URL.Query().Get("status"), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": credits})
}

func (a *API) handleCreateCredit(w http.ResponseWriter, r *http.Request) {
	var req domain.CreditCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	credit, err := a.service.CreateCredit(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, credit)
}

func (a *API) handleDecideCredit(w http.ResponseWriter, r *http.Request) {
	var req domain.CreditDecision
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	credit, err := a.service.DecideCredit(r.Context(), chi.URLParam(r, "creditID"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, credit)
}

func (a *API) handleSettleCredit(w http.ResponseWriter, r *http.Request) {
	var req domain.CreditSettleRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	result, err := a.service.SettleCredit(r.Context(), chi.URLParam(r, "creditID"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleRecordCashEntry(w http.ResponseWriter, r *http.Request) {
	var req domain.CashEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	entry, err := a.service.RecordCashEntry(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (a *API) handleListLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := a.service.ListLedger(r.Context(), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (a *API) handleTodaySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.TodaySummary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionOpenRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	session, err := a.service.OpenSession(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (a *API) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.service.CurrentSession(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

func (a *API) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionCloseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	session, err := a.service.CloseSession(r.Context(), chi.URLParam(r, "sessionID"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (a *API) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req domain.ReconcileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	reconciliation, err := a.service.Reconcile(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reconciliation)
}

func (a *API) handleListReconciliations(w http.ResponseWriter, r *http.Request) {
	items, err := a.service.ListReconciliations(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleCreateDeposit(w http.ResponseWriter, r *http.Request) {
	var req domain.DepositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	deposit, err := a.service.CreateDeposit(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, deposit)
}

func (a *API) handleListDeposits(w http.ResponseWriter, r *http.Request) {
	deposits, err := a.service.ListDeposits(r.Context(), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": deposits})
}

func (a *API) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.ExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	expense, err := a.service.CreateExpense(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.service.ListExpenses(r.Context(), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": expenses})
}

func (a *API) handleSearchCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.service.SearchCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": customers})
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	customer, err := a.service.CreateCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (a *API) handleCustomerHistory(w http.ResponseWriter, r *http.Request) {
	history, err := a.service.CustomerHistory(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (a *API) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req domain.MessageCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	msg, err := a.service.PostMessage(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (a *API) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := a.service.ListMessages(r.Context(), chi.URLParam(r, "entityType"), chi.URLParam(r, "entityID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": messages})
}

// handleReport accepts the period start as date, start or month.
func (a *API) handleReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start := query.Get("date")
	for _, key := range []string{"start", "month"} {
		if start == "" {
			start = query.Get(key)
		}
	}
	report, err := a.service.Report(r.Context(), chi.URLParam(r, "period"), start)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := a.service.ListAuditLogs(r.Context(), queryLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": logs})
}
