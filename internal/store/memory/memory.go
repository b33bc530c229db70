package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
)

const DefaultLocationID = "main-store"

type balanceKey struct {
	locationID string
	productID  string
}

type holdingKey struct {
	locationID string
	sellerID   string
	productID  string
}

type balance struct {
	qty       int
	updatedAt time.Time
}

// Store keeps all state in process. WithinTx runs fn against a private copy
// of the state under the write lock and publishes the copy only when fn
// succeeds, so a failed operation leaves nothing behind.
type Store struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	products       map[string]domain.Product
	productOrder   []string
	inventory      map[balanceKey]balance
	holdings       map[holdingKey]balance
	arrivals       []domain.InventoryArrival
	adjustments    map[string]domain.AdjustmentRequest
	adjustOrder    []string
	requests       map[string]domain.StockRequest
	requestOrder   []string
	sales          map[string]domain.Sale
	saleOrder      []string
	payments       map[string]domain.Payment
	paymentOrder   []string
	refunds        map[string]domain.Refund
	credits        map[string]domain.Credit
	creditOrder    []string
	cashEntries    []domain.CashLedgerEntry
	sessions       map[string]domain.CashSession
	reconciliation []domain.CashReconciliation
	deposits       []domain.CashDeposit
	expenses       []domain.Expense
	customers      map[string]domain.Customer
	customerOrder  []string
	auditLogs      []domain.AuditLog
	messages       []domain.Message
}

func New() *Store {
	return &Store{state: newState()}
}

// NewSeeded returns a store with a small catalog and warehouse stock for DefaultLocationID.
func NewSeeded() *Store {
	return NewSeededAt(DefaultLocationID)
}

func NewSeededAt(locationID string) *Store {
	if locationID == "" {
		locationID = DefaultLocationID
	}
	s := New()
	now := time.Now().UTC()
	products := []domain.Product{
		{ID: "prd-mie", SKU: "SKU-MIE-01", Name: "Mie Goreng Instan", Unit: "pack", SellingPrice: 3500, CostPrice: 2700, MaxDiscountPercent: 10},
		{ID: "prd-telur", SKU: "SKU-TELUR-01", Name: "Telur 10 Butir", Unit: "tray", SellingPrice: 26500, CostPrice: 23000, MaxDiscountPercent: 5},
		{ID: "prd-susu", SKU: "SKU-SUSU-01", Name: "Susu UHT 1L", Unit: "box", SellingPrice: 18900, CostPrice: 13600, MaxDiscountPercent: 15},
		{ID: "prd-kopi", SKU: "SKU-KOPI-01", Name: "Kopi Sachet", Unit: "sachet", SellingPrice: 2600, CostPrice: 1700, MaxDiscountPercent: 20},
		{ID: "prd-gula", SKU: "SKU-GULA-01", Name: "Gula 1kg", Unit: "bag", SellingPrice: 17400, CostPrice: 15300, MaxDiscountPercent: 0},
		{ID: "prd-sabun", SKU: "SKU-SABUN-01", Name: "Sabun Mandi", Unit: "bar", SellingPrice: 7400, CostPrice: 5000, MaxDiscountPercent: 10},
	}
	stock := map[string]int{
		"prd-mie":   120,
		"prd-telur": 30,
		"prd-susu":  48,
		"prd-kopi":  200,
		"prd-gula":  40,
		"prd-sabun": 60,
	}

	for _, p := range products {
		p.LocationID = locationID
		p.IsActive = true
		p.CreatedAt = now
		p.UpdatedAt = now
		s.state.products[p.ID] = p
		s.state.productOrder = append(s.state.productOrder, p.ID)
		s.state.inventory[balanceKey{locationID, p.ID}] = balance{qty: stock[p.ID], updatedAt: now}
	}
	return s
}

func newState() *state {
	return &state{
		products:    make(map[string]domain.Product),
		inventory:   make(map[balanceKey]balance),
		holdings:    make(map[holdingKey]balance),
		adjustments: make(map[string]domain.AdjustmentRequest),
		requests:    make(map[string]domain.StockRequest),
		sales:       make(map[string]domain.Sale),
		payments:    make(map[string]domain.Payment),
		refunds:     make(map[string]domain.Refund),
		credits:     make(map[string]domain.Credit),
		sessions:    make(map[string]domain.CashSession),
		customers:   make(map[string]domain.Customer),
	}
}

// clone copies every container. Stored values never share mutable slices
// with callers, so copying the containers is enough.
func (st *state) clone() *state {
	return &state{
		products:       maps.Clone(st.products),
		productOrder:   slices.Clone(st.productOrder),
		inventory:      maps.Clone(st.inventory),
		holdings:       maps.Clone(st.holdings),
		arrivals:       slices.Clone(st.arrivals),
		adjustments:    maps.Clone(st.adjustments),
		adjustOrder:    slices.Clone(st.adjustOrder),
		requests:       maps.Clone(st.requests),
		requestOrder:   slices.Clone(st.requestOrder),
		sales:          maps.Clone(st.sales),
		saleOrder:      slices.Clone(st.saleOrder),
		payments:       maps.Clone(st.payments),
		paymentOrder:   slices.Clone(st.paymentOrder),
		refunds:        maps.Clone(st.refunds),
		credits:        maps.Clone(st.credits),
		creditOrder:    slices.Clone(st.creditOrder),
		cashEntries:    slices.Clone(st.cashEntries),
		sessions:       maps.Clone(st.sessions),
		reconciliation: slices.Clone(st.reconciliation),
		deposits:       slices.Clone(st.deposits),
		expenses:       slices.Clone(st.expenses),
		customers:      maps.Clone(st.customers),
		customerOrder:  slices.Clone(st.customerOrder),
		auditLogs:      slices.Clone(st.auditLogs),
		messages:       slices.Clone(st.messages),
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) View(ctx context.Context, fn func(q store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (st *state) CreateProduct(_ context.Context, product domain.Product) error {
	if _, exists := st.products[product.ID]; exists {
		return store.ErrConflict
	}
	for _, p := range st.products {
		if p.LocationID == product.LocationID && strings.EqualFold(p.SKU, product.SKU) {
			return store.ErrConflict
		}
	}
	st.products[product.ID] = product
	st.productOrder = append(st.productOrder, product.ID)
	return nil
}

func (st *state) GetProduct(_ context.Context, locationID string, productID string) (*domain.Product, error) {
	p, ok := st.products[productID]
	if !ok || p.LocationID != locationID {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (st *state) GetProductBySKU(_ context.Context, locationID string, sku string) (*domain.Product, error) {
	for _, id := range st.productOrder {
		p := st.products[id]
		if p.LocationID == locationID && strings.EqualFold(p.SKU, sku) {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (st *state) UpdateProduct(_ context.Context, product domain.Product) error {
	existing, ok := st.products[product.ID]
	if !ok || existing.LocationID != product.LocationID {
		return store.ErrNotFound
	}
	st.products[product.ID] = product
	return nil
}

func (st *state) ListProducts(_ context.Context, locationID string) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(st.productOrder))
	for _, id := range st.productOrder {
		p := st.products[id]
		if p.LocationID == locationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (st *state) LockInventoryBalance(_ context.Context, locationID string, productID string) (int, error) {
	key := balanceKey{locationID, productID}
	b, ok := st.inventory[key]
	if !ok {
		b = balance{updatedAt: time.Now().UTC()}
		st.inventory[key] = b
	}
	return b.qty, nil
}

func (st *state) SetInventoryBalance(_ context.Context, locationID string, productID string, qty int) error {
	if qty < 0 {
		return store.ErrConflict
	}
	st.inventory[balanceKey{locationID, productID}] = balance{qty: qty, updatedAt: time.Now().UTC()}
	return nil
}

func (st *state) LockSellerHolding(_ context.Context, locationID string, sellerID string, productID string) (int, error) {
	key := holdingKey{locationID, sellerID, productID}
	b, ok := st.holdings[key]
	if !ok {
		b = balance{updatedAt: time.Now().UTC()}
		st.holdings[key] = b
	}
	return b.qty, nil
}

func (st *state) SetSellerHolding(_ context.Context, locationID string, sellerID string, productID string, qty int) error {
	if qty < 0 {
		return store.ErrConflict
	}
	st.holdings[holdingKey{locationID, sellerID, productID}] = balance{qty: qty, updatedAt: time.Now().UTC()}
	return nil
}

func (st *state) ListInventoryBalances(_ context.Context, locationID string) ([]domain.InventoryBalance, error) {
	out := make([]domain.InventoryBalance, 0, len(st.inventory))
	for key, b := range st.inventory {
		if key.locationID != locationID {
			continue
		}
		out = append(out, domain.InventoryBalance{
			LocationID:  key.locationID,
			ProductID:   key.productID,
			ProductName: st.products[key.productID].Name,
			QtyOnHand:   b.qty,
			UpdatedAt:   b.updatedAt,
		})
	}
	slices.SortFunc(out, func(a, b domain.InventoryBalance) int {
		return strings.Compare(a.ProductName+a.ProductID, b.ProductName+b.ProductID)
	})
	return out, nil
}

func (st *state) ListSellerHoldings(_ context.Context, locationID string, sellerID string) ([]domain.SellerHolding, error) {
	out := make([]domain.SellerHolding, 0, 16)
	for key, b := range st.holdings {
		if key.locationID != locationID || (sellerID != "" && key.sellerID != sellerID) {
			continue
		}
		out = append(out, domain.SellerHolding{
			LocationID:  key.locationID,
			SellerID:    key.sellerID,
			ProductID:   key.productID,
			ProductName: st.products[key.productID].Name,
			QtyOnHand:   b.qty,
			UpdatedAt:   b.updatedAt,
		})
	}
	slices.SortFunc(out, func(a, b domain.SellerHolding) int {
		if c := strings.Compare(a.SellerID, b.SellerID); c != 0 {
			return c
		}
		return strings.Compare(a.ProductName+a.ProductID, b.ProductName+b.ProductID)
	})
	return out, nil
}

func (st *state) CreateArrival(_ context.Context, arrival domain.InventoryArrival) error {
	arrival.Documents = slices.Clone(arrival.Documents)
	st.arrivals = append(st.arrivals, arrival)
	return nil
}

func (st *state) ListArrivals(_ context.Context, locationID string, limit int) ([]domain.InventoryArrival, error) {
	out := make([]domain.InventoryArrival, 0, 16)
	for i := len(st.arrivals) - 1; i >= 0 && len(out) < limit; i-- {
		a := st.arrivals[i]
		if a.LocationID != locationID {
			continue
		}
		a.Documents = slices.Clone(a.Documents)
		out = append(out, a)
	}
	return out, nil
}

func (st *state) CreateAdjustmentRequest(_ context.Context, req domain.AdjustmentRequest) error {
	if _, exists := st.adjustments[req.ID]; exists {
		return store.ErrConflict
	}
	st.adjustments[req.ID] = req
	st.adjustOrder = append(st.adjustOrder, req.ID)
	return nil
}

func (st *state) LockAdjustmentRequest(_ context.Context, locationID string, id string) (*domain.AdjustmentRequest, error) {
	req, ok := st.adjustments[id]
	if !ok || req.LocationID != locationID {
		return nil, store.ErrNotFound
	}
	return &req, nil
}

func (st *state) UpdateAdjustmentRequest(_ context.Context, req domain.AdjustmentRequest) error {
	if _, ok := st.adjustments[req.ID]; !ok {
		return store.ErrNotFound
	}
	st.adjustments[req.ID] = req
	return nil
}

func (st *state) ListAdjustmentRequests(_ context.Context, locationID string, status string, limit int) ([]domain.AdjustmentRequest, error) {
	out := make([]domain.AdjustmentRequest, 0, 16)
	for i := len(st.adjustOrder) - 1; i >= 0 && len(out) < limit; i-- {
		req := st.adjustments[st.adjustOrder[i]]
		if req.LocationID != locationID || (status != "" && req.Status != status) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (st *state) CreateStockRequest(_ context.Context, req domain.StockRequest) error {
	if _, exists := st.requests[req.ID]; exists {
		return store.ErrConflict
	}
	req.Items = slices.Clone(req.Items)
	st.requests[req.ID] = req
	st.requestOrder = append(st.requestOrder, req.ID)
	return nil
}

func (st *state) GetStockRequest(_ context.Context, locationID string, id string) (*domain.StockRequest, error) {
	req, ok := st.requests[id]
	if !ok || req.LocationID != locationID {
		return nil, store.ErrNotFound
	}
	req.Items = slices.Clone(req.Items)
	return &req, nil
}

func (st *state) LockStockRequest(ctx context.Context, locationID string, id string) (*domain.StockRequest, error) {
	return st.GetStockRequest(ctx, locationID, id)
}

func (st *state) UpdateStockRequest(_ context.Context, req domain.StockRequest) error {
	if _, ok := st.requests[req.ID]; !ok {
		return store.ErrNotFound
	}
	req.Items = slices.Clone(req.Items)
	st.requests[req.ID] = req
	return nil
}

func (st *state) ListStockRequests(_ context.Context, locationID string, status string, sellerID string, limit int) ([]domain.StockRequest, error) {
	out := make([]domain.StockRequest, 0, 16)
	for i := len(st.requestOrder) - 1; i >= 0 && len(out) < limit; i-- {
		req := st.requests[st.requestOrder[i]]
		if req.LocationID != locationID {
			continue
		}
		if (status != "" && req.Status != status) || (sellerID != "" && req.SellerID != sellerID) {
			continue
		}
		req.Items = slices.Clone(req.Items)
		out = append(out, req)
	}
	return out, nil
}

func (st *state) CreateSale(_ context.Context, sale domain.Sale) error {
	if _, exists := st.sales[sale.ID]; exists {
		return store.ErrConflict
	}
	sale.Items = slices.Clone(sale.Items)
	st.sales[sale.ID] = sale
	st.saleOrder = append(st.saleOrder, sale.ID)
	return nil
}

func (st *state) GetSale(_ context.Context, locationID string, id string) (*domain.Sale, error) {
	sale, ok := st.sales[id]
	if !ok || sale.LocationID != locationID {
		return nil, store.ErrNotFound
	}
	sale.Items = slices.Clone(sale.Items)
	return &sale, nil
}

func (st *state) LockSale(ctx context.Context, locationID string, id string) (*domain.Sale, error) {
	return st.GetSale(ctx, locationID, id)
}

// UpdateSale persists header fields only; items are immutable once inserted.
func (st *state) UpdateSale(_ context.Context, sale domain.Sale) error {
	existing, ok := st.sales[sale.ID]
	if !ok || existing.LocationID != sale.LocationID {
		return store.ErrNotFound
	}
	sale.Items = existing.Items
	st.sales[sale.ID] = sale
	return nil
}

func (st *state) ListSales(_ context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	out := make([]domain.Sale, 0, 16)
	for i := len(st.saleOrder) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		sale := st.sales[st.saleOrder[i]]
		if sale.LocationID != filter.LocationID {
			continue
		}
		if (filter.Status != "" && sale.Status != filter.Status) || (filter.SellerID != "" && sale.SellerID != filter.SellerID) {
			continue
		}
		if filter.CustomerID != "" && sale.CustomerID != filter.CustomerID {
			continue
		}
		sale.Items = slices.Clone(sale.Items)
		out = append(out, sale)
	}
	return out, nil
}

func (st *state) CreatePayment(_ context.Context, payment domain.Payment) error {
	for _, p := range st.payments {
		if p.SaleID == payment.SaleID {
			return store.ErrConflict
		}
	}
	st.payments[payment.ID] = payment
	st.paymentOrder = append(st.paymentOrder, payment.ID)
	return nil
}

func (st *state) GetPaymentBySale(_ context.Context, locationID string, saleID string) (*domain.Payment, error) {
	for _, p := range st.payments {
		if p.LocationID == locationID && p.SaleID == saleID {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (st *state) ListPayments(_ context.Context, locationID string, limit int) ([]domain.Payment, error) {
	out := make([]domain.Payment, 0, 16)
	for i := len(st.paymentOrder) - 1; i >= 0 && len(out) < limit; i-- {
		p := st.payments[st.paymentOrder[i]]
		if p.LocationID == locationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (st *state) CreateRefund(_ context.Context, refund domain.Refund) error {
	for _, r := range st.refunds {
		if r.SaleID == refund.SaleID {
			return store.ErrConflict
		}
	}
	st.refunds[refund.ID] = refund
	return nil
}

func (st *state) GetRefundBySale(_ context.Context, locationID string, saleID string) (*domain.Refund, error) {
	for _, r := range st.refunds {
		if r.LocationID == locationID && r.SaleID == saleID {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (st *state) CreateCredit(_ context.Context, credit domain.Credit) error {
	for _, c := range st.credits {
		if c.SaleID == credit.SaleID {
			return store.ErrConflict
		}
	}
	st.credits[credit.ID] = credit
	st.creditOrder = append(st.creditOrder, credit.ID)
	return nil
}

func (st *state) GetCreditBySale(_ context.Context, locationID string, saleID string) (*domain.Credit, error) {
	for _, c := range st.credits {
		if c.LocationID == locationID && c.SaleID == saleID {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (st *state) LockCredit(_ context.Context, locationID string, id string) (*domain.Credit, error) {
	c, ok := st.credits[id]
	if !ok || c.LocationID != locationID {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (st *state) UpdateCredit(_ context.Context, credit domain.Credit) error {
	if _, ok := st.credits[credit.ID]; !ok {
		return store.ErrNotFound
	}
	st.credits[credit.ID] = credit
	return nil
}

func (st *state) ListCredits(_ context.Context, locationID string, status string, limit int) ([]domain.Credit, error) {
	out := make([]domain.Credit, 0, 16)
	for i := len(st.creditOrder) - 1; i >= 0 && len(out) < limit; i-- {
		c := st.credits[st.creditOrder[i]]
		if c.LocationID != locationID || (status != "" && c.Status != status) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (st *state) AppendCashEntry(_ context.Context, entry domain.CashLedgerEntry) error {
	st.cashEntries = append(st.cashEntries, entry)
	return nil
}

func (st *state) ListCashEntries(_ context.Context, filter domain.CashEntryFilter) ([]domain.CashLedgerEntry, error) {
	out := make([]domain.CashLedgerEntry, 0, 32)
	for i := len(st.cashEntries) - 1; i >= 0; i-- {
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		e := st.cashEntries[i]
		if e.LocationID != filter.LocationID {
			continue
		}
		if !filter.From.IsZero() && e.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !e.CreatedAt.Before(filter.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (st *state) CreateCashSession(_ context.Context, session domain.CashSession) error {
	for _, existing := range st.sessions {
		if existing.LocationID == session.LocationID && existing.CashierID == session.CashierID && existing.Status == domain.SessionStatusOpen {
			return store.ErrConflict
		}
	}
	st.sessions[session.ID] = session
	return nil
}

func (st *state) GetOpenCashSession(_ context.Context, locationID string, cashierID string) (*domain.CashSession, error) {
	for _, session := range st.sessions {
		if session.LocationID == locationID && session.CashierID == cashierID && session.Status == domain.SessionStatusOpen {
			return &session, nil
		}
	}
	return nil, store.ErrNotFound
}

func (st *state) GetCashSession(_ context.Context, locationID string, id string) (*domain.CashSession, error) {
	session, ok := st.sessions[id]
	if !ok || session.LocationID != locationID {
		return nil, store.ErrNotFound
	}
	return &session, nil
}

func (st *state) LockCashSession(ctx context.Context, locationID string, id string) (*domain.CashSession, error) {
	return st.GetCashSession(ctx, locationID, id)
}

func (st *state) UpdateCashSession(_ context.Context, session domain.CashSession) error {
	if _, ok := st.sessions[session.ID]; !ok {
		return store.ErrNotFound
	}
	st.sessions[session.ID] = session
	return nil
}

func (st *state) CreateReconciliation(_ context.Context, rec domain.CashReconciliation) error {
	st.reconciliation = append(st.reconciliation, rec)
	return nil
}

func (st *state) ListReconciliations(_ context.Context, locationID string, sessionID string) ([]domain.CashReconciliation, error) {
	out := make([]domain.CashReconciliation, 0, 4)
	for _, rec := range st.reconciliation {
		if rec.LocationID == locationID && (sessionID == "" || rec.CashSessionID == sessionID) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (st *state) CreateDeposit(_ context.Context, deposit domain.CashDeposit) error {
	st.deposits = append(st.deposits, deposit)
	return nil
}

func (st *state) ListDeposits(_ context.Context, locationID string, limit int) ([]domain.CashDeposit, error) {
	out := make([]domain.CashDeposit, 0, 16)
	for i := len(st.deposits) - 1; i >= 0 && len(out) < limit; i-- {
		if st.deposits[i].LocationID == locationID {
			out = append(out, st.deposits[i])
		}
	}
	return out, nil
}

func (st *state) CreateExpense(_ context.Context, expense domain.Expense) error {
	st.expenses = append(st.expenses, expense)
	return nil
}

func (st *state) ListExpenses(_ context.Context, locationID string, limit int) ([]domain.Expense, error) {
	out := make([]domain.Expense, 0, 16)
	for i := len(st.expenses) - 1; i >= 0 && len(out) < limit; i-- {
		if st.expenses[i].LocationID == locationID {
			out = append(out, st.expenses[i])
		}
	}
	return out, nil
}

func (st *state) CreateCustomer(_ context.Context, customer domain.Customer) error {
	for _, c := range st.customers {
		if c.LocationID == customer.LocationID && c.Phone == customer.Phone {
			return store.ErrConflict
		}
	}
	st.customers[customer.ID] = customer
	st.customerOrder = append(st.customerOrder, customer.ID)
	return nil
}

func (st *state) GetCustomer(_ context.Context, locationID string, id string) (*domain.Customer, error) {
	c, ok := st.customers[id]
	if !ok || c.LocationID != locationID {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (st *state) GetCustomerByPhone(_ context.Context, locationID string, phone string) (*domain.Customer, error) {
	for _, c := range st.customers {
		if c.LocationID == locationID && c.Phone == phone {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (st *state) SearchCustomers(_ context.Context, locationID string, query string, limit int) ([]domain.Customer, error) {
	needle := strings.ToLower(query)
	out := make([]domain.Customer, 0, limit)
	for i := len(st.customerOrder) - 1; i >= 0 && len(out) < limit; i-- {
		c := st.customers[st.customerOrder[i]]
		if c.LocationID != locationID {
			continue
		}
		if strings.Contains(strings.ToLower(c.Name), needle) || strings.Contains(strings.ToLower(c.Phone), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (st *state) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	st.auditLogs = append(st.auditLogs, entry)
	return nil
}

func (st *state) ListAuditLogs(_ context.Context, locationID string, limit int) ([]domain.AuditLog, error) {
	out := make([]domain.AuditLog, 0, limit)
	for i := len(st.auditLogs) - 1; i >= 0 && len(out) < limit; i-- {
		if st.auditLogs[i].LocationID == locationID {
			out = append(out, st.auditLogs[i])
		}
	}
	return out, nil
}

func (st *state) CreateMessage(_ context.Context, msg domain.Message) error {
	st.messages = append(st.messages, msg)
	return nil
}

func (st *state) ListMessages(_ context.Context, locationID string, entityType string, entityID string, limit int) ([]domain.Message, error) {
	out := make([]domain.Message, 0, 8)
	for _, msg := range st.messages {
		if len(out) >= limit {
			break
		}
		if msg.LocationID == locationID && msg.EntityType == entityType && msg.EntityID == entityID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (st *state) GetPeriodTotals(_ context.Context, locationID string, from, to time.Time) (domain.PeriodTotals, error) {
	var totals domain.PeriodTotals
	within := func(t time.Time) bool { return !t.Before(from) && t.Before(to) }
	for _, sale := range st.sales {
		if sale.LocationID == locationID && within(sale.CreatedAt) {
			totals.SalesCount++
			totals.SalesTotal += sale.TotalAmount
		}
	}
	for _, p := range st.payments {
		if p.LocationID == locationID && within(p.CreatedAt) {
			totals.PaymentsCount++
			totals.PaymentsTotal += p.Amount
		}
	}
	return totals, nil
}

func (st *state) GetDashboardSummary(ctx context.Context, locationID string, dayStart time.Time) (domain.DashboardSummary, error) {
	summary := domain.DashboardSummary{
		LocationID:    locationID,
		SalesByStatus: make(map[string]int),
	}

	for _, p := range st.products {
		if p.LocationID == locationID {
			summary.ProductCount++
		}
	}
	for key, b := range st.inventory {
		if key.locationID == locationID {
			summary.InventoryUnits += b.qty
		}
	}
	for _, sale := range st.sales {
		if sale.LocationID != locationID {
			continue
		}
		summary.SalesByStatus[sale.Status]++
		if !sale.CreatedAt.Before(dayStart) {
			summary.SalesToday++
			if sale.Status == domain.SaleStatusCompleted {
				summary.CompletedToday += sale.TotalAmount
			}
		}
	}
	for _, p := range st.payments {
		if p.LocationID != locationID {
			continue
		}
		summary.PaymentsTotal += p.Amount
		if !p.CreatedAt.Before(dayStart) {
			summary.PaymentsToday += p.Amount
		}
	}
	for _, c := range st.credits {
		if c.LocationID == locationID && c.Status == domain.CreditStatusOpen {
			summary.OpenCredits++
		}
	}
	for _, req := range st.requests {
		if req.LocationID == locationID && req.Status == domain.RequestStatusPending {
			summary.PendingRequests++
		}
	}

	recent, err := st.ListAuditLogs(ctx, locationID, 10)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	summary.RecentActivity = recent
	return summary, nil
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*state)(nil)
)
