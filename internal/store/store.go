package store

import (
	"context"
	"errors"
	"time"

	"retailpos/backend/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("conflict")
)

// Store runs work against the backing database. Every mutating business
// operation goes through WithinTx so that reads informing a write, the write
// itself and its audit entry commit or roll back together.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(q Tx) error) error
}

// Tx is the query surface available inside a transaction scope. Lock* methods
// take a row lock that is held until the transaction ends.
type Tx interface {
	CreateProduct(ctx context.Context, product domain.Product) error
	GetProduct(ctx context.Context, locationID string, productID string) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, locationID string, sku string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) error
	ListProducts(ctx context.Context, locationID string) ([]domain.Product, error)

	LockInventoryBalance(ctx context.Context, locationID string, productID string) (int, error)
	SetInventoryBalance(ctx context.Context, locationID string, productID string, qty int) error
	LockSellerHolding(ctx context.Context, locationID string, sellerID string, productID string) (int, error)
	SetSellerHolding(ctx context.Context, locationID string, sellerID string, productID string, qty int) error
	ListInventoryBalances(ctx context.Context, locationID string) ([]domain.InventoryBalance, error)
	ListSellerHoldings(ctx context.Context, locationID string, sellerID string) ([]domain.SellerHolding, error)

	CreateArrival(ctx context.Context, arrival domain.InventoryArrival) error
	ListArrivals(ctx context.Context, locationID string, limit int) ([]domain.InventoryArrival, error)
	CreateAdjustmentRequest(ctx context.Context, req domain.AdjustmentRequest) error
	LockAdjustmentRequest(ctx context.Context, locationID string, id string) (*domain.AdjustmentRequest, error)
	UpdateAdjustmentRequest(ctx context.Context, req domain.AdjustmentRequest) error
	ListAdjustmentRequests(ctx context.Context, locationID string, status string, limit int) ([]domain.AdjustmentRequest, error)

	CreateStockRequest(ctx context.Context, req domain.StockRequest) error
	GetStockRequest(ctx context.Context, locationID string, id string) (*domain.StockRequest, error)
	LockStockRequest(ctx context.Context, locationID string, id string) (*domain.StockRequest, error)
	UpdateStockRequest(ctx context.Context, req domain.StockRequest) error
	ListStockRequests(ctx context.Context, locationID string, status string, sellerID string, limit int) ([]domain.StockRequest, error)

	CreateSale(ctx context.Context, sale domain.Sale) error
	GetSale(ctx context.Context, locationID string, id string) (*domain.Sale, error)
	LockSale(ctx context.Context, locationID string, id string) (*domain.Sale, error)
	UpdateSale(ctx context.Context, sale domain.Sale) error
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)

	CreatePayment(ctx context.Context, payment domain.Payment) error
	GetPaymentBySale(ctx context.Context, locationID string, saleID string) (*domain.Payment, error)
	ListPayments(ctx context.Context, locationID string, limit int) ([]domain.Payment, error)
	CreateRefund(ctx context.Context, refund domain.Refund) error
	GetRefundBySale(ctx context.Context, locationID string, saleID string) (*domain.Refund, error)

	CreateCredit(ctx context.Context, credit domain.Credit) error
	GetCreditBySale(ctx context.Context, locationID string, saleID string) (*domain.Credit, error)
	LockCredit(ctx context.Context, locationID string, id string) (*domain.Credit, error)
	UpdateCredit(ctx context.Context, credit domain.Credit) error
	ListCredits(ctx context.Context, locationID string, status string, limit int) ([]domain.Credit, error)

	AppendCashEntry(ctx context.Context, entry domain.CashLedgerEntry) error
	ListCashEntries(ctx context.Context, filter domain.CashEntryFilter) ([]domain.CashLedgerEntry, error)
	CreateCashSession(ctx context.Context, session domain.CashSession) error
	GetOpenCashSession(ctx context.Context, locationID string, cashierID string) (*domain.CashSession, error)
	GetCashSession(ctx context.Context, locationID string, id string) (*domain.CashSession, error)
	LockCashSession(ctx context.Context, locationID string, id string) (*domain.CashSession, error)
	UpdateCashSession(ctx context.Context, session domain.CashSession) error
	CreateReconciliation(ctx context.Context, rec domain.CashReconciliation) error
	ListReconciliations(ctx context.Context, locationID string, sessionID string) ([]domain.CashReconciliation, error)
	CreateDeposit(ctx context.Context, deposit domain.CashDeposit) error
	ListDeposits(ctx context.Context, locationID string, limit int) ([]domain.CashDeposit, error)
	CreateExpense(ctx context.Context, expense domain.Expense) error
	ListExpenses(ctx context.Context, locationID string, limit int) ([]domain.Expense, error)

	CreateCustomer(ctx context.Context, customer domain.Customer) error
	GetCustomer(ctx context.Context, locationID string, id string) (*domain.Customer, error)
	GetCustomerByPhone(ctx context.Context, locationID string, phone string) (*domain.Customer, error)
	SearchCustomers(ctx context.Context, locationID string, query string, limit int) ([]domain.Customer, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, locationID string, limit int) ([]domain.AuditLog, error)

	CreateMessage(ctx context.Context, msg domain.Message) error
	// ListMessages returns a thread oldest first.
	ListMessages(ctx context.Context, locationID string, entityType string, entityID string, limit int) ([]domain.Message, error)

	GetDashboardSummary(ctx context.Context, locationID string, dayStart time.Time) (domain.DashboardSummary, error)
	GetPeriodTotals(ctx context.Context, locationID string, from, to time.Time) (domain.PeriodTotals, error)
}
