package domain

import "time"

const (
	RoleOwner       = "owner"
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RoleStoreKeeper = "store_keeper"
	RoleSeller      = "seller"
	RoleCashier     = "cashier"
)

type Actor struct {
	UserID     string
	Role       string
	LocationID string
}

type Product struct {
	ID                 string    `json:"id"`
	LocationID         string    `json:"location_id"`
	Name               string    `json:"name"`
	SKU                string    `json:"sku"`
	Unit               string    `json:"unit"`
	SellingPrice       int64     `json:"selling_price"`
	CostPrice          int64     `json:"cost_price"`
	MaxDiscountPercent int       `json:"max_discount_percent"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ProductView is the listing shape; PurchasePrice is nil unless the caller may see costs.
type ProductView struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	SKU                string `json:"sku"`
	Unit               string `json:"unit"`
	SellingPrice       int64  `json:"selling_price"`
	PurchasePrice      *int64 `json:"purchase_price"`
	MaxDiscountPercent int    `json:"max_discount_percent"`
	IsActive           bool   `json:"is_active"`
	QtyOnHand          int    `json:"qty_on_hand"`
}

type ProductCreateRequest struct {
	Name               string `json:"name"`
	SKU                string `json:"sku"`
	Unit               string `json:"unit"`
	SellingPrice       int64  `json:"selling_price"`
	CostPrice          *int64 `json:"cost_price,omitempty"`
	MaxDiscountPercent *int   `json:"max_discount_percent,omitempty"`
}

type PricingUpdateRequest struct {
	PurchasePrice      int64 `json:"purchase_price"`
	SellingPrice       int64 `json:"selling_price"`
	MaxDiscountPercent int   `json:"max_discount_percent"`
}

type InventoryBalance struct {
	LocationID  string    `json:"location_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	QtyOnHand   int       `json:"qty_on_hand"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SellerHolding struct {
	LocationID  string    `json:"location_id"`
	SellerID    string    `json:"seller_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	QtyOnHand   int       `json:"qty_on_hand"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type InventoryAdjustRequest struct {
	ProductID string `json:"product_id"`
	QtyChange int    `json:"qty_change"`
	Reason    string `json:"reason"`
}

type InventoryAdjustResponse struct {
	ProductID string `json:"product_id"`
	QtyOnHand int    `json:"qty_on_hand"`
}

type ArrivalDocument struct {
	ID         string    `json:"id"`
	FileURL    string    `json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type InventoryArrival struct {
	ID          string            `json:"id"`
	LocationID  string            `json:"location_id"`
	ProductID   string            `json:"product_id"`
	QtyReceived int               `json:"qty_received"`
	Notes       string            `json:"notes,omitempty"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	Documents   []ArrivalDocument `json:"documents"`
}

type ArrivalCreateRequest struct {
	ProductID    string   `json:"product_id"`
	QtyReceived  int      `json:"qty_received"`
	Notes        string   `json:"notes,omitempty"`
	DocumentURLs []string `json:"document_urls,omitempty"`
}

type AdjustmentRequest struct {
	ID          string     `json:"id"`
	LocationID  string     `json:"location_id"`
	ProductID   string     `json:"product_id"`
	QtyChange   int        `json:"qty_change"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	RequestedBy string     `json:"requested_by"`
	DecidedBy   string     `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type AdjustmentCreateRequest struct {
	ProductID string `json:"product_id"`
	QtyChange int    `json:"qty_change"`
	Reason    string `json:"reason"`
}

type StockRequestItem struct {
	ProductID    string `json:"product_id"`
	QtyRequested int    `json:"qty_requested"`
	QtyApproved  int    `json:"qty_approved"`
}

type StockRequest struct {
	ID         string             `json:"id"`
	LocationID string             `json:"location_id"`
	SellerID   string             `json:"seller_id"`
	Status     string             `json:"status"`
	Note       string             `json:"note,omitempty"`
	DecidedBy  string             `json:"decided_by,omitempty"`
	DecidedAt  *time.Time         `json:"decided_at,omitempty"`
	ReleasedBy string             `json:"released_by,omitempty"`
	ReleasedAt *time.Time         `json:"released_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	Items      []StockRequestItem `json:"items"`
}

type StockRequestLine struct {
	ProductID    string `json:"product_id"`
	QtyRequested int    `json:"qty_requested"`
}

type StockRequestCreateRequest struct {
	Note  string             `json:"note,omitempty"`
	Items []StockRequestLine `json:"items"`
}

type StockRequestDecision struct {
	Decision string `json:"decision"`
	// QtyApproved overrides the approved quantity per product id.
	QtyApproved map[string]int `json:"qty_approved,omitempty"`
}

type SaleItem struct {
	ProductID       string `json:"product_id"`
	Qty             int    `json:"qty"`
	UnitPrice       int64  `json:"unit_price"`
	DiscountPercent int    `json:"discount_percent"`
	DiscountAmount  int64  `json:"discount_amount"`
	LineTotal       int64  `json:"line_total"`
}

type Sale struct {
	ID              string     `json:"id"`
	LocationID      string     `json:"location_id"`
	SellerID        string     `json:"seller_id"`
	CustomerID      string     `json:"customer_id,omitempty"`
	Status          string     `json:"status"`
	Subtotal        int64      `json:"subtotal"`
	DiscountPercent int        `json:"discount_percent"`
	DiscountAmount  int64      `json:"discount_amount"`
	TotalAmount     int64      `json:"total_amount"`
	Note            string     `json:"note,omitempty"`
	CanceledAt      *time.Time `json:"canceled_at,omitempty"`
	CanceledBy      string     `json:"canceled_by,omitempty"`
	CancelReason    string     `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Items           []SaleItem `json:"items"`
}

type SaleLineRequest struct {
	ProductID       string `json:"product_id"`
	Qty             int    `json:"qty"`
	UnitPrice       *int64 `json:"unit_price,omitempty"`
	DiscountPercent *int   `json:"discount_percent,omitempty"`
	DiscountAmount  *int64 `json:"discount_amount,omitempty"`
}

type SaleCreateRequest struct {
	CustomerID      string            `json:"customer_id,omitempty"`
	Note            string            `json:"note,omitempty"`
	DiscountPercent *int              `json:"discount_percent,omitempty"`
	DiscountAmount  *int64            `json:"discount_amount,omitempty"`
	Items           []SaleLineRequest `json:"items"`
}

type SaleMarkRequest struct {
	// Paid moves the sale to AWAITING_PAYMENT_RECORD; otherwise it becomes PENDING.
	Paid bool `json:"paid"`
}

type SaleCancelRequest struct {
	Reason string `json:"reason"`
}

type SaleFilter struct {
	LocationID string
	Status     string
	SellerID   string
	CustomerID string
	Limit      int
}

// CustomerSale is one row of a customer's purchase history.
type CustomerSale struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	TotalAmount int64     `json:"total_amount"`
	SellerID    string    `json:"seller_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type CustomerHistory struct {
	Customer Customer       `json:"customer"`
	Sales    []CustomerSale `json:"sales"`
}

type Payment struct {
	ID            string    `json:"id"`
	LocationID    string    `json:"location_id"`
	SaleID        string    `json:"sale_id"`
	CashierID     string    `json:"cashier_id"`
	CashSessionID string    `json:"cash_session_id,omitempty"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type PaymentRecordRequest struct {
	Amount        int64  `json:"amount"`
	Method        string `json:"method,omitempty"`
	Note          string `json:"note,omitempty"`
	CashSessionID string `json:"cash_session_id,omitempty"`
}

type PaymentResponse struct {
	Sale    Sale    `json:"sale"`
	Payment Payment `json:"payment"`
}

type Refund struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	SaleID     string    `json:"sale_id"`
	Amount     int64     `json:"amount"`
	Reason     string    `json:"reason,omitempty"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type RefundRequest struct {
	Reason string `json:"reason,omitempty"`
}

type RefundResponse struct {
	Sale   Sale   `json:"sale"`
	Refund Refund `json:"refund"`
}

type Credit struct {
	ID         string     `json:"id"`
	LocationID string     `json:"location_id"`
	SaleID     string     `json:"sale_id"`
	CustomerID string     `json:"customer_id,omitempty"`
	Amount     int64      `json:"amount"`
	Status     string     `json:"status"`
	Note       string     `json:"note,omitempty"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	ApprovedBy string     `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	SettledBy  string     `json:"settled_by,omitempty"`
	SettledAt  *time.Time `json:"settled_at,omitempty"`
}

type CreditCreateRequest struct {
	SaleID     string `json:"sale_id"`
	CustomerID string `json:"customer_id,omitempty"`
	Note       string `json:"note,omitempty"`
}

type CreditDecision struct {
	Decision string `json:"decision"`
	Note     string `json:"note,omitempty"`
}

type CreditSettleRequest struct {
	Method string `json:"method,omitempty"`
	Note   string `json:"note,omitempty"`
}

type CreditSettleResponse struct {
	Credit  Credit  `json:"credit"`
	Payment Payment `json:"payment"`
}

type CashLedgerEntry struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	CashierID  string    `json:"cashier_id"`
	Type       string    `json:"type"`
	Direction  string    `json:"direction"`
	Amount     int64     `json:"amount"`
	Method     string    `json:"method"`
	SaleID     string    `json:"sale_id,omitempty"`
	PaymentID  string    `json:"payment_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CashEntryRequest struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
	Method string `json:"method,omitempty"`
	Note   string `json:"note,omitempty"`
}

type CashEntryFilter struct {
	LocationID string
	From       time.Time
	To         time.Time
	Limit      int
}

type CashSummary struct {
	Date    string `json:"date"`
	CashIn  int64  `json:"cash_in"`
	CashOut int64  `json:"cash_out"`
	Net     int64  `json:"net"`
	Entries int    `json:"entries"`
}

type CashSession struct {
	ID             string     `json:"id"`
	LocationID     string     `json:"location_id"`
	CashierID      string     `json:"cashier_id"`
	Status         string     `json:"status"`
	OpeningBalance int64      `json:"opening_balance"`
	ClosingBalance *int64     `json:"closing_balance,omitempty"`
	OpenedAt       time.Time  `json:"opened_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

type SessionOpenRequest struct {
	OpeningBalance int64 `json:"opening_balance"`
}

type SessionCloseRequest struct {
	ClosingBalance int64 `json:"closing_balance"`
}

type CashReconciliation struct {
	ID            string    `json:"id"`
	LocationID    string    `json:"location_id"`
	CashSessionID string    `json:"cash_session_id"`
	CashierID     string    `json:"cashier_id"`
	ExpectedCash  int64     `json:"expected_cash"`
	CountedCash   int64     `json:"counted_cash"`
	Difference    int64     `json:"difference"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReconcileRequest struct {
	CashSessionID string `json:"cash_session_id"`
	ExpectedCash  int64  `json:"expected_cash"`
	CountedCash   int64  `json:"counted_cash"`
	Note          string `json:"note,omitempty"`
}

type CashDeposit struct {
	ID            string    `json:"id"`
	LocationID    string    `json:"location_id"`
	CashSessionID string    `json:"cash_session_id,omitempty"`
	CashierID     string    `json:"cashier_id"`
	Method        string    `json:"method"`
	Amount        int64     `json:"amount"`
	Reference     string    `json:"reference,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type DepositRequest struct {
	CashSessionID string `json:"cash_session_id,omitempty"`
	Method        string `json:"method,omitempty"`
	Amount        int64  `json:"amount"`
	Reference     string `json:"reference,omitempty"`
	Note          string `json:"note,omitempty"`
}

type Expense struct {
	ID            string    `json:"id"`
	LocationID    string    `json:"location_id"`
	CashSessionID string    `json:"cash_session_id,omitempty"`
	CashierID     string    `json:"cashier_id"`
	Category      string    `json:"category"`
	Amount        int64     `json:"amount"`
	Reference     string    `json:"reference,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ExpenseRequest struct {
	CashSessionID string `json:"cash_session_id,omitempty"`
	Category      string `json:"category,omitempty"`
	Amount        int64  `json:"amount"`
	Reference     string `json:"reference,omitempty"`
	Note          string `json:"note,omitempty"`
}

type Customer struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CustomerCreateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Notes string `json:"notes,omitempty"`
}

type AuditLog struct {
	ID          string    `json:"id"`
	LocationID  string    `json:"location_id"`
	ActorID     string    `json:"actor_id"`
	ActorRole   string    `json:"actor_role"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type DashboardSummary struct {
	LocationID      string         `json:"location_id"`
	ProductCount    int            `json:"product_count"`
	InventoryUnits  int            `json:"inventory_units"`
	SalesByStatus   map[string]int `json:"sales_by_status"`
	SalesToday      int            `json:"sales_today"`
	CompletedToday  int64          `json:"completed_amount_today"`
	PaymentsTotal   int64          `json:"payments_total"`
	PaymentsToday   int64          `json:"payments_today"`
	OpenCredits     int            `json:"open_credits"`
	PendingRequests int            `json:"pending_stock_requests"`
	RecentActivity  []AuditLog     `json:"recent_activity"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// PeriodTotals aggregates sales and payments created in [from, to).
type PeriodTotals struct {
	SalesCount    int   `json:"sales_count"`
	SalesTotal    int64 `json:"sales_total"`
	PaymentsCount int   `json:"payments_count"`
	PaymentsTotal int64 `json:"payments_total"`
}

type InventoryValuation struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	Unit           string `json:"unit"`
	CostPrice      int64  `json:"cost_price"`
	SellingPrice   int64  `json:"selling_price"`
	QtyOnHand      int    `json:"qty_on_hand"`
	StockValueCost int64  `json:"stock_value_cost"`
	StockValueSell int64  `json:"stock_value_sell"`
}

// PeriodReport is the daily, weekly or monthly report. Daily reports also
// carry the warehouse valuation and seller holdings at generation time.
type PeriodReport struct {
	LocationID  string               `json:"location_id"`
	Period      string               `json:"period"`
	From        time.Time            `json:"from"`
	To          time.Time            `json:"to"`
	Totals      PeriodTotals         `json:"totals"`
	Inventory   []InventoryValuation `json:"inventory,omitempty"`
	Holdings    []SellerHolding      `json:"holdings,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
}

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// Message is a note posted on a sale, stock request or product thread.
type Message struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	Message    string    `json:"message"`
	IsSystem   bool      `json:"is_system"`
	CreatedAt  time.Time `json:"created_at"`
}

type MessageCreateRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Message    string `json:"message"`
}

const (
	EntitySale         = "sale"
	EntityStockRequest = "stock_request"
	EntityInventory    = "inventory"
)

const (
	SaleStatusDraft                 = "DRAFT"
	SaleStatusPending               = "PENDING"
	SaleStatusAwaitingPaymentRecord = "AWAITING_PAYMENT_RECORD"
	SaleStatusCompleted             = "COMPLETED"
	SaleStatusCancelled             = "CANCELLED"
	SaleStatusRefunded              = "REFUNDED"
)

const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
	RequestStatusReleased = "RELEASED"
)

const (
	AdjustStatusPending  = "PENDING"
	AdjustStatusApproved = "APPROVED"
	AdjustStatusDeclined = "DECLINED"
)

const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
	DecisionDecline = "DECLINE"
)

const (
	CreditStatusOpen    = "OPEN"
	CreditStatusSettled = "SETTLED"
)

const (
	SessionStatusOpen   = "OPEN"
	SessionStatusClosed = "CLOSED"
)

const (
	CashTypeSalePayment      = "SALE_PAYMENT"
	CashTypeCreditSettlement = "CREDIT_SETTLEMENT"
	CashTypeRefund           = "REFUND"
	CashTypePettyCashIn      = "PETTY_CASH_IN"
	CashTypePettyCashOut     = "PETTY_CASH_OUT"
	CashTypeVersement        = "VERSEMENT"
	CashTypeOpeningBalance   = "OPENING_BALANCE"
)

const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

const (
	MethodCash = "CASH"
	MethodBank = "BANK"
)

// CashDirection derives the ledger direction from the entry type.
func CashDirection(entryType string) string {
	switch entryType {
	case CashTypePettyCashOut, CashTypeVersement, CashTypeRefund:
		return DirectionOut
	default:
		return DirectionIn
	}
}

// SaleStockDeducted reports whether a sale in this status has its items
// removed from both stock ledgers.
func SaleStockDeducted(status string) bool {
	switch status {
	case SaleStatusPending, SaleStatusAwaitingPaymentRecord, SaleStatusCompleted:
		return true
	default:
		return false
	}
}
