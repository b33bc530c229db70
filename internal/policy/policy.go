// Package policy answers whether a role may perform an action. It is
// consulted at the HTTP boundary before any service call.
package policy

import "retailpos/backend/internal/domain"

type Action string

const (
	ProductCreate  Action = "product.create"
	ProductPricing Action = "product.pricing"
	ProductList    Action = "product.list"

	InventoryView    Action = "inventory.view"
	InventoryAdjust  Action = "inventory.adjust"
	InventoryArrival Action = "inventory.arrival"

	AdjustRequestCreate Action = "adjust_request.create"
	AdjustRequestDecide Action = "adjust_request.decide"

	StockRequestCreate  Action = "stock_request.create"
	StockRequestDecide  Action = "stock_request.decide"
	StockRequestRelease Action = "stock_request.release"
	StockRequestList    Action = "stock_request.list"

	SaleCreate Action = "sale.create"
	SaleMark   Action = "sale.mark"
	SaleCancel Action = "sale.cancel"
	SaleView   Action = "sale.view"

	PaymentRecord Action = "payment.record"
	RefundCreate  Action = "refund.create"

	CreditCreate Action = "credit.create"
	CreditDecide Action = "credit.decide"
	CreditSettle Action = "credit.settle"
	CreditView   Action = "credit.view"

	CashEntry     Action = "cash.entry"
	CashSession   Action = "cash.session"
	CashReconcile Action = "cash.reconcile"
	CashDeposit   Action = "cash.deposit"
	CashExpense   Action = "cash.expense"
	CashView      Action = "cash.view"

	CustomerManage Action = "customer.manage"
	DashboardView  Action = "dashboard.view"
	ReportView     Action = "report.view"
	AuditView      Action = "audit.view"

	MessagePost Action = "message.post"
	MessageView Action = "message.view"
)

var (
	allRoles  = []string{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager, domain.RoleStoreKeeper, domain.RoleSeller, domain.RoleCashier}
	managers  = []string{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager}
	cashDesk  = []string{domain.RoleCashier, domain.RoleManager, domain.RoleAdmin}
	approvers = []string{domain.RoleManager, domain.RoleAdmin, domain.RoleOwner}
)

var table = map[Action][]string{
	ProductCreate:  managers,
	ProductPricing: managers,
	ProductList:    allRoles,

	InventoryView:    allRoles,
	InventoryAdjust:  managers,
	InventoryArrival: {domain.RoleOwner, domain.RoleAdmin, domain.RoleManager, domain.RoleStoreKeeper},

	AdjustRequestCreate: {domain.RoleSeller, domain.RoleStoreKeeper, domain.RoleManager},
	AdjustRequestDecide: managers,

	StockRequestCreate:  {domain.RoleSeller},
	StockRequestDecide:  {domain.RoleManager, domain.RoleStoreKeeper, domain.RoleAdmin, domain.RoleOwner},
	StockRequestRelease: {domain.RoleStoreKeeper, domain.RoleManager, domain.RoleAdmin},
	StockRequestList:    allRoles,

	SaleCreate: {domain.RoleSeller},
	SaleMark:   {domain.RoleSeller},
	SaleCancel: {domain.RoleSeller, domain.RoleManager, domain.RoleAdmin, domain.RoleOwner},
	SaleView:   allRoles,

	PaymentRecord: cashDesk,
	RefundCreate:  approvers,

	CreditCreate: {domain.RoleSeller, domain.RoleCashier, domain.RoleManager},
	CreditDecide: approvers,
	CreditSettle: {domain.RoleCashier, domain.RoleManager},
	CreditView:   {domain.RoleCashier, domain.RoleManager, domain.RoleAdmin, domain.RoleOwner},

	CashEntry:     cashDesk,
	CashSession:   cashDesk,
	CashReconcile: cashDesk,
	CashDeposit:   cashDesk,
	CashExpense:   cashDesk,
	CashView:      {domain.RoleCashier, domain.RoleManager, domain.RoleAdmin, domain.RoleOwner},

	CustomerManage: {domain.RoleSeller, domain.RoleCashier, domain.RoleManager, domain.RoleAdmin, domain.RoleOwner},
	DashboardView:  managers,
	ReportView:     managers,
	AuditView:      managers,

	MessagePost: allRoles,
	MessageView: allRoles,
}

// Can reports whether role may perform action. Unknown actions are denied.
func Can(role string, action Action) bool {
	for _, allowed := range table[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// SeesCostPrice reports whether product listings for role include purchase prices.
func SeesCostPrice(role string) bool {
	switch role {
	case domain.RoleOwner, domain.RoleAdmin, domain.RoleManager:
		return true
	default:
		return false
	}
}
