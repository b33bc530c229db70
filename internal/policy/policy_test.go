package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"retailpos/backend/internal/domain"
)

func TestCan(t *testing.T) {
	cases := []struct {
		role   string
		action Action
		want   bool
	}{
		{domain.RoleSeller, SaleCreate, true},
		{domain.RoleCashier, SaleCreate, false},
		{domain.RoleSeller, SaleCancel, true},
		{domain.RoleStoreKeeper, SaleCancel, false},
		{domain.RoleCashier, PaymentRecord, true},
		{domain.RoleSeller, PaymentRecord, false},
		{domain.RoleOwner, RefundCreate, true},
		{domain.RoleCashier, RefundCreate, false},
		{domain.RoleStoreKeeper, StockRequestRelease, true},
		{domain.RoleOwner, StockRequestRelease, false},
		{domain.RoleStoreKeeper, StockRequestDecide, true},
		{domain.RoleOwner, CashView, true},
		{domain.RoleOwner, CashEntry, false},
		{domain.RoleCashier, CreditSettle, true},
		{domain.RoleAdmin, CreditSettle, false},
		{domain.RoleManager, DashboardView, true},
		{domain.RoleSeller, DashboardView, false},
		{domain.RoleOwner, ReportView, true},
		{domain.RoleCashier, ReportView, false},
		{domain.RoleStoreKeeper, InventoryArrival, true},
		{domain.RoleSeller, InventoryArrival, false},
		{"intruder", ProductList, false},
		{domain.RoleOwner, Action("unknown.action"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Can(tc.role, tc.action), "%s %s", tc.role, tc.action)
	}
}

func TestEveryRoleMayListProducts(t *testing.T) {
	for _, role := range allRoles {
		assert.True(t, Can(role, ProductList), role)
		assert.True(t, Can(role, SaleView), role)
		assert.True(t, Can(role, MessagePost), role)
		assert.True(t, Can(role, MessageView), role)
	}
}

func TestSeesCostPrice(t *testing.T) {
	assert.True(t, SeesCostPrice(domain.RoleManager))
	assert.False(t, SeesCostPrice(domain.RoleSeller))
	assert.False(t, SeesCostPrice(domain.RoleCashier))
}
