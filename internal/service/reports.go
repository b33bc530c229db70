package service

import (
	"context"
	"strings"
	"time"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/money"
	"retailpos/backend/internal/store"
)

const (
	reportInventoryLimit = 50
	reportHoldingsLimit  = 100
	monthLayout          = "2006-01"
)

// Report summarises sales and payments created in one period. start is a
// YYYY-MM-DD day for daily and weekly reports and a YYYY-MM month for
// monthly ones; empty means the current day or month.
func (s *Service) Report(ctx context.Context, period string, start string) (*domain.PeriodReport, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	from, to, err := periodRange(period, strings.TrimSpace(start), s.now())
	if err != nil {
		return nil, err
	}

	report := domain.PeriodReport{Period: period, From: from, To: to}
	err = s.view(ctx, "report.view", func(q store.Tx, actor domain.Actor) error {
		report.LocationID = actor.LocationID
		totals, err := q.GetPeriodTotals(ctx, actor.LocationID, from, to)
		if err != nil {
			return err
		}
		report.Totals = totals
		if period != domain.PeriodDaily {
			return nil
		}

		if report.Inventory, err = inventoryValuation(ctx, q, actor.LocationID); err != nil {
			return err
		}
		holdings, err := q.ListSellerHoldings(ctx, actor.LocationID, "")
		if err != nil {
			return err
		}
		if len(holdings) > reportHoldingsLimit {
			holdings = holdings[:reportHoldingsLimit]
		}
		report.Holdings = holdings
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.GeneratedAt = s.now()
	return &report, nil
}

func periodRange(period, start string, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case domain.PeriodDaily, domain.PeriodWeekly:
		day := dayStart(now)
		if start != "" {
			parsed, err := time.Parse(time.DateOnly, start)
			if err != nil {
				return time.Time{}, time.Time{}, apperr.Newf(apperr.Invalid, "date %q must be YYYY-MM-DD", start)
			}
			day = parsed
		}
		if period == domain.PeriodDaily {
			return day, day.AddDate(0, 0, 1), nil
		}
		return day, day.AddDate(0, 0, 7), nil
	case domain.PeriodMonthly:
		now = now.UTC()
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		if start != "" {
			parsed, err := time.Parse(monthLayout, start)
			if err != nil {
				return time.Time{}, time.Time{}, apperr.Newf(apperr.Invalid, "month %q must be YYYY-MM", start)
			}
			month = parsed
		}
		return month, month.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, apperr.New(apperr.Invalid, "period must be daily, weekly or monthly")
	}
}

// inventoryValuation values warehouse stock at cost and at selling price.
func inventoryValuation(ctx context.Context, q store.Tx, locationID string) ([]domain.InventoryValuation, error) {
	products, err := q.ListProducts(ctx, locationID)
	if err != nil {
		return nil, err
	}
	balances, err := q.ListInventoryBalances(ctx, locationID)
	if err != nil {
		return nil, err
	}
	onHand := make(map[string]int, len(balances))
	for _, b := range balances {
		onHand[b.ProductID] = b.QtyOnHand
	}

	out := make([]domain.InventoryValuation, 0, min(len(products), reportInventoryLimit))
	for _, p := range products {
		if len(out) == reportInventoryLimit {
			break
		}
		qty := onHand[p.ID]
		atCost, err := money.ComputeLine(qty, p.CostPrice, 0, 0)
		if err != nil {
			return nil, err
		}
		atSell, err := money.ComputeLine(qty, p.SellingPrice, 0, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.InventoryValuation{
			ProductID:      p.ID,
			Name:           p.Name,
			SKU:            p.SKU,
			Unit:           p.Unit,
			CostPrice:      p.CostPrice,
			SellingPrice:   p.SellingPrice,
			QtyOnHand:      qty,
			StockValueCost: atCost.Total,
			StockValueSell: atSell.Total,
		})
	}
	return out, nil
}
