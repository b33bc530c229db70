package postgres

import (
	"context"
	"database/sql"

	"retailpos/backend/internal/domain"
)

const saleColumns = `id, location_id, seller_id, COALESCE(customer_id, ''), status, subtotal, discount_percent,
	discount_amount, total_amount, COALESCE(note, ''), canceled_at, COALESCE(canceled_by, ''),
	COALESCE(cancel_reason, ''), created_at, updated_at`

func scanSale(row scanner) (*domain.Sale, error) {
	var s domain.Sale
	var canceledAt sql.NullTime
	err := row.Scan(&s.ID, &s.LocationID, &s.SellerID, &s.CustomerID, &s.Status, &s.Subtotal, &s.DiscountPercent,
		&s.DiscountAmount, &s.TotalAmount, &s.Note, &canceledAt, &s.CanceledBy, &s.CancelReason, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	s.CanceledAt = timePtr(canceledAt)
	s.Items = []domain.SaleItem{}
	return &s, nil
}

func (q *queries) CreateSale(ctx context.Context, sale domain.Sale) error {
	if _, err := q.db.ExecContext(ctx, `
		INSERT INTO sales (id, location_id, seller_id, customer_id, status, subtotal, discount_percent,
			discount_amount, total_amount, note, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, sale.ID, sale.LocationID, sale.SellerID, nullIfEmpty(sale.CustomerID), sale.Status, sale.Subtotal,
		sale.DiscountPercent, sale.DiscountAmount, sale.TotalAmount, nullIfEmpty(sale.Note), sale.CreatedAt,
		sale.UpdatedAt); err != nil {
		return translate(err)
	}

	for i, item := range sale.Items {
		if _, err := q.db.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, line_no, product_id, qty, unit_price, discount_percent, discount_amount, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, sale.ID, i+1, item.ProductID, item.Qty, item.UnitPrice, item.DiscountPercent, item.DiscountAmount,
			item.LineTotal); err != nil {
			return translate(err)
		}
	}
	return nil
}

func (q *queries) GetSale(ctx context.Context, locationID string, id string) (*domain.Sale, error) {
	sale, err := scanSale(q.db.QueryRowContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE location_id = $1 AND id = $2
	`, locationID, id))
	if err != nil {
		return nil, err
	}
	if err := q.attachSaleItems(ctx, []*domain.Sale{sale}); err != nil {
		return nil, err
	}
	return sale, nil
}

func (q *queries) LockSale(ctx context.Context, locationID string, id string) (*domain.Sale, error) {
	sale, err := scanSale(q.db.QueryRowContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE location_id = $1 AND id = $2
		FOR UPDATE
	`, locationID, id))
	if err != nil {
		return nil, err
	}
	if err := q.attachSaleItems(ctx, []*domain.Sale{sale}); err != nil {
		return nil, err
	}
	return sale, nil
}

func (q *queries) UpdateSale(ctx context.Context, sale domain.Sale) error {
	return expectOne(q.db.ExecContext(ctx, `
		UPDATE sales
		SET status = $3, customer_id = $4, subtotal = $5, discount_percent = $6, discount_amount = $7,
		    total_amount = $8, note = $9, canceled_at = $10, canceled_by = $11, cancel_reason = $12, updated_at = $13
		WHERE location_id = $1 AND id = $2
	`, sale.LocationID, sale.ID, sale.Status, nullIfEmpty(sale.CustomerID), sale.Subtotal, sale.DiscountPercent,
		sale.DiscountAmount, sale.TotalAmount, nullIfEmpty(sale.Note), nullTime(sale.CanceledAt),
		nullIfEmpty(sale.CanceledBy), nullIfEmpty(sale.CancelReason), sale.UpdatedAt))
}

func (q *queries) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE location_id = $1 AND ($2 = '' OR status = $2) AND ($3 = '' OR seller_id = $3)
		  AND ($4 = '' OR customer_id = $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5
	`, filter.LocationID, filter.Status, filter.SellerID, filter.CustomerID, filter.Limit)
	if err != nil {
		return nil, err
	}

	sales := make([]*domain.Sale, 0, 16)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if err := q.attachSaleItems(ctx, sales); err != nil {
		return nil, err
	}
	out := make([]domain.Sale, 0, len(sales))
	for _, sale := range sales {
		out = append(out, *sale)
	}
	return out, nil
}

func (q *queries) attachSaleItems(ctx context.Context, sales []*domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, 0, len(sales))
	byID := make(map[string]*domain.Sale, len(sales))
	for _, sale := range sales {
		ids = append(ids, sale.ID)
		byID[sale.ID] = sale
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT sale_id, product_id, qty, unit_price, discount_percent, discount_amount, line_total
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, line_no
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var saleID string
		var item domain.SaleItem
		if err := rows.Scan(&saleID, &item.ProductID, &item.Qty, &item.UnitPrice, &item.DiscountPercent,
			&item.DiscountAmount, &item.LineTotal); err != nil {
			return err
		}
		if sale, ok := byID[saleID]; ok {
			sale.Items = append(sale.Items, item)
		}
	}
	return rows.Err()
}

const paymentColumns = `id, location_id, sale_id, cashier_id, COALESCE(cash_session_id, ''), amount, method, COALESCE(note, ''), created_at`

func scanPayment(row scanner) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.LocationID, &p.SaleID, &p.CashierID, &p.CashSessionID, &p.Amount, &p.Method, &p.Note, &p.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (q *queries) CreatePayment(ctx context.Context, payment domain.Payment) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO payments (id, location_id, sale_id, cashier_id, cash_session_id, amount, method, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, payment.ID, payment.LocationID, payment.SaleID, payment.CashierID, nullIfEmpty(payment.CashSessionID),
		payment.Amount, payment.Method, nullIfEmpty(payment.Note), payment.CreatedAt)
	return translate(err)
}

func (q *queries) GetPaymentBySale(ctx context.Context, locationID string, saleID string) (*domain.Payment, error) {
	return scanPayment(q.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE location_id = $1 AND sale_id = $2
	`, locationID, saleID))
}

func (q *queries) ListPayments(ctx context.Context, locationID string, limit int) ([]domain.Payment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE location_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, locationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Payment, 0, 16)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (q *queries) CreateRefund(ctx context.Context, refund domain.Refund) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO refunds (id, location_id, sale_id, amount, reason, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, refund.ID, refund.LocationID, refund.SaleID, refund.Amount, nullIfEmpty(refund.Reason), refund.CreatedBy, refund.CreatedAt)
	return translate(err)
}

func (q *queries) GetRefundBySale(ctx context.Context, locationID string, saleID string) (*domain.Refund, error) {
	var r domain.Refund
	err := q.db.QueryRowContext(ctx, `
		SELECT id, location_id, sale_id, amount, COALESCE(reason, ''), created_by, created_at
		FROM refunds
		WHERE location_id = $1 AND sale_id = $2
	`, locationID, saleID).Scan(&r.ID, &r.LocationID, &r.SaleID, &r.Amount, &r.Reason, &r.CreatedBy, &r.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

const creditColumns = `id, location_id, sale_id, COALESCE(customer_id, ''), amount, status, COALESCE(note, ''), created_by,
	created_at, COALESCE(approved_by, ''), approved_at, COALESCE(settled_by, ''), settled_at`

func scanCredit(row scanner) (*domain.Credit, error) {
	var c domain.Credit
	var approvedAt, settledAt sql.NullTime
	err := row.Scan(&c.ID, &c.LocationID, &c.SaleID, &c.CustomerID, &c.Amount, &c.Status, &c.Note, &c.CreatedBy,
		&c.CreatedAt, &c.ApprovedBy, &approvedAt, &c.SettledBy, &settledAt)
	if err != nil {
		return nil, translate(err)
	}
	c.ApprovedAt = timePtr(approvedAt)
	c.SettledAt = timePtr(settledAt)
	return &c, nil
}

func (q *queries) CreateCredit(ctx context.Context, credit domain.Credit) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO credits (id, location_id, sale_id, customer_id, amount, status, note, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, credit.ID, credit.LocationID, credit.SaleID, nullIfEmpty(credit.CustomerID), credit.Amount, credit.Status,
		nullIfEmpty(credit.Note), credit.CreatedBy, credit.CreatedAt)
	return translate(err)
}

func (q *queries) GetCreditBySale(ctx context.Context, locationID string, saleID string) (*domain.Credit, error) {
	return scanCredit(q.db.QueryRowContext(ctx, `
		SELECT `+creditColumns+`
		FROM credits
		WHERE location_id = $1 AND sale_id = $2
	`, locationID, saleID))
}

func (q *queries) LockCredit(ctx context.Context, locationID string, id string) (*domain.Credit, error) {
	return scanCredit(q.db.QueryRowContext(ctx, `
		SELECT `+creditColumns+`
		FROM credits
		WHERE location_id = $1 AND id = $2
		FOR UPDATE
	`, locationID, id))
}

func (q *queries) UpdateCredit(ctx context.Context, credit domain.Credit) error {
	return expectOne(q.db.ExecContext(ctx, `
		UPDATE credits
		SET status = $3, note = $4, approved_by = $5, approved_at = $6, settled_by = $7, settled_at = $8
		WHERE location_id = $1 AND id = $2
	`, credit.LocationID, credit.ID, credit.Status, nullIfEmpty(credit.Note), nullIfEmpty(credit.ApprovedBy),
		nullTime(credit.ApprovedAt), nullIfEmpty(credit.SettledBy), nullTime(credit.SettledAt)))
}

func (q *queries) ListCredits(ctx context.Context, locationID string, status string, limit int) ([]domain.Credit, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+creditColumns+`
		FROM credits
		WHERE location_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, locationID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Credit, 0, 16)
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
