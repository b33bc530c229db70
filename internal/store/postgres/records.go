package postgres

import (
	"context"
	"database/sql"
	"time"

	"retailpos/backend/internal/domain"
)

const stockRequestColumns = `id, location_id, seller_id, status, COALESCE(note, ''), COALESCE(decided_by, ''), decided_at,
	COALESCE(released_by, ''), released_at, created_at`

func scanStockRequest(row scanner) (*domain.StockRequest, error) {
	var r domain.StockRequest
	var decidedAt, releasedAt sql.NullTime
	err := row.Scan(&r.ID, &r.LocationID, &r.SellerID, &r.Status, &r.Note, &r.DecidedBy, &decidedAt,
		&r.ReleasedBy, &releasedAt, &r.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	r.DecidedAt = timePtr(decidedAt)
	r.ReleasedAt = timePtr(releasedAt)
	r.Items = []domain.StockRequestItem{}
	return &r, nil
}

func (q *queries) CreateStockRequest(ctx context.Context, req domain.StockRequest) error {
	if _, err := q.db.ExecContext(ctx, `
		INSERT INTO stock_requests (id, location_id, seller_id, status, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, req.ID, req.LocationID, req.SellerID, req.Status, nullIfEmpty(req.Note), req.CreatedAt); err != nil {
		return translate(err)
	}
	for _, item := range req.Items {
		if _, err := q.db.ExecContext(ctx, `
			INSERT INTO stock_request_items (request_id, product_id, qty_requested, qty_approved)
			VALUES ($1,$2,$3,$4)
		`, req.ID, item.ProductID, item.QtyRequested, item.QtyApproved); err != nil {
			return translate(err)
		}
	}
	return nil
}

func (q *queries) GetStockRequest(ctx context.Context, locationID string, id string) (*domain.StockRequest, error) {
	req, err := scanStockRequest(q.db.QueryRowContext(ctx, `
		SELECT `+stockRequestColumns+`
		FROM stock_requests
		WHERE location_id = $1 AND id = $2
	`, locationID, id))
	if err != nil {
		return nil, err
	}
	return req, q.attachRequestItems(ctx, []*domain.StockRequest{req})
}

func (q *queries) LockStockRequest(ctx context.Context, locationID string, id string) (*domain.StockRequest, error) {
	req, err := scanStockRequest(q.db.QueryRowContext(ctx, `
		SELECT `+stockRequestColumns+`
		FROM stock_requests
		WHERE location_id = $1 AND id = $2
		FOR UPDATE
	`, locationID, id))
	if err != nil {
		return nil, err
	}
	return req, q.attachRequestItems(ctx, []*domain.StockRequest{req})
}

func (q *queries) UpdateStockRequest(ctx context.Context, req domain.StockRequest) error {
	if err := expectOne(q.db.ExecContext(ctx, `
		UPDATE stock_requests
		SET status = $3, decided_by = $4, decided_at = $5, released_by = $6, released_at = $7
		WHERE location_id = $1 AND id = $2
	`, req.LocationID, req.ID, req.Status, nullIfEmpty(req.DecidedBy), nullTime(req.DecidedAt),
		nullIfEmpty(req.ReleasedBy), nullTime(req.ReleasedAt))); err != nil {
		return err
	}
	for _, item := range req.Items {
		if _, err := q.db.ExecContext(ctx, `
			UPDATE stock_request_items
			SET qty_approved = $3
			WHERE request_id = $1 AND product_id = $2
		`, req.ID, item.ProductID, item.QtyApproved); err != nil {
			return translate(err)
		}
	}
	return nil
}

func (q *queries) ListStockRequests(ctx context.Context, locationID string, status string, sellerID string, limit int) ([]domain.StockRequest, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+stockRequestColumns+`
		FROM stock_requests
		WHERE location_id = $1 AND ($2 = '' OR status = $2) AND ($3 = '' OR seller_id = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`, locationID, status, sellerID, limit)
	if err != nil {
		return nil, err
	}

	reqs := make([]*domain.StockRequest, 0, 16)
	for rows.Next() {
		req, err := scanStockRequest(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if err := q.attachRequestItems(ctx, reqs); err != nil {
		return nil, err
	}
	out := make([]domain.StockRequest, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, *req)
	}
	return out, nil
}

func (q *queries) attachRequestItems(ctx context.Context, reqs []*domain.StockRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(reqs))
	byID := make(map[string]*domain.StockRequest, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.ID)
		byID[req.ID] = req
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT request_id, product_id, qty_requested, qty_approved
		FROM stock_request_items
		WHERE request_id = ANY($1)
		ORDER BY request_id, product_id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var requestID string
		var item domain.StockRequestItem
		if err := rows.Scan(&requestID, &item.ProductID, &item.QtyRequested, &item.QtyApproved); err != nil {
			return err
		}
		if req, ok := byID[requestID]; ok {
			req.Items = append(req.Items, item)
		}
	}
	return rows.Err()
}

const customerColumns = `id, location_id, name, phone, COALESCE(notes, ''), created_at`

func scanCustomer(row scanner) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.LocationID, &c.Name, &c.Phone, &c.Notes, &c.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (q *queries) CreateCustomer(ctx context.Context, customer domain.Customer) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO customers (id, location_id, name, phone, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, customer.ID, customer.LocationID, customer.Name, customer.Phone, nullIfEmpty(customer.Notes), customer.CreatedAt)
	return translate(err)
}

func (q *queries) GetCustomer(ctx context.Context, locationID string, id string) (*domain.Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE location_id = $1 AND id = $2
	`, locationID, id))
}

func (q *queries) GetCustomerByPhone(ctx context.Context, locationID string, phone string) (*domain.Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE location_id = $1 AND phone = $2
	`, locationID, phone))
}

func (q *queries) SearchCustomers(ctx context.Context, locationID string, query string, limit int) ([]domain.Customer, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE location_id = $1 AND (name ILIKE '%' || $2 || '%' OR phone ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, locationID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Customer, 0, limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (q *queries) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, location_id, actor_id, actor_role, action, entity_type, entity_id, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.LocationID, entry.ActorID, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID,
		entry.Description, entry.CreatedAt)
	return err
}

func (q *queries) ListAuditLogs(ctx context.Context, locationID string, limit int) ([]domain.AuditLog, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, location_id, actor_id, actor_role, action, entity_type, entity_id, description, created_at
		FROM audit_logs
		WHERE location_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, locationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.LocationID, &entry.ActorID, &entry.ActorRole, &entry.Action,
			&entry.EntityType, &entry.EntityID, &entry.Description, &entry.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (q *queries) CreateMessage(ctx context.Context, msg domain.Message) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO messages (id, location_id, entity_type, entity_id, user_id, role, message, is_system, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, msg.ID, msg.LocationID, msg.EntityType, msg.EntityID, msg.UserID, msg.Role, msg.Message, msg.IsSystem, msg.CreatedAt)
	return translate(err)
}

func (q *queries) ListMessages(ctx context.Context, locationID string, entityType string, entityID string, limit int) ([]domain.Message, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, location_id, entity_type, entity_id, user_id, role, message, is_system, created_at
		FROM messages
		WHERE location_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at ASC, id ASC
		LIMIT $4
	`, locationID, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Message, 0, 8)
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.LocationID, &msg.EntityType, &msg.EntityID, &msg.UserID, &msg.Role,
			&msg.Message, &msg.IsSystem, &msg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (q *queries) GetPeriodTotals(ctx context.Context, locationID string, from, to time.Time) (domain.PeriodTotals, error) {
	var totals domain.PeriodTotals
	err := q.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sales WHERE location_id = $1 AND created_at >= $2 AND created_at < $3),
			(SELECT COALESCE(SUM(total_amount), 0) FROM sales WHERE location_id = $1 AND created_at >= $2 AND created_at < $3),
			(SELECT COUNT(*) FROM payments WHERE location_id = $1 AND created_at >= $2 AND created_at < $3),
			(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE location_id = $1 AND created_at >= $2 AND created_at < $3)
	`, locationID, from, to).Scan(&totals.SalesCount, &totals.SalesTotal, &totals.PaymentsCount, &totals.PaymentsTotal)
	if err != nil {
		return domain.PeriodTotals{}, err
	}
	return totals, nil
}

func (q *queries) GetDashboardSummary(ctx context.Context, locationID string, dayStart time.Time) (domain.DashboardSummary, error) {
	summary := domain.DashboardSummary{
		LocationID:    locationID,
		SalesByStatus: make(map[string]int),
	}

	if err := q.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products WHERE location_id = $1),
			(SELECT COALESCE(SUM(qty_on_hand), 0) FROM inventory_balances WHERE location_id = $1),
			(SELECT COUNT(*) FROM sales WHERE location_id = $1 AND created_at >= $2),
			(SELECT COALESCE(SUM(total_amount), 0) FROM sales WHERE location_id = $1 AND created_at >= $2 AND status = 'COMPLETED'),
			(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE location_id = $1),
			(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE location_id = $1 AND created_at >= $2),
			(SELECT COUNT(*) FROM credits WHERE location_id = $1 AND status = 'OPEN'),
			(SELECT COUNT(*) FROM stock_requests WHERE location_id = $1 AND status = 'PENDING')
	`, locationID, dayStart).Scan(
		&summary.ProductCount,
		&summary.InventoryUnits,
		&summary.SalesToday,
		&summary.CompletedToday,
		&summary.PaymentsTotal,
		&summary.PaymentsToday,
		&summary.OpenCredits,
		&summary.PendingRequests,
	); err != nil {
		return domain.DashboardSummary{}, err
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM sales
		WHERE location_id = $1
		GROUP BY status
	`, locationID)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			_ = rows.Close()
			return domain.DashboardSummary{}, err
		}
		summary.SalesByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return domain.DashboardSummary{}, err
	}
	_ = rows.Close()

	recent, err := q.ListAuditLogs(ctx, locationID, 10)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	summary.RecentActivity = recent
	return summary, nil
}
