package postgres

import (
	"context"
	"database/sql"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

const productColumns = `id, location_id, name, sku, unit, selling_price, cost_price, max_discount_percent, is_active, created_at, updated_at`

func scanProduct(row scanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.LocationID, &p.Name, &p.SKU, &p.Unit, &p.SellingPrice, &p.CostPrice,
		&p.MaxDiscountPercent, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (q *queries) CreateProduct(ctx context.Context, product domain.Product) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, product.ID, product.LocationID, product.Name, product.SKU, product.Unit, product.SellingPrice,
		product.CostPrice, product.MaxDiscountPercent, product.IsActive, product.CreatedAt, product.UpdatedAt)
	return translate(err)
}

func (q *queries) GetProduct(ctx context.Context, locationID string, productID string) (*domain.Product, error) {
	return scanProduct(q.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE location_id = $1 AND id = $2
	`, locationID, productID))
}

func (q *queries) GetProductBySKU(ctx context.Context, locationID string, sku string) (*domain.Product, error) {
	return scanProduct(q.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE location_id = $1 AND lower(sku) = lower($2)
	`, locationID, sku))
}

func (q *queries) UpdateProduct(ctx context.Context, product domain.Product) error {
	return expectOne(q.db.ExecContext(ctx, `
		UPDATE products
		SET name = $3, unit = $4, selling_price = $5, cost_price = $6, max_discount_percent = $7,
		    is_active = $8, updated_at = $9
		WHERE location_id = $1 AND id = $2
	`, product.LocationID, product.ID, product.Name, product.Unit, product.SellingPrice, product.CostPrice,
		product.MaxDiscountPercent, product.IsActive, product.UpdatedAt))
}

func (q *queries) ListProducts(ctx context.Context, locationID string) ([]domain.Product, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE location_id = $1
		ORDER BY created_at, id
	`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// LockInventoryBalance creates a zero row on first touch so that the row lock
// always has something to hold.
func (q *queries) LockInventoryBalance(ctx context.Context, locationID string, productID string) (int, error) {
	if _, err := q.db.ExecContext(ctx, `
		INSERT INTO inventory_balances (location_id, product_id, qty_on_hand, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (location_id, product_id) DO NOTHING
	`, locationID, productID); err != nil {
		return 0, translate(err)
	}

	var qty int
	err := q.db.QueryRowContext(ctx, `
		SELECT qty_on_hand
		FROM inventory_balances
		WHERE location_id = $1 AND product_id = $2
		FOR UPDATE
	`, locationID, productID).Scan(&qty)
	return qty, translate(err)
}

func (q *queries) SetInventoryBalance(ctx context.Context, locationID string, productID string, qty int) error {
	if qty < 0 {
		return store.ErrConflict
	}
	return expectOne(q.db.ExecContext(ctx, `
		UPDATE inventory_balances
		SET qty_on_hand = $3, updated_at = now()
		WHERE location_id = $1 AND product_id = $2
	`, locationID, productID, qty))
}

func (q *queries) LockSellerHolding(ctx context.Context, locationID string, sellerID string, productID string) (int, error) {
	if _, err := q.db.ExecContext(ctx, `
		INSERT INTO seller_holdings (location_id, seller_id, product_id, qty_on_hand, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (location_id, seller_id, product_id) DO NOTHING
	`, locationID, sellerID, productID); err != nil {
		return 0, translate(err)
	}

	var qty int
	err := q.db.QueryRowContext(ctx, `
		SELECT qty_on_hand
		FROM seller_holdings
		WHERE location_id = $1 AND seller_id = $2 AND product_id = $3
		FOR UPDATE
	`, locationID, sellerID, productID).Scan(&qty)
	return qty, translate(err)
}

func (q *queries) SetSellerHolding(ctx context.Context, locationID string, sellerID string, productID string, qty int) error {
	if qty < 0 {
		return store.ErrConflict
	}
	return expectOne(q.db.ExecContext(ctx, `
		UPDATE seller_holdings
		SET qty_on_hand = $4, updated_at = now()
		WHERE location_id = $1 AND seller_id = $2 AND product_id = $3
	`, locationID, sellerID, productID, qty))
}

func (q *queries) ListInventoryBalances(ctx context.Context, locationID string) ([]domain.InventoryBalance, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT b.location_id, b.product_id, COALESCE(p.name, ''), b.qty_on_hand, b.updated_at
		FROM inventory_balances b
		LEFT JOIN products p ON p.id = b.product_id
		WHERE b.location_id = $1
		ORDER BY p.name, b.product_id
	`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.InventoryBalance, 0, 64)
	for rows.Next() {
		var b domain.InventoryBalance
		if err := rows.Scan(&b.LocationID, &b.ProductID, &b.ProductName, &b.QtyOnHand, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *queries) ListSellerHoldings(ctx context.Context, locationID string, sellerID string) ([]domain.SellerHolding, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT h.location_id, h.seller_id, h.product_id, COALESCE(p.name, ''), h.qty_on_hand, h.updated_at
		FROM seller_holdings h
		LEFT JOIN products p ON p.id = h.product_id
		WHERE h.location_id = $1 AND ($2 = '' OR h.seller_id = $2)
		ORDER BY h.seller_id, p.name, h.product_id
	`, locationID, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SellerHolding, 0, 16)
	for rows.Next() {
		var h domain.SellerHolding
		if err := rows.Scan(&h.LocationID, &h.SellerID, &h.ProductID, &h.ProductName, &h.QtyOnHand, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (q *queries) CreateArrival(ctx context.Context, arrival domain.InventoryArrival) error {
	if _, err := q.db.ExecContext(ctx, `
		INSERT INTO inventory_arrivals (id, location_id, product_id, qty_received, notes, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, arrival.ID, arrival.LocationID, arrival.ProductID, arrival.QtyReceived, nullIfEmpty(arrival.Notes),
		arrival.CreatedBy, arrival.CreatedAt); err != nil {
		return translate(err)
	}

	for _, doc := range arrival.Documents {
		docID := doc.ID
		if docID == "" {
			docID = xid.New("doc")
		}
		if _, err := q.db.ExecContext(ctx, `
			INSERT INTO inventory_arrival_documents (id, arrival_id, file_url, uploaded_at)
			VALUES ($1,$2,$3,$4)
		`, docID, arrival.ID, doc.FileURL, doc.UploadedAt); err != nil {
			return translate(err)
		}
	}
	return nil
}

func (q *queries) ListArrivals(ctx context.Context, locationID string, limit int) ([]domain.InventoryArrival, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, location_id, product_id, qty_received, COALESCE(notes, ''), created_by, created_at
		FROM inventory_arrivals
		WHERE location_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, locationID, limit)
	if err != nil {
		return nil, err
	}

	arrivals := make([]domain.InventoryArrival, 0, limit)
	ids := make([]string, 0, limit)
	for rows.Next() {
		var a domain.InventoryArrival
		if err := rows.Scan(&a.ID, &a.LocationID, &a.ProductID, &a.QtyReceived, &a.Notes, &a.CreatedBy, &a.CreatedAt); err != nil {
			_ = rows.Close()
			return nil, err
		}
		a.Documents = []domain.ArrivalDocument{}
		arrivals = append(arrivals, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()
	if len(ids) == 0 {
		return arrivals, nil
	}

	docRows, err := q.db.QueryContext(ctx, `
		SELECT arrival_id, id, file_url, uploaded_at
		FROM inventory_arrival_documents
		WHERE arrival_id = ANY($1)
		ORDER BY uploaded_at, id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer docRows.Close()

	docs := make(map[string][]domain.ArrivalDocument, len(ids))
	for docRows.Next() {
		var arrivalID string
		var doc domain.ArrivalDocument
		if err := docRows.Scan(&arrivalID, &doc.ID, &doc.FileURL, &doc.UploadedAt); err != nil {
			return nil, err
		}
		docs[arrivalID] = append(docs[arrivalID], doc)
	}
	if err := docRows.Err(); err != nil {
		return nil, err
	}
	for i := range arrivals {
		if d, ok := docs[arrivals[i].ID]; ok {
			arrivals[i].Documents = d
		}
	}
	return arrivals, nil
}

const adjustmentColumns = `id, location_id, product_id, qty_change, reason, status, requested_by, COALESCE(decided_by, ''), decided_at, created_at`

func scanAdjustment(row scanner) (*domain.AdjustmentRequest, error) {
	var req domain.AdjustmentRequest
	var decidedAt sql.NullTime
	err := row.Scan(&req.ID, &req.LocationID, &req.ProductID, &req.QtyChange, &req.Reason, &req.Status,
		&req.RequestedBy, &req.DecidedBy, &decidedAt, &req.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	req.DecidedAt = timePtr(decidedAt)
	return &req, nil
}

func (q *queries) CreateAdjustmentRequest(ctx context.Context, req domain.AdjustmentRequest) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO inventory_adjustment_requests (id, location_id, product_id, qty_change, reason, status, requested_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, req.ID, req.LocationID, req.ProductID, req.QtyChange, req.Reason, req.Status, req.RequestedBy, req.CreatedAt)
	return translate(err)
}

func (q *queries) LockAdjustmentRequest(ctx context.Context, locationID string, id string) (*domain.AdjustmentRequest, error) {
	return scanAdjustment(q.db.QueryRowContext(ctx, `
		SELECT `+adjustmentColumns+`
		FROM inventory_adjustment_requests
		WHERE location_id = $1 AND id = $2
		FOR UPDATE
	`, locationID, id))
}

func (q *queries) UpdateAdjustmentRequest(ctx context.Context, req domain.AdjustmentRequest) error {
	return expectOne(q.db.ExecContext(ctx, `
		UPDATE inventory_adjustment_requests
		SET status = $3, decided_by = $4, decided_at = $5
		WHERE location_id = $1 AND id = $2
	`, req.LocationID, req.ID, req.Status, nullIfEmpty(req.DecidedBy), nullTime(req.DecidedAt)))
}

func (q *queries) ListAdjustmentRequests(ctx context.Context, locationID string, status string, limit int) ([]domain.AdjustmentRequest, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+adjustmentColumns+`
		FROM inventory_adjustment_requests
		WHERE location_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, locationID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.AdjustmentRequest, 0, 16)
	for rows.Next() {
		req, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}
