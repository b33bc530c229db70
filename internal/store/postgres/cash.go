package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"retailpos/backend/internal/domain"
)

func (q *queries) AppendCashEntry(ctx context.Context, entry domain.CashLedgerEntry) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO cash_ledger (id, location_id, cashier_id, type, direction, amount, method, sale_id, payment_id, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, entry.ID, entry.LocationID, entry.CashierID, entry.Type, entry.Direction, entry.Amount, entry.Method,
		nullIfEmpty(entry.SaleID), nullIfEmpty(entry.PaymentID), nullIfEmpty(entry.Note), entry.CreatedAt)
	return translate(err)
}

func (q *queries) ListCashEntries(ctx context.Context, filter domain.CashEntryFilter) ([]domain.CashLedgerEntry, error) {
	where := []string{"location_id = $1"}
	args := []any{filter.LocationID}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	query := `
		SELECT id, location_id, cashier_id, type, direction, amount, method, COALESCE(sale_id, ''),
			COALESCE(payment_id, ''), COALESCE(note, ''), created_at
		FROM cash_ledger
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CashLedgerEntry, 0, 32)
	for rows.Next() {
		var e domain.CashLedgerEntry
		if err := rows.Scan(&e.ID, &e.LocationID, &e.CashierID, &e.Type, &e.Direction, &e.Amount, &e.Method,
			&e.SaleID, &e.PaymentID, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const sessionColumns = `id, location_id, cashier_id, status, opening_balance, closing_balance, opened_at, closed_at`

func scanSession(row scanner) (*domain.CashSession, error) {
	var s domain.CashSession
	var closing sql.NullInt64
	var closedAt sql.NullTime
	if err := row.Scan(&s.ID, &s.LocationID, &s.CashierID, &s.Status, &s.OpeningBalance, &closing, &s.OpenedAt, &closedAt); err != nil {
		return nil, translate(err)
	}
	if closing.Valid {
		v := closing.Int64
		s.ClosingBalance = &v
	}
	s.ClosedAt = timePtr(closedAt)
	return &s, nil
}

func (q *queries) CreateCashSession(ctx context.Context, session domain.CashSession) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO cash_sessions (id, location_id, cashier_id, status, opening_balance, opened_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, session.ID, session.LocationID, session.CashierID, session.Status, session.OpeningBalance, session.OpenedAt)
	return translate(err)
}

func (q *queries) GetOpenCashSession(ctx context.Context, locationID string, cashierID string) (*domain.CashSession, error) {
	return scanSession(q.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM cash_sessions
		WHERE location_id = $1 AND cashier_id = $2 AND status = 'OPEN'
		ORDER BY opened_at DESC
		LIMIT 1
	`, locationID, cashierID))
}

func (q *queries) GetCashSession(ctx context.Context, locationID string, id string) (*domain.CashSession, error) {
	return scanSession(q.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM cash_sessions
		WHERE location_id = $1 AND id = $2
	`, locationID, id))
}

func (q *queries) LockCashSession(ctx context.Context, locationID string, id string) (*domain.CashSession, error) {
	return scanSession(q.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM cash_sessions
		WHERE location_id = $1 AND id = $2
		FOR UPDATE
	`, locationID, id))
}

func (q *queries) UpdateCashSession(ctx context.Context, session domain.CashSession) error {
	return expectOne(q.db.ExecContext(ctx, `
		UPDATE cash_sessions
		SET status = $3, closing_balance = $4, closed_at = $5
		WHERE location_id = $1 AND id = $2
	`, session.LocationID, session.ID, session.Status, nullInt64(session.ClosingBalance), nullTime(session.ClosedAt)))
}

func (q *queries) CreateReconciliation(ctx context.Context, rec domain.CashReconciliation) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO cash_reconciliations (id, location_id, cash_session_id, cashier_id, expected_cash, counted_cash, difference, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rec.ID, rec.LocationID, rec.CashSessionID, rec.CashierID, rec.ExpectedCash, rec.CountedCash, rec.Difference,
		nullIfEmpty(rec.Note), rec.CreatedAt)
	return translate(err)
}

func (q *queries) ListReconciliations(ctx context.Context, locationID string, sessionID string) ([]domain.CashReconciliation, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, location_id, cash_session_id, cashier_id, expected_cash, counted_cash, difference, COALESCE(note, ''), created_at
		FROM cash_reconciliations
		WHERE location_id = $1 AND ($2 = '' OR cash_session_id = $2)
		ORDER BY created_at, id
	`, locationID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CashReconciliation, 0, 4)
	for rows.Next() {
		var r domain.CashReconciliation
		if err := rows.Scan(&r.ID, &r.LocationID, &r.CashSessionID, &r.CashierID, &r.ExpectedCash, &r.CountedCash,
			&r.Difference, &r.Note, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *queries) CreateDeposit(ctx context.Context, deposit domain.CashDeposit) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO cashbook_deposits (id, location_id, cash_session_id, cashier_id, method, amount, reference, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, deposit.ID, deposit.LocationID, nullIfEmpty(deposit.CashSessionID), deposit.CashierID, deposit.Method,
		deposit.Amount, nullIfEmpty(deposit.Reference), nullIfEmpty(deposit.Note), deposit.CreatedAt)
	return translate(err)
}

func (q *queries) ListDeposits(ctx context.Context, locationID string, limit int) ([]domain.CashDeposit, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, location_id, COALESCE(cash_session_id, ''), cashier_id, method, amount, COALESCE(reference, ''),
			COALESCE(note, ''), created_at
		FROM cashbook_deposits
		WHERE location_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, locationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CashDeposit, 0, 16)
	for rows.Next() {
		var d domain.CashDeposit
		if err := rows.Scan(&d.ID, &d.LocationID, &d.CashSessionID, &d.CashierID, &d.Method, &d.Amount, &d.Reference,
			&d.Note, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *queries) CreateExpense(ctx context.Context, expense domain.Expense) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO expenses (id, location_id, cash_session_id, cashier_id, category, amount, reference, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, expense.ID, expense.LocationID, nullIfEmpty(expense.CashSessionID), expense.CashierID, expense.Category,
		expense.Amount, nullIfEmpty(expense.Reference), nullIfEmpty(expense.Note), expense.CreatedAt)
	return translate(err)
}

func (q *queries) ListExpenses(ctx context.Context, locationID string, limit int) ([]domain.Expense, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, location_id, COALESCE(cash_session_id, ''), cashier_id, category, amount, COALESCE(reference, ''),
			COALESCE(note, ''), created_at
		FROM expenses
		WHERE location_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, locationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Expense, 0, 16)
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.LocationID, &e.CashSessionID, &e.CashierID, &e.Category, &e.Amount, &e.Reference,
			&e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
