package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/events"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

// manualCashTypes are the entry types a cashier may book by hand. Sale,
// refund and credit settlement entries come only from their own flows.
var manualCashTypes = map[string]bool{
	domain.CashTypePettyCashIn:    true,
	domain.CashTypePettyCashOut:   true,
	domain.CashTypeVersement:      true,
	domain.CashTypeOpeningBalance: true,
}

func (s *Service) RecordCashEntry(ctx context.Context, req domain.CashEntryRequest) (*domain.CashLedgerEntry, error) {
	entryType := strings.ToUpper(strings.TrimSpace(req.Type))
	if !manualCashTypes[entryType] {
		return nil, apperr.Newf(apperr.Forbidden, "cash entry type %q cannot be recorded manually", req.Type)
	}
	if req.Amount <= 0 {
		return nil, apperr.New(apperr.BadAmount, "amount must be positive")
	}

	method := domain.MethodCash
	if entryType == domain.CashTypeVersement {
		method = domain.MethodBank
	}
	method = strings.ToUpper(defaultString(req.Method, method))

	var created domain.CashLedgerEntry
	err := s.mutate(ctx, "cash.entry", func(m *mutation) error {
		entry, err := appendManualCash(m, entryType, req.Amount, method, strings.TrimSpace(req.Note))
		if err != nil {
			return err
		}
		created = entry

		m.emit(events.CashEntryRecorded, created)
		return m.audit("CASH_"+created.Direction, "cash_ledger", created.ID, fmt.Sprintf("Cash transaction recorded: %s %s %d", created.Type, created.Direction, created.Amount))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListLedger returns the most recent cash entries, newest first.
func (s *Service) ListLedger(ctx context.Context, limit int) ([]domain.CashLedgerEntry, error) {
	var out []domain.CashLedgerEntry
	err := s.view(ctx, "cash.ledger", func(q store.Tx, actor domain.Actor) error {
		entries, err := q.ListCashEntries(ctx, domain.CashEntryFilter{LocationID: actor.LocationID, Limit: clampLimit(limit)})
		out = entries
		return err
	})
	return out, err
}

// TodaySummary totals the cash ledger for the current UTC day.
func (s *Service) TodaySummary(ctx context.Context) (*domain.CashSummary, error) {
	from := dayStart(s.now())
	summary := &domain.CashSummary{Date: from.Format(time.DateOnly)}
	err := s.view(ctx, "cash.summary", func(q store.Tx, actor domain.Actor) error {
		entries, err := q.ListCashEntries(ctx, domain.CashEntryFilter{
			LocationID: actor.LocationID,
			From:       from,
			To:         from.Add(24 * time.Hour),
		})
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Direction == domain.DirectionOut {
				summary.CashOut += e.Amount
			} else {
				summary.CashIn += e.Amount
			}
		}
		summary.Net = summary.CashIn - summary.CashOut
		summary.Entries = len(entries)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Service) OpenSession(ctx context.Context, req domain.SessionOpenRequest) (*domain.CashSession, error) {
	if req.OpeningBalance < 0 {
		return nil, apperr.New(apperr.BadAmount, "opening balance must not be negative")
	}

	var created domain.CashSession
	err := s.mutate(ctx, "cash.session_open", func(m *mutation) error {
		_, err := m.tx.GetOpenCashSession(ctx, m.actor.LocationID, m.actor.UserID)
		if err == nil {
			return apperr.New(apperr.SessionAlreadyOpen, "you already have an open cash session")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		created = domain.CashSession{
			ID:             xid.New("session"),
			LocationID:     m.actor.LocationID,
			CashierID:      m.actor.UserID,
			Status:         domain.SessionStatusOpen,
			OpeningBalance: req.OpeningBalance,
			OpenedAt:       m.now,
		}
		if err := m.tx.CreateCashSession(ctx, created); err != nil {
			return conflict(err, apperr.SessionAlreadyOpen, "you already have an open cash session")
		}

		m.emit(events.CashSessionOpened, created)
		return m.audit("CASH_SESSION_OPEN", "cash_session", created.ID, fmt.Sprintf("Cash session opened. openingBalance=%d", created.OpeningBalance))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CloseSession closes a session. Only the cashier who opened it may close it.
func (s *Service) CloseSession(ctx context.Context, sessionID string, req domain.SessionCloseRequest) (*domain.CashSession, error) {
	if req.ClosingBalance < 0 {
		return nil, apperr.New(apperr.BadAmount, "closing balance must not be negative")
	}

	var updated domain.CashSession
	err := s.mutate(ctx, "cash.session_close", func(m *mutation) error {
		session, err := m.tx.LockCashSession(ctx, m.actor.LocationID, sessionID)
		if err != nil {
			return notFound(err, apperr.NotFound, "cash session not found")
		}
		if session.CashierID != m.actor.UserID {
			return apperr.New(apperr.Forbidden, "only the cashier who opened the session can close it")
		}
		if session.Status != domain.SessionStatusOpen {
			return apperr.WrongStatus("cash session", session.Status)
		}

		closing := req.ClosingBalance
		closedAt := m.now
		session.Status = domain.SessionStatusClosed
		session.ClosingBalance = &closing
		session.ClosedAt = &closedAt
		if err := m.tx.UpdateCashSession(ctx, *session); err != nil {
			return err
		}
		updated = *session

		m.emit(events.CashSessionClosed, updated)
		return m.audit("CASH_SESSION_CLOSE", "cash_session", session.ID, fmt.Sprintf("Cash session closed. closingBalance=%d", closing))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CurrentSession returns the caller's open session, or nil when none is open.
func (s *Service) CurrentSession(ctx context.Context) (*domain.CashSession, error) {
	var out *domain.CashSession
	err := s.view(ctx, "cash.session_current", func(q store.Tx, actor domain.Actor) error {
		session, err := q.GetOpenCashSession(ctx, actor.LocationID, actor.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		out = session
		return err
	})
	return out, err
}

func (s *Service) Reconcile(ctx context.Context, req domain.ReconcileRequest) (*domain.CashReconciliation, error) {
	if req.ExpectedCash < 0 || req.CountedCash < 0 {
		return nil, apperr.New(apperr.BadAmount, "expected and counted cash must not be negative")
	}

	var created domain.CashReconciliation
	err := s.mutate(ctx, "cash.reconcile", func(m *mutation) error {
		session, err := m.tx.GetCashSession(ctx, m.actor.LocationID, strings.TrimSpace(req.CashSessionID))
		if err != nil {
			return notFound(err, apperr.SessionNotFound, "cash session not found")
		}

		created = domain.CashReconciliation{
			ID:            xid.New("recon"),
			LocationID:    session.LocationID,
			CashSessionID: session.ID,
			CashierID:     m.actor.UserID,
			ExpectedCash:  req.ExpectedCash,
			CountedCash:   req.CountedCash,
			Difference:    req.CountedCash - req.ExpectedCash,
			Note:          strings.TrimSpace(req.Note),
			CreatedAt:     m.now,
		}
		if err := m.tx.CreateReconciliation(ctx, created); err != nil {
			return err
		}

		m.emit(events.CashReconciled, created)
		return m.audit("CASH_RECONCILE_CREATE", "cash_reconciliation", created.ID, fmt.Sprintf(
			"Reconciled session %s: expected=%d counted=%d difference=%d",
			session.ID, created.ExpectedCash, created.CountedCash, created.Difference,
		))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) ListReconciliations(ctx context.Context, sessionID string) ([]domain.CashReconciliation, error) {
	var out []domain.CashReconciliation
	err := s.view(ctx, "cash.reconciliations", func(q store.Tx, actor domain.Actor) error {
		recs, err := q.ListReconciliations(ctx, actor.LocationID, strings.TrimSpace(sessionID))
		out = recs
		return err
	})
	return out, err
}

// CreateDeposit records cash handed over to the bank and books it as a
// VERSEMENT outflow.
func (s *Service) CreateDeposit(ctx context.Context, req domain.DepositRequest) (*domain.CashDeposit, error) {
	if req.Amount <= 0 {
		return nil, apperr.New(apperr.BadAmount, "amount must be positive")
	}

	var created domain.CashDeposit
	err := s.mutate(ctx, "cash.deposit", func(m *mutation) error {
		sessionID := strings.TrimSpace(req.CashSessionID)
		if sessionID != "" {
			if _, err := m.tx.GetCashSession(ctx, m.actor.LocationID, sessionID); err != nil {
				return notFound(err, apperr.SessionNotFound, "cash session not found")
			}
		}

		created = domain.CashDeposit{
			ID:            xid.New("deposit"),
			LocationID:    m.actor.LocationID,
			CashSessionID: sessionID,
			CashierID:     m.actor.UserID,
			Method:        strings.ToUpper(defaultString(req.Method, domain.MethodBank)),
			Amount:        req.Amount,
			Reference:     strings.TrimSpace(req.Reference),
			Note:          strings.TrimSpace(req.Note),
			CreatedAt:     m.now,
		}
		if err := m.tx.CreateDeposit(ctx, created); err != nil {
			return err
		}
		entry, err := appendManualCash(m, domain.CashTypeVersement, created.Amount, created.Method, fmt.Sprintf("Deposit %s", defaultString(created.Reference, created.ID)))
		if err != nil {
			return err
		}

		m.emit(events.CashEntryRecorded, entry)
		return m.audit("CASH_DEPOSIT_CREATE", "cash_deposit", created.ID, fmt.Sprintf("Deposit %d via %s", created.Amount, created.Method))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) ListDeposits(ctx context.Context, limit int) ([]domain.CashDeposit, error) {
	var out []domain.CashDeposit
	err := s.view(ctx, "cash.deposits", func(q store.Tx, actor domain.Actor) error {
		deposits, err := q.ListDeposits(ctx, actor.LocationID, clampLimit(limit))
		out = deposits
		return err
	})
	return out, err
}

// CreateExpense records money paid out of the drawer as a PETTY_CASH_OUT entry.
func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseRequest) (*domain.Expense, error) {
	if req.Amount <= 0 {
		return nil, apperr.New(apperr.BadAmount, "amount must be positive")
	}

	var created domain.Expense
	err := s.mutate(ctx, "cash.expense", func(m *mutation) error {
		sessionID := strings.TrimSpace(req.CashSessionID)
		if sessionID != "" {
			if _, err := m.tx.GetCashSession(ctx, m.actor.LocationID, sessionID); err != nil {
				return notFound(err, apperr.SessionNotFound, "cash session not found")
			}
		}

		created = domain.Expense{
			ID:            xid.New("expense"),
			LocationID:    m.actor.LocationID,
			CashSessionID: sessionID,
			CashierID:     m.actor.UserID,
			Category:      strings.ToUpper(defaultString(req.Category, "GENERAL")),
			Amount:        req.Amount,
			Reference:     strings.TrimSpace(req.Reference),
			Note:          strings.TrimSpace(req.Note),
			CreatedAt:     m.now,
		}
		if err := m.tx.CreateExpense(ctx, created); err != nil {
			return err
		}
		entry, err := appendManualCash(m, domain.CashTypePettyCashOut, created.Amount, domain.MethodCash, fmt.Sprintf("Expense %s", created.Category))
		if err != nil {
			return err
		}

		m.emit(events.CashEntryRecorded, entry)
		return m.audit("EXPENSE_CREATE", "expense", created.ID, fmt.Sprintf("Expense %d (%s)", created.Amount, created.Category))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) ListExpenses(ctx context.Context, limit int) ([]domain.Expense, error) {
	var out []domain.Expense
	err := s.view(ctx, "cash.expenses", func(q store.Tx, actor domain.Actor) error {
		expenses, err := q.ListExpenses(ctx, actor.LocationID, clampLimit(limit))
		out = expenses
		return err
	})
	return out, err
}

func appendManualCash(m *mutation, entryType string, amount int64, method, note string) (domain.CashLedgerEntry, error) {
	entry := domain.CashLedgerEntry{
		ID:         xid.New("cash"),
		LocationID: m.actor.LocationID,
		CashierID:  m.actor.UserID,
		Type:       entryType,
		Direction:  domain.CashDirection(entryType),
		Amount:     amount,
		Method:     method,
		Note:       note,
		CreatedAt:  m.now,
	}
	return entry, m.tx.AppendCashEntry(m.ctx, entry)
}
