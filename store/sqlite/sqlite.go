/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements trading.TxStore (which embeds ledger.Store) using SQLite.
  This is the production store of the distributor application: one local
  database file, one writer at a time.

KEY TABLES:
  items:        tradeable goods with opening and current stock
  accounts:     customers and suppliers with opening and current balance
  movements:    committed stock effects, tagged by transaction reference
  entries:      committed balance effects, tagged by transaction reference
  transactions: purchase/sale/bill headers with their lines as JSON

DECIMAL STORAGE:
  All quantities and amounts are stored as decimal strings, never as REAL.
  Dates are RFC3339 UTC strings; lexicographic comparison matches
  chronological order for the values this schema writes.

CONCURRENCY:
  sync.RWMutex around the connection. WithTx holds the write lock for the
  whole unit of work and routes every read and write through the same
  sql.Tx, so a unit of work observes its own uncommitted reversals.

WAL MODE:
  The database is opened with WAL so report reads don't block the writer.

MIGRATION:
  Schema is auto-migrated on New(). Use ":memory:" for a throwaway
  database in tests.

SEE ALSO:
  - ledger/store.go:  interface definitions
  - store/memory.go:  in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/ledger"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/trading"
)

// Store implements trading.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
	c  conn
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, c: conn{db: db}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		opening_stock TEXT NOT NULL,
		current_stock TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		phone TEXT,
		address TEXT,
		opening_balance TEXT NOT NULL,
		current_balance TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_kind ON accounts(kind);

	-- Committed stock effects. Exactly one row per (ref, item_id).
	CREATE TABLE IF NOT EXISTS movements (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		ref TEXT NOT NULL,
		quantity TEXT NOT NULL,
		date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_ref ON movements(ref);
	CREATE INDEX IF NOT EXISTS idx_movements_item_date ON movements(item_id, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_movements_ref_item ON movements(ref, item_id);

	-- Committed balance effects. seq is the global insertion order; report
	-- consumers depend on (date, seq) being a stable sort key.
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		ref TEXT NOT NULL,
		date TEXT NOT NULL,
		debit TEXT NOT NULL,
		credit TEXT NOT NULL,
		description TEXT,
		seq INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_ref ON entries(ref);
	CREATE INDEX IF NOT EXISTS idx_entries_account_date ON entries(account_id, date, seq);

	CREATE TABLE IF NOT EXISTS transactions (
		ref TEXT PRIMARY KEY,
		number INTEGER NOT NULL,
		kind TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		party_account_id TEXT NOT NULL,
		supplier_id TEXT,
		vehicle_no TEXT,
		lines_json TEXT NOT NULL,
		concession_amount TEXT NOT NULL,
		cash_paid TEXT NOT NULL,
		cash_received TEXT NOT NULL,
		receipt_amount TEXT NOT NULL,
		bill_json TEXT,
		period_from TEXT,
		period_to TEXT,
		previous_balance TEXT NOT NULL,
		totals_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_kind_number
		ON transactions(kind, number);
	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
	CREATE INDEX IF NOT EXISTS idx_transactions_party ON transactions(party_account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_supplier
		ON transactions(supplier_id) WHERE supplier_id != '';
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOCKED DELEGATES (trading.Store on the shared connection)
// =============================================================================

func (s *Store) GetItem(ctx context.Context, id ledger.ItemID) (*ledger.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.GetItem(ctx, id)
}

func (s *Store) SaveItem(ctx context.Context, item ledger.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SaveItem(ctx, item)
}

func (s *Store) ListItems(ctx context.Context) ([]ledger.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.ListItems(ctx)
}

func (s *Store) AdjustItemStock(ctx context.Context, id ledger.ItemID, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.AdjustItemStock(ctx, id, delta)
}

func (s *Store) GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.GetAccount(ctx, id)
}

func (s *Store) SaveAccount(ctx context.Context, account ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SaveAccount(ctx, account)
}

func (s *Store) ListAccounts(ctx context.Context, kind ledger.AccountKind) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.ListAccounts(ctx, kind)
}

func (s *Store) AdjustAccountBalance(ctx context.Context, id ledger.AccountID, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.AdjustAccountBalance(ctx, id, delta)
}

func (s *Store) AppendMovements(ctx context.Context, movements []ledger.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.AppendMovements(ctx, movements)
}

func (s *Store) MovementsByRef(ctx context.Context, ref ledger.TxRef) ([]ledger.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.MovementsByRef(ctx, ref)
}

func (s *Store) MovementsByItem(ctx context.Context, id ledger.ItemID, from, to time.Time) ([]ledger.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.MovementsByItem(ctx, id, from, to)
}

func (s *Store) DeleteMovementsByRef(ctx context.Context, ref ledger.TxRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteMovementsByRef(ctx, ref)
}

func (s *Store) AppendEntries(ctx context.Context, entries []ledger.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.AppendEntries(ctx, entries)
}

func (s *Store) EntriesByRef(ctx context.Context, ref ledger.TxRef) ([]ledger.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.EntriesByRef(ctx, ref)
}

func (s *Store) EntriesByAccount(ctx context.Context, id ledger.AccountID, from, to time.Time) ([]ledger.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.EntriesByAccount(ctx, id, from, to)
}

func (s *Store) DeleteEntriesByRef(ctx context.Context, ref ledger.TxRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteEntriesByRef(ctx, ref)
}

func (s *Store) GetTransaction(ctx context.Context, ref ledger.TxRef) (*trading.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.GetTransaction(ctx, ref)
}

func (s *Store) SaveTransaction(ctx context.Context, tx *trading.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SaveTransaction(ctx, tx)
}

func (s *Store) DeleteTransaction(ctx context.Context, ref ledger.TxRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteTransaction(ctx, ref)
}

func (s *Store) ListTransactions(ctx context.Context, f trading.Filter) ([]trading.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.ListTransactions(ctx, f)
}

func (s *Store) NextNumber(ctx context.Context, kind trading.Kind) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.NextNumber(ctx, kind)
}

// =============================================================================
// UNIT OF WORK (trading.TxStore)
// =============================================================================

// WithTx executes fn within one database transaction. Reads inside fn go
// through the same sql.Tx, so fn observes its own uncommitted writes - the
// reverse-then-reapply sequence depends on that.
func (s *Store) WithTx(ctx context.Context, fn func(trading.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&conn{db: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// =============================================================================
// CONNECTION - Unlocked implementation shared by Store and WithTx
// =============================================================================

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn carries no locking of its own; the owning Store serializes access.
type conn struct {
	db dbtx
}

// ---- items ----

func (c *conn) GetItem(ctx context.Context, id ledger.ItemID) (*ledger.Item, error) {
	var item ledger.Item
	var opening, current, createdAt string

	err := c.db.QueryRowContext(ctx,
		"SELECT id, name, opening_stock, current_stock, created_at FROM items WHERE id = ?",
		string(id),
	).Scan(&item.ID, &item.Name, &opening, &current, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	item.OpeningStock = ledger.MustParseDecimal(opening)
	item.CurrentStock = ledger.MustParseDecimal(current)
	item.CreatedAt = parseTime(createdAt)
	return &item, nil
}

func (c *conn) SaveItem(ctx context.Context, item ledger.Item) error {
	query := `
		INSERT INTO items (id, name, opening_stock, current_stock, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			opening_stock = excluded.opening_stock,
			current_stock = excluded.current_stock
	`
	_, err := c.db.ExecContext(ctx, query,
		string(item.ID), item.Name,
		item.OpeningStock.String(), item.CurrentStock.String(),
		fmtTime(item.CreatedAt),
	)
	return err
}

func (c *conn) ListItems(ctx context.Context) ([]ledger.Item, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, name, opening_stock, current_stock, created_at FROM items ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ledger.Item
	for rows.Next() {
		var item ledger.Item
		var opening, current, createdAt string
		if err := rows.Scan(&item.ID, &item.Name, &opening, &current, &createdAt); err != nil {
			return nil, err
		}
		item.OpeningStock = ledger.MustParseDecimal(opening)
		item.CurrentStock = ledger.MustParseDecimal(current)
		item.CreatedAt = parseTime(createdAt)
		items = append(items, item)
	}
	return items, rows.Err()
}

// AdjustItemStock is read-modify-write because decimals are stored as text.
// The owning Store (or the enclosing sql.Tx) serializes callers.
func (c *conn) AdjustItemStock(ctx context.Context, id ledger.ItemID, delta decimal.Decimal) error {
	var current string
	err := c.db.QueryRowContext(ctx,
		"SELECT current_stock FROM items WHERE id = ?", string(id),
	).Scan(&current)
	if err == sql.ErrNoRows {
		return ledger.ErrItemNotFound
	}
	if err != nil {
		return err
	}

	next := ledger.MustParseDecimal(current).Add(delta)
	_, err = c.db.ExecContext(ctx,
		"UPDATE items SET current_stock = ? WHERE id = ?",
		next.String(), string(id),
	)
	return err
}

// ---- accounts ----

func (c *conn) GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	var account ledger.Account
	var opening, current, createdAt string

	err := c.db.QueryRowContext(ctx,
		`SELECT id, name, kind, phone, address, opening_balance, current_balance, created_at
		 FROM accounts WHERE id = ?`,
		string(id),
	).Scan(&account.ID, &account.Name, &account.Kind, &account.Phone, &account.Address,
		&opening, &current, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	account.OpeningBalance = ledger.MustParseDecimal(opening)
	account.CurrentBalance = ledger.MustParseDecimal(current)
	account.CreatedAt = parseTime(createdAt)
	return &account, nil
}

func (c *conn) SaveAccount(ctx context.Context, account ledger.Account) error {
	query := `
		INSERT INTO accounts (id, name, kind, phone, address, opening_balance, current_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			phone = excluded.phone,
			address = excluded.address,
			opening_balance = excluded.opening_balance,
			current_balance = excluded.current_balance
	`
	_, err := c.db.ExecContext(ctx, query,
		string(account.ID), account.Name, string(account.Kind),
		account.Phone, account.Address,
		account.OpeningBalance.String(), account.CurrentBalance.String(),
		fmtTime(account.CreatedAt),
	)
	return err
}

func (c *conn) ListAccounts(ctx context.Context, kind ledger.AccountKind) ([]ledger.Account, error) {
	query := `SELECT id, name, kind, phone, address, opening_balance, current_balance, created_at
		 FROM accounts`
	var args []any
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY name"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var account ledger.Account
		var opening, current, createdAt string
		if err := rows.Scan(&account.ID, &account.Name, &account.Kind, &account.Phone,
			&account.Address, &opening, &current, &createdAt); err != nil {
			return nil, err
		}
		account.OpeningBalance = ledger.MustParseDecimal(opening)
		account.CurrentBalance = ledger.MustParseDecimal(current)
		account.CreatedAt = parseTime(createdAt)
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (c *conn) AdjustAccountBalance(ctx context.Context, id ledger.AccountID, delta decimal.Decimal) error {
	var current string
	err := c.db.QueryRowContext(ctx,
		"SELECT current_balance FROM accounts WHERE id = ?", string(id),
	).Scan(&current)
	if err == sql.ErrNoRows {
		return ledger.ErrAccountNotFound
	}
	if err != nil {
		return err
	}

	next := ledger.MustParseDecimal(current).Add(delta)
	_, err = c.db.ExecContext(ctx,
		"UPDATE accounts SET current_balance = ? WHERE id = ?",
		next.String(), string(id),
	)
	return err
}

// ---- stock movements ----

func (c *conn) AppendMovements(ctx context.Context, movements []ledger.StockMovement) error {
	query := `
		INSERT INTO movements (id, item_id, ref, quantity, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, m := range movements {
		_, err := c.db.ExecContext(ctx, query,
			m.ID, string(m.ItemID), string(m.Ref),
			m.Quantity.String(), fmtTime(m.Date), fmtTime(m.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to append movement: %w", err)
		}
	}
	return nil
}

func (c *conn) MovementsByRef(ctx context.Context, ref ledger.TxRef) ([]ledger.StockMovement, error) {
	return c.queryMovements(ctx, `
		SELECT id, item_id, ref, quantity, date, created_at
		FROM movements WHERE ref = ?
		ORDER BY date ASC, created_at ASC
	`, string(ref))
}

func (c *conn) MovementsByItem(ctx context.Context, id ledger.ItemID, from, to time.Time) ([]ledger.StockMovement, error) {
	return c.queryMovements(ctx, `
		SELECT id, item_id, ref, quantity, date, created_at
		FROM movements
		WHERE item_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, created_at ASC
	`, string(id), fmtTime(from), fmtTime(to))
}

func (c *conn) DeleteMovementsByRef(ctx context.Context, ref ledger.TxRef) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM movements WHERE ref = ?", string(ref))
	return err
}

func (c *conn) queryMovements(ctx context.Context, query string, args ...any) ([]ledger.StockMovement, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []ledger.StockMovement
	for rows.Next() {
		var m ledger.StockMovement
		var quantity, date, createdAt string
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Ref, &quantity, &date, &createdAt); err != nil {
			return nil, err
		}
		m.Quantity = ledger.MustParseDecimal(quantity)
		m.Date = parseTime(date)
		m.CreatedAt = parseTime(createdAt)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ---- ledger entries ----

// AppendEntries assigns seq from the table's running maximum; callers never
// pick their own insertion order.
func (c *conn) AppendEntries(ctx context.Context, entries []ledger.LedgerEntry) error {
	query := `
		INSERT INTO entries (id, account_id, ref, date, debit, credit, description, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM entries), ?)
	`
	for _, e := range entries {
		_, err := c.db.ExecContext(ctx, query,
			e.ID, string(e.AccountID), string(e.Ref), fmtTime(e.Date),
			e.Debit.String(), e.Credit.String(), e.Description,
			fmtTime(e.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to append entry: %w", err)
		}
	}
	return nil
}

func (c *conn) EntriesByRef(ctx context.Context, ref ledger.TxRef) ([]ledger.LedgerEntry, error) {
	return c.queryEntries(ctx, `
		SELECT id, account_id, ref, date, debit, credit, description, seq, created_at
		FROM entries WHERE ref = ?
		ORDER BY date ASC, seq ASC
	`, string(ref))
}

func (c *conn) EntriesByAccount(ctx context.Context, id ledger.AccountID, from, to time.Time) ([]ledger.LedgerEntry, error) {
	return c.queryEntries(ctx, `
		SELECT id, account_id, ref, date, debit, credit, description, seq, created_at
		FROM entries
		WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, seq ASC
	`, string(id), fmtTime(from), fmtTime(to))
}

func (c *conn) DeleteEntriesByRef(ctx context.Context, ref ledger.TxRef) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM entries WHERE ref = ?", string(ref))
	return err
}

func (c *conn) queryEntries(ctx context.Context, query string, args ...any) ([]ledger.LedgerEntry, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ledger.LedgerEntry
	for rows.Next() {
		var e ledger.LedgerEntry
		var debit, credit, date, createdAt string
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Ref, &date, &debit, &credit,
			&e.Description, &e.Seq, &createdAt); err != nil {
			return nil, err
		}
		e.Debit = ledger.MustParseDecimal(debit)
		e.Credit = ledger.MustParseDecimal(credit)
		e.Date = parseTime(date)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ---- transactions ----

func (c *conn) GetTransaction(ctx context.Context, ref ledger.TxRef) (*trading.Transaction, error) {
	row := c.db.QueryRowContext(ctx, selectTransaction+" WHERE ref = ?", string(ref))
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *conn) SaveTransaction(ctx context.Context, tx *trading.Transaction) error {
	linesJSON, err := json.Marshal(tx.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode lines: %w", err)
	}
	totalsJSON, err := json.Marshal(tx.Totals)
	if err != nil {
		return fmt.Errorf("failed to encode totals: %w", err)
	}
	var billJSON []byte
	if tx.Bill != nil {
		billJSON, err = json.Marshal(tx.Bill)
		if err != nil {
			return fmt.Errorf("failed to encode bill charges: %w", err)
		}
	}

	query := `
		INSERT INTO transactions
		(ref, number, kind, date, status, party_account_id, supplier_id, vehicle_no,
		 lines_json, concession_amount, cash_paid, cash_received, receipt_amount,
		 bill_json, period_from, period_to, previous_balance, totals_json,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ref) DO UPDATE SET
			date = excluded.date,
			status = excluded.status,
			party_account_id = excluded.party_account_id,
			supplier_id = excluded.supplier_id,
			vehicle_no = excluded.vehicle_no,
			lines_json = excluded.lines_json,
			concession_amount = excluded.concession_amount,
			cash_paid = excluded.cash_paid,
			cash_received = excluded.cash_received,
			receipt_amount = excluded.receipt_amount,
			bill_json = excluded.bill_json,
			period_from = excluded.period_from,
			period_to = excluded.period_to,
			previous_balance = excluded.previous_balance,
			totals_json = excluded.totals_json,
			updated_at = excluded.updated_at
	`

	_, err = c.db.ExecContext(ctx, query,
		string(tx.Ref), tx.Number, string(tx.Kind), fmtTime(tx.Date), string(tx.Status),
		string(tx.PartyAccountID), string(tx.SupplierID), tx.VehicleNo,
		string(linesJSON),
		tx.ConcessionAmount.String(), tx.CashPaid.String(),
		tx.CashReceived.String(), tx.ReceiptAmount.String(),
		nullBytes(billJSON), fmtNullTime(tx.PeriodFrom), fmtNullTime(tx.PeriodTo),
		tx.PreviousBalance.String(), string(totalsJSON),
		fmtTime(tx.CreatedAt), fmtTime(tx.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (c *conn) DeleteTransaction(ctx context.Context, ref ledger.TxRef) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM transactions WHERE ref = ?", string(ref))
	return err
}

func (c *conn) ListTransactions(ctx context.Context, f trading.Filter) ([]trading.Transaction, error) {
	var where []string
	var args []any
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.PartyID != "" {
		where = append(where, "party_account_id = ?")
		args = append(args, string(f.PartyID))
	}
	if f.SupplierID != "" {
		where = append(where, "supplier_id = ?")
		args = append(args, string(f.SupplierID))
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, fmtTime(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, fmtTime(f.To))
	}

	query := selectTransaction
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, number ASC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []trading.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

func (c *conn) NextNumber(ctx context.Context, kind trading.Kind) (int64, error) {
	var next int64
	err := c.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(number), 0) + 1 FROM transactions WHERE kind = ?",
		string(kind),
	).Scan(&next)
	return next, err
}

const selectTransaction = `
	SELECT ref, number, kind, date, status, party_account_id, supplier_id, vehicle_no,
	       lines_json, concession_amount, cash_paid, cash_received, receipt_amount,
	       bill_json, period_from, period_to, previous_balance, totals_json,
	       created_at, updated_at
	FROM transactions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*trading.Transaction, error) {
	var tx trading.Transaction
	var date, createdAt, updatedAt string
	var linesJSON, totalsJSON string
	var concession, cashPaid, cashReceived, receipt, previous string
	var billJSON, periodFrom, periodTo sql.NullString

	err := row.Scan(
		&tx.Ref, &tx.Number, &tx.Kind, &date, &tx.Status,
		&tx.PartyAccountID, &tx.SupplierID, &tx.VehicleNo,
		&linesJSON, &concession, &cashPaid, &cashReceived, &receipt,
		&billJSON, &periodFrom, &periodTo, &previous, &totalsJSON,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Date = parseTime(date)
	tx.ConcessionAmount = ledger.MustParseDecimal(concession)
	tx.CashPaid = ledger.MustParseDecimal(cashPaid)
	tx.CashReceived = ledger.MustParseDecimal(cashReceived)
	tx.ReceiptAmount = ledger.MustParseDecimal(receipt)
	tx.PreviousBalance = ledger.MustParseDecimal(previous)
	tx.CreatedAt = parseTime(createdAt)
	tx.UpdatedAt = parseTime(updatedAt)

	if err := json.Unmarshal([]byte(linesJSON), &tx.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode lines: %w", err)
	}
	if err := json.Unmarshal([]byte(totalsJSON), &tx.Totals); err != nil {
		return nil, fmt.Errorf("failed to decode totals: %w", err)
	}
	if billJSON.Valid && billJSON.String != "" {
		var bill trading.BillCharges
		if err := json.Unmarshal([]byte(billJSON.String), &bill); err != nil {
			return nil, fmt.Errorf("failed to decode bill charges: %w", err)
		}
		tx.Bill = &bill
	}
	if periodFrom.Valid && periodFrom.String != "" {
		tx.PeriodFrom = parseTime(periodFrom.String)
	}
	if periodTo.Valid && periodTo.String != "" {
		tx.PeriodTo = parseTime(periodTo.String)
	}
	return &tx, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fmtNullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return fmtTime(t)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
