/*
Package store provides the in-memory implementation of the storage
interfaces.

PURPOSE:
  Implements trading.TxStore entirely in memory. Used by tests and by
  development runs that don't want a database file on disk.

UNIT OF WORK:
  WithTx takes a deep snapshot of all state before running fn and restores
  it wholesale if fn fails. That gives the same all-or-nothing semantics as
  the SQLite store's sql.Tx, which the reverse-then-reapply sequence
  depends on.

SEE ALSO:
  - ledger/store.go:        interface definitions
  - store/sqlite/sqlite.go: production implementation
*/
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/ledger"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/trading"
)

// Memory implements trading.TxStore with plain maps and slices.
type Memory struct {
	mu sync.RWMutex
	d  data
}

// data is the entire mutable state. Kept in one struct so WithTx can
// snapshot and restore it as a unit.
type data struct {
	items        map[ledger.ItemID]ledger.Item
	accounts     map[ledger.AccountID]ledger.Account
	movements    []ledger.StockMovement
	entries      []ledger.LedgerEntry
	transactions map[ledger.TxRef]trading.Transaction
	nextSeq      int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{d: data{
		items:        make(map[ledger.ItemID]ledger.Item),
		accounts:     make(map[ledger.AccountID]ledger.Account),
		transactions: make(map[ledger.TxRef]trading.Transaction),
	}}
}

func (d *data) clone() data {
	c := data{
		items:        make(map[ledger.ItemID]ledger.Item, len(d.items)),
		accounts:     make(map[ledger.AccountID]ledger.Account, len(d.accounts)),
		movements:    append([]ledger.StockMovement(nil), d.movements...),
		entries:      append([]ledger.LedgerEntry(nil), d.entries...),
		transactions: make(map[ledger.TxRef]trading.Transaction, len(d.transactions)),
		nextSeq:      d.nextSeq,
	}
	for id, item := range d.items {
		c.items[id] = item
	}
	for id, account := range d.accounts {
		c.accounts[id] = account
	}
	for ref, tx := range d.transactions {
		c.transactions[ref] = copyTransaction(tx)
	}
	return c
}

func copyTransaction(tx trading.Transaction) trading.Transaction {
	tx.Lines = append([]trading.LineItem(nil), tx.Lines...)
	if tx.Bill != nil {
		bill := *tx.Bill
		tx.Bill = &bill
	}
	return tx
}

// =============================================================================
// UNIT OF WORK (trading.TxStore)
// =============================================================================

// WithTx snapshots all state, runs fn against the live store, and restores
// the snapshot if fn fails.
func (m *Memory) WithTx(ctx context.Context, fn func(trading.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.d.clone()
	if err := fn(&unlocked{d: &m.d}); err != nil {
		m.d = snapshot
		return err
	}
	return nil
}

// unlocked exposes the store methods without re-taking the mutex; the
// enclosing WithTx already holds it.
type unlocked struct {
	d *data
}

// =============================================================================
// LOCKED DELEGATES
// =============================================================================

func (m *Memory) GetItem(ctx context.Context, id ledger.ItemID) (*ledger.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getItem(id)
}

func (m *Memory) SaveItem(ctx context.Context, item ledger.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.saveItem(item)
}

func (m *Memory) ListItems(ctx context.Context) ([]ledger.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.listItems()
}

func (m *Memory) AdjustItemStock(ctx context.Context, id ledger.ItemID, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.adjustItemStock(id, delta)
}

func (m *Memory) GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getAccount(id)
}

func (m *Memory) SaveAccount(ctx context.Context, account ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.saveAccount(account)
}

func (m *Memory) ListAccounts(ctx context.Context, kind ledger.AccountKind) ([]ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.listAccounts(kind)
}

func (m *Memory) AdjustAccountBalance(ctx context.Context, id ledger.AccountID, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.adjustAccountBalance(id, delta)
}

func (m *Memory) AppendMovements(ctx context.Context, movements []ledger.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.appendMovements(movements)
}

func (m *Memory) MovementsByRef(ctx context.Context, ref ledger.TxRef) ([]ledger.StockMovement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.movementsByRef(ref)
}

func (m *Memory) MovementsByItem(ctx context.Context, id ledger.ItemID, from, to time.Time) ([]ledger.StockMovement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.movementsByItem(id, from, to)
}

func (m *Memory) DeleteMovementsByRef(ctx context.Context, ref ledger.TxRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.deleteMovementsByRef(ref)
}

func (m *Memory) AppendEntries(ctx context.Context, entries []ledger.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.appendEntries(entries)
}

func (m *Memory) EntriesByRef(ctx context.Context, ref ledger.TxRef) ([]ledger.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.entriesByRef(ref)
}

func (m *Memory) EntriesByAccount(ctx context.Context, id ledger.AccountID, from, to time.Time) ([]ledger.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.entriesByAccount(id, from, to)
}

func (m *Memory) DeleteEntriesByRef(ctx context.Context, ref ledger.TxRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.deleteEntriesByRef(ref)
}

func (m *Memory) GetTransaction(ctx context.Context, ref ledger.TxRef) (*trading.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getTransaction(ref)
}

func (m *Memory) SaveTransaction(ctx context.Context, tx *trading.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.saveTransaction(tx)
}

func (m *Memory) DeleteTransaction(ctx context.Context, ref ledger.TxRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.deleteTransaction(ref)
}

func (m *Memory) ListTransactions(ctx context.Context, f trading.Filter) ([]trading.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.listTransactions(f)
}

func (m *Memory) NextNumber(ctx context.Context, kind trading.Kind) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.nextNumber(kind)
}

// Unlocked variants used inside WithTx.

func (u *unlocked) GetItem(ctx context.Context, id ledger.ItemID) (*ledger.Item, error) {
	return u.d.getItem(id)
}
func (u *unlocked) SaveItem(ctx context.Context, item ledger.Item) error {
	return u.d.saveItem(item)
}
func (u *unlocked) ListItems(ctx context.Context) ([]ledger.Item, error) {
	return u.d.listItems()
}
func (u *unlocked) AdjustItemStock(ctx context.Context, id ledger.ItemID, delta decimal.Decimal) error {
	return u.d.adjustItemStock(id, delta)
}
func (u *unlocked) GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	return u.d.getAccount(id)
}
func (u *unlocked) SaveAccount(ctx context.Context, account ledger.Account) error {
	return u.d.saveAccount(account)
}
func (u *unlocked) ListAccounts(ctx context.Context, kind ledger.AccountKind) ([]ledger.Account, error) {
	return u.d.listAccounts(kind)
}
func (u *unlocked) AdjustAccountBalance(ctx context.Context, id ledger.AccountID, delta decimal.Decimal) error {
	return u.d.adjustAccountBalance(id, delta)
}
func (u *unlocked) AppendMovements(ctx context.Context, movements []ledger.StockMovement) error {
	return u.d.appendMovements(movements)
}
func (u *unlocked) MovementsByRef(ctx context.Context, ref ledger.TxRef) ([]ledger.StockMovement, error) {
	return u.d.movementsByRef(ref)
}
func (u *unlocked) MovementsByItem(ctx context.Context, id ledger.ItemID, from, to time.Time) ([]ledger.StockMovement, error) {
	return u.d.movementsByItem(id, from, to)
}
func (u *unlocked) DeleteMovementsByRef(ctx context.Context, ref ledger.TxRef) error {
	return u.d.deleteMovementsByRef(ref)
}
func (u *unlocked) AppendEntries(ctx context.Context, entries []ledger.LedgerEntry) error {
	return u.d.appendEntries(entries)
}
func (u *unlocked) EntriesByRef(ctx context.Context, ref ledger.TxRef) ([]ledger.LedgerEntry, error) {
	return u.d.entriesByRef(ref)
}
func (u *unlocked) EntriesByAccount(ctx context.Context, id ledger.AccountID, from, to time.Time) ([]ledger.LedgerEntry, error) {
	return u.d.entriesByAccount(id, from, to)
}
func (u *unlocked) DeleteEntriesByRef(ctx context.Context, ref ledger.TxRef) error {
	return u.d.deleteEntriesByRef(ref)
}
func (u *unlocked) GetTransaction(ctx context.Context, ref ledger.TxRef) (*trading.Transaction, error) {
	return u.d.getTransaction(ref)
}
func (u *unlocked) SaveTransaction(ctx context.Context, tx *trading.Transaction) error {
	return u.d.saveTransaction(tx)
}
func (u *unlocked) DeleteTransaction(ctx context.Context, ref ledger.TxRef) error {
	return u.d.deleteTransaction(ref)
}
func (u *unlocked) ListTransactions(ctx context.Context, f trading.Filter) ([]trading.Transaction, error) {
	return u.d.listTransactions(f)
}
func (u *unlocked) NextNumber(ctx context.Context, kind trading.Kind) (int64, error) {
	return u.d.nextNumber(kind)
}

// =============================================================================
// STATE OPERATIONS
// =============================================================================

func (d *data) getItem(id ledger.ItemID) (*ledger.Item, error) {
	item, ok := d.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (d *data) saveItem(item ledger.Item) error {
	d.items[item.ID] = item
	return nil
}

func (d *data) listItems() ([]ledger.Item, error) {
	items := make([]ledger.Item, 0, len(d.items))
	for _, item := range d.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (d *data) adjustItemStock(id ledger.ItemID, delta decimal.Decimal) error {
	item, ok := d.items[id]
	if !ok {
		return ledger.ErrItemNotFound
	}
	item.CurrentStock = item.CurrentStock.Add(delta)
	d.items[id] = item
	return nil
}

func (d *data) getAccount(id ledger.AccountID) (*ledger.Account, error) {
	account, ok := d.accounts[id]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (d *data) saveAccount(account ledger.Account) error {
	d.accounts[account.ID] = account
	return nil
}

func (d *data) listAccounts(kind ledger.AccountKind) ([]ledger.Account, error) {
	var accounts []ledger.Account
	for _, account := range d.accounts {
		if kind != "" && account.Kind != kind {
			continue
		}
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

func (d *data) adjustAccountBalance(id ledger.AccountID, delta decimal.Decimal) error {
	account, ok := d.accounts[id]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	account.CurrentBalance = account.CurrentBalance.Add(delta)
	d.accounts[id] = account
	return nil
}

func (d *data) appendMovements(movements []ledger.StockMovement) error {
	d.movements = append(d.movements, movements...)
	return nil
}

func (d *data) movementsByRef(ref ledger.TxRef) ([]ledger.StockMovement, error) {
	var out []ledger.StockMovement
	for _, m := range d.movements {
		if m.Ref == ref {
			out = append(out, m)
		}
	}
	return out, nil
}

func (d *data) movementsByItem(id ledger.ItemID, from, to time.Time) ([]ledger.StockMovement, error) {
	var out []ledger.StockMovement
	for _, m := range d.movements {
		if m.ItemID == id && !m.Date.Before(from) && !m.Date.After(to) {
			out = append(out, m)
		}
	}
	// Stable sort preserves insertion order within a date.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (d *data) deleteMovementsByRef(ref ledger.TxRef) error {
	kept := d.movements[:0]
	for _, m := range d.movements {
		if m.Ref != ref {
			kept = append(kept, m)
		}
	}
	d.movements = kept
	return nil
}

func (d *data) appendEntries(entries []ledger.LedgerEntry) error {
	for _, e := range entries {
		d.nextSeq++
		e.Seq = d.nextSeq
		d.entries = append(d.entries, e)
	}
	return nil
}

func (d *data) entriesByRef(ref ledger.TxRef) ([]ledger.LedgerEntry, error) {
	var out []ledger.LedgerEntry
	for _, e := range d.entries {
		if e.Ref == ref {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (d *data) entriesByAccount(id ledger.AccountID, from, to time.Time) ([]ledger.LedgerEntry, error) {
	var out []ledger.LedgerEntry
	for _, e := range d.entries {
		if e.AccountID == id && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func sortEntries(entries []ledger.LedgerEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].Seq < entries[j].Seq
	})
}

func (d *data) deleteEntriesByRef(ref ledger.TxRef) error {
	kept := d.entries[:0]
	for _, e := range d.entries {
		if e.Ref != ref {
			kept = append(kept, e)
		}
	}
	d.entries = kept
	return nil
}

func (d *data) getTransaction(ref ledger.TxRef) (*trading.Transaction, error) {
	tx, ok := d.transactions[ref]
	if !ok {
		return nil, nil
	}
	tx = copyTransaction(tx)
	return &tx, nil
}

func (d *data) saveTransaction(tx *trading.Transaction) error {
	d.transactions[tx.Ref] = copyTransaction(*tx)
	return nil
}

func (d *data) deleteTransaction(ref ledger.TxRef) error {
	delete(d.transactions, ref)
	return nil
}

func (d *data) listTransactions(f trading.Filter) ([]trading.Transaction, error) {
	var out []trading.Transaction
	for _, tx := range d.transactions {
		if f.Kind != "" && tx.Kind != f.Kind {
			continue
		}
		if f.PartyID != "" && tx.PartyAccountID != f.PartyID {
			continue
		}
		if f.SupplierID != "" && tx.SupplierID != f.SupplierID {
			continue
		}
		if !f.From.IsZero() && tx.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && tx.Date.After(f.To) {
			continue
		}
		out = append(out, copyTransaction(tx))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (d *data) nextNumber(kind trading.Kind) (int64, error) {
	var max int64
	for _, tx := range d.transactions {
		if tx.Kind == kind && tx.Number > max {
			max = tx.Number
		}
	}
	return max + 1, nil
}
