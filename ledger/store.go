/*
store.go - Persistence collaborator interface for the ledgers

PURPOSE:
  Defines the boundary between the reconciliation core and storage. The core
  never talks SQL; it composes these accessors, and the coordinator wraps
  them into one atomic unit of work via TxStore.WithTx.

COMPENSATION CONTRACT:
  Movements and entries are written in committed form only. Reversal deletes
  them by transaction reference and compensates the item/account aggregate in
  the same unit of work, so CurrentStock and CurrentBalance always equal
  opening + committed sum. There is no persisted half-applied state.

IMPLEMENTATIONS:
  - store/memory.go:        in-memory with snapshot/rollback (tests, dev)
  - store/sqlite/sqlite.go: SQLite via database/sql (production)
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the persistence collaborator consumed by the ledgers.
type Store interface {
	// Items
	GetItem(ctx context.Context, id ItemID) (*Item, error)
	SaveItem(ctx context.Context, item Item) error
	ListItems(ctx context.Context) ([]Item, error)
	// AdjustItemStock adds delta to the item's current stock.
	AdjustItemStock(ctx context.Context, id ItemID, delta decimal.Decimal) error

	// Accounts
	GetAccount(ctx context.Context, id AccountID) (*Account, error)
	SaveAccount(ctx context.Context, account Account) error
	ListAccounts(ctx context.Context, kind AccountKind) ([]Account, error) // kind "" = all
	// AdjustAccountBalance adds delta to the account's current balance.
	AdjustAccountBalance(ctx context.Context, id AccountID, delta decimal.Decimal) error

	// Stock movements
	AppendMovements(ctx context.Context, movements []StockMovement) error
	MovementsByRef(ctx context.Context, ref TxRef) ([]StockMovement, error)
	// MovementsByItem returns movements for an item with Date in [from, to],
	// ordered by Date then insertion order.
	MovementsByItem(ctx context.Context, id ItemID, from, to time.Time) ([]StockMovement, error)
	DeleteMovementsByRef(ctx context.Context, ref TxRef) error

	// Ledger entries
	AppendEntries(ctx context.Context, entries []LedgerEntry) error
	EntriesByRef(ctx context.Context, ref TxRef) ([]LedgerEntry, error)
	// EntriesByAccount returns entries for an account with Date in [from, to],
	// ordered by Date then Seq. Pass MinTime/MaxTime for open bounds.
	EntriesByAccount(ctx context.Context, id AccountID, from, to time.Time) ([]LedgerEntry, error)
	DeleteEntriesByRef(ctx context.Context, ref TxRef) error
}

// TxStore wraps Store with an atomic unit of work. If fn returns an error,
// every write made through the passed Store is rolled back.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
