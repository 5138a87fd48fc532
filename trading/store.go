package trading

import (
	"context"
	"time"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/ledger"
)

// Filter narrows ListTransactions. Zero values mean "any"; Date bounds are
// inclusive and default to the open range.
type Filter struct {
	Kind       Kind
	PartyID    ledger.AccountID
	SupplierID ledger.AccountID
	From       time.Time
	To         time.Time
}

// Store extends the ledger store with transaction header persistence. The
// same implementation backs both: the coordinator needs headers, movements,
// and entries written in one unit of work.
type Store interface {
	ledger.Store

	GetTransaction(ctx context.Context, ref ledger.TxRef) (*Transaction, error)
	// SaveTransaction inserts or replaces the header and its lines.
	SaveTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, ref ledger.TxRef) error
	// ListTransactions returns matches ordered by date, then number.
	ListTransactions(ctx context.Context, f Filter) ([]Transaction, error)
	// NextNumber allocates the next sequential transaction number per kind.
	NextNumber(ctx context.Context, kind Kind) (int64, error)
}

// TxStore wraps Store with an atomic unit of work (see ledger.TxStore).
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
