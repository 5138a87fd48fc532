/*
stock.go - Stock ledger with edit-compensation

PURPOSE:
  Authoritative current quantity per item, with safe mutation under edit.
  A sale consumes stock, a purchase replenishes it, and deleting or editing
  either reverses the original movements by transaction reference.

THE EDIT-COMPENSATION RULE:
  When re-validating an existing transaction's line items, the quantity that
  transaction ALREADY consumed must be added back before comparing against
  the newly requested quantity. Without this, an edit that does not change
  quantity would be rejected as "insufficient stock" against its own prior
  consumption.

  Example: item has 0 on hand because sale S consumed all 50. Editing S to
  still sell 50 must pass: available = 0 + 50 (S's own consumption) >= 50.

ALLOW-NEGATIVE OVERRIDE:
  The distributor can configure the system to sell below recorded stock
  (common when purchases are entered after the day's sales). The flag is an
  explicit constructor argument, injected from configuration, not an ambient
  setting read mid-check.

FAILURE MODE:
  CheckAvailability reports a shortfall as data, not an error: the caller
  (the coordinator) decides to refuse the commit and surfaces the typed
  InsufficientStockError.
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STOCK LEDGER
// =============================================================================

// StockLedger maintains each item's quantity on hand as the signed sum of
// committed movements over its opening stock.
type StockLedger struct {
	store         Store
	allowNegative bool
}

// NewStockLedger creates a stock ledger over the given store. allowNegative
// is the "allow negative stock" configuration value: when set, availability
// checks always pass and stock may go below zero.
func NewStockLedger(store Store, allowNegative bool) *StockLedger {
	return &StockLedger{store: store, allowNegative: allowNegative}
}

// Availability is the result of a CheckAvailability call.
type Availability struct {
	OK        bool
	Available decimal.Decimal
}

// CheckAvailability reports whether required units of the item can be
// consumed. excludeRef, when non-empty, names a committed transaction whose
// own consumption of this item is added back before the comparison (the
// edit-compensation rule). A zero excludeRef checks true remaining stock.
func (l *StockLedger) CheckAvailability(ctx context.Context, id ItemID, required decimal.Decimal, excludeRef TxRef) (Availability, error) {
	item, err := l.store.GetItem(ctx, id)
	if err != nil {
		return Availability{}, err
	}
	if item == nil {
		return Availability{}, ErrItemNotFound
	}

	available := item.CurrentStock
	if excludeRef != "" {
		allocated, err := l.allocatedBy(ctx, id, excludeRef)
		if err != nil {
			return Availability{}, err
		}
		available = available.Add(allocated)
	}

	ok := l.allowNegative || available.GreaterThanOrEqual(required)
	return Availability{OK: ok, Available: available}, nil
}

// allocatedBy returns how much of the item the referenced transaction has
// consumed (a positive number for consumption; purchases contribute zero or
// negative add-back).
func (l *StockLedger) allocatedBy(ctx context.Context, id ItemID, ref TxRef) (decimal.Decimal, error) {
	movements, err := l.store.MovementsByRef(ctx, ref)
	if err != nil {
		return decimal.Zero, err
	}
	allocated := decimal.Zero
	for _, m := range movements {
		if m.ItemID == id {
			allocated = allocated.Sub(m.Quantity) // consumption is stored negative
		}
	}
	return allocated, nil
}

// ApplyMovements commits a set of movements: appends them and adjusts each
// item's current stock by the signed quantity. Callers aggregate quantities
// so that each (ref, item) pair appears at most once.
func (l *StockLedger) ApplyMovements(ctx context.Context, movements []StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	if err := l.store.AppendMovements(ctx, movements); err != nil {
		return err
	}
	for _, m := range movements {
		if err := l.store.AdjustItemStock(ctx, m.ItemID, m.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// ReverseTransaction undoes every movement tagged with ref: each item's
// stock is adjusted by the negated quantity and the movements are removed,
// so current stock reflects as if the transaction never existed.
func (l *StockLedger) ReverseTransaction(ctx context.Context, ref TxRef) error {
	movements, err := l.store.MovementsByRef(ctx, ref)
	if err != nil {
		return err
	}
	for _, m := range movements {
		if err := l.store.AdjustItemStock(ctx, m.ItemID, m.Quantity.Neg()); err != nil {
			return err
		}
	}
	return l.store.DeleteMovementsByRef(ctx, ref)
}
