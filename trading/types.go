/*
Package trading implements the transaction domain on top of the ledgers.

PURPOSE:
  Purchases, sales, and supplier bills share one lifecycle: line items are
  computed into header totals, stock and balance preconditions are checked,
  and the effects are committed atomically together with the transaction
  record. The Coordinator (coordinator.go) owns that lifecycle; this file
  holds the transaction model.

THE THREE KINDS:
  Purchase:     fish bought from a supplier. Increases stock, charges the
                supplier account with the net amount owed.
  Sale:         fish sold to a customer on behalf of a supplier. Decreases
                stock, charges the customer account.
  SupplierBill: periodic settlement with a supplier, derived from the
                supplier's sale lines in a date range. No stock effect.

LIFECYCLE:
  A transaction is created, computed, and committed in one step - there is
  no persisted draft without ledger effects. The Status field is a separate
  business lock: once posted, edit and delete are rejected outright,
  regardless of reconciliation state.
*/
package trading

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/ledger"
)

// =============================================================================
// TRANSACTION MODEL
// =============================================================================

type Kind string

const (
	KindPurchase     Kind = "purchase"
	KindSale         Kind = "sale"
	KindSupplierBill Kind = "supplier_bill"
)

type Status string

const (
	// StatusDraft marks a committed transaction that may still be edited or
	// deleted (with full reversal of its effects).
	StatusDraft Status = "draft"

	// StatusPosted is a hard lock: line items and totals are immutable and
	// edit/delete are rejected with ErrLocked.
	StatusPosted Status = "posted"
)

// LineItem is one row within a transaction. Computed fields are pure
// functions of the input fields (see calc.go) and are never independently
// edited after commit.
type LineItem struct {
	ItemID ledger.ItemID

	// Purchase input: weighed quantity bought.
	Weight decimal.Decimal

	// Sale inputs: gross weight off the scale and the tare of the crate.
	GrossWeight decimal.Decimal
	TareWeight  decimal.Decimal

	Rate decimal.Decimal

	// Sale per-line charges.
	GroceryCharges decimal.Decimal
	IceCharges     decimal.Decimal

	// Computed.
	NetWeight decimal.Decimal // purchase: = Weight; sale: max(0, gross - tare)
	Amount    decimal.Decimal // NetWeight x Rate
	NetAmount decimal.Decimal // sale: Amount + grocery + ice; otherwise = Amount
}

// BillCharges are the header-level deductions of a supplier bill.
type BillCharges struct {
	CommissionPct decimal.Decimal
	Drugs         decimal.Decimal
	Fare          decimal.Decimal
	Labor         decimal.Decimal
	Ice           decimal.Decimal
}

// Totals are the computed header amounts. Which fields are meaningful
// depends on the kind; unused fields stay zero.
type Totals struct {
	TotalWeight   decimal.Decimal
	GrossAmount   decimal.Decimal
	NetAmount     decimal.Decimal
	BalanceAmount decimal.Decimal

	// Supplier bill only.
	CommissionAmount decimal.Decimal
	TotalCharges     decimal.Decimal
	NetPayable       decimal.Decimal
	TotalPayable     decimal.Decimal
}

// Transaction is a purchase, sale, or supplier bill header with its lines.
// Once committed it has stock/balance effects tagged with Ref; once posted
// it is immutable.
type Transaction struct {
	Ref    ledger.TxRef
	Number int64
	Kind   Kind
	Date   time.Time
	Status Status

	// PartyAccountID is the account the balance effect lands on: the
	// supplier for purchases and bills, the customer for sales.
	PartyAccountID ledger.AccountID

	// Sale only: the supplier whose fish is being sold, and the vehicle it
	// arrived on. Both feed supplier billing and the vendor sales report.
	SupplierID ledger.AccountID
	VehicleNo  string

	Lines []LineItem

	// Header inputs.
	ConcessionAmount decimal.Decimal // purchase, supplier bill
	CashPaid         decimal.Decimal // purchase, supplier bill
	CashReceived     decimal.Decimal // sale
	ReceiptAmount    decimal.Decimal // sale
	Bill             *BillCharges    // supplier bill

	// Supplier bill only: the sale period the bill settles.
	PeriodFrom time.Time
	PeriodTo   time.Time

	// PreviousBalance is the party's balance captured at commit time; it
	// feeds the purchase balance formula and the printed voucher.
	PreviousBalance decimal.Decimal

	Totals Totals

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Posted reports whether the transaction carries the hard edit/delete lock.
func (t *Transaction) Posted() bool { return t.Status == StatusPosted }
