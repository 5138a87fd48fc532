/*
Package ledger provides the reconciliation core shared by all transaction kinds.

PURPOSE:
  This package contains the two authoritative ledgers of the system:

  - StockLedger:   current quantity on hand per item, maintained as the
    signed sum of committed stock movements.
  - AccountLedger: running balance per customer/supplier account, maintained
    as opening balance plus committed debit/credit entries.

  Both ledgers share the same compensation model: every committed effect is
  tagged with the transaction reference that caused it, and reversal is a
  first-class operation keyed by that reference. Editing a transaction is
  always reverse-then-reapply, never an in-place mutation of ledger rows.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money/Weight rounding: canonical decimal precision (2dp currency, 3dp kg)
  - Item: a tradeable good with opening and current stock
  - Account: a customer or supplier with opening and current balance
  - StockMovement: one signed stock effect tagged with its transaction
  - LedgerEntry: one debit-or-credit balance effect tagged with its transaction

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, never binary floating point
  2. Compensation: effects are reversible by transaction reference
  3. Derivability: current stock/balance always equals opening + committed sum

SEE ALSO:
  - stock.go:   StockLedger and the edit-compensation availability check
  - account.go: AccountLedger and the running-balance fold
  - store.go:   persistence collaborator interfaces
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRECISION - Canonical decimal rounding
// =============================================================================

// Currency amounts carry two fractional digits, weights three. Rounding is
// applied when transaction totals are computed (commit time), not on every
// intermediate step, so repeated edit/reverse cycles cannot drift.
const (
	MoneyPlaces  = 2
	WeightPlaces = 3
)

func RoundMoney(d decimal.Decimal) decimal.Decimal  { return d.Round(MoneyPlaces) }
func RoundWeight(d decimal.Decimal) decimal.Decimal { return d.Round(WeightPlaces) }

// MustParseDecimal parses a stored decimal string, returning zero on failure.
// Storage writes always come from decimal.String(), so failure means a
// corrupted row, not a formatting variant.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ItemID string
type AccountID string

// TxRef is the stable reference of a committed transaction. Every stock
// movement and ledger entry created by a transaction carries its TxRef so the
// whole effect set can be reversed in one operation.
type TxRef string

// =============================================================================
// TIME BOUNDS - Open-ended range queries
// =============================================================================

// MinTime/MaxTime bound open-ended range queries. Both format cleanly with
// RFC3339 and compare correctly as strings in SQLite.
var (
	MinTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayEnd returns the last representable instant of t's day.
func DayEnd(t time.Time) time.Time {
	return DayStart(t).Add(24*time.Hour - time.Nanosecond)
}

// =============================================================================
// ITEM - A tradeable good
// =============================================================================

// Item is a tradeable good.
//
// INVARIANT: CurrentStock = OpeningStock + sum of all committed movement
// quantities for this item. The stores maintain this by adjusting
// CurrentStock in the same unit of work that appends or deletes movements.
type Item struct {
	ID           ItemID
	Name         string
	OpeningStock decimal.Decimal
	CurrentStock decimal.Decimal
	CreatedAt    time.Time
}

// =============================================================================
// ACCOUNT - Customer or supplier
// =============================================================================

type AccountKind string

const (
	AccountCustomer AccountKind = "customer"
	AccountSupplier AccountKind = "supplier"
)

// Account is a customer or supplier party.
//
// INVARIANT: CurrentBalance = OpeningBalance + sum of (debit - credit) over
// all committed ledger entries for this account. A negative balance is a
// valid business state (customer credit / supplier overpayment).
type Account struct {
	ID             AccountID
	Name           string
	Kind           AccountKind
	Phone          string
	Address        string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	CreatedAt      time.Time
}

// =============================================================================
// STOCK MOVEMENT - One committed stock effect
// =============================================================================

// StockMovement is one signed quantity change against an item, tagged with
// the transaction that caused it. Purchases commit positive quantities,
// sales negative. There is exactly one movement per (transaction, item) pair
// in the committed state; line items for the same item are aggregated before
// commit.
type StockMovement struct {
	ID        string
	ItemID    ItemID
	Ref       TxRef
	Quantity  decimal.Decimal // signed, weight units
	Date      time.Time       // transaction date (report bucketing)
	CreatedAt time.Time
}

// =============================================================================
// LEDGER ENTRY - One committed balance effect
// =============================================================================

// LedgerEntry is one signed balance change against an account, tagged with
// the transaction that caused it.
//
// INVARIANT: Debit and Credit are mutually exclusive; at most one of them is
// non-zero on any entry. A transaction that both charges a party and records
// a payment produces two entries under the same Ref.
type LedgerEntry struct {
	ID          string
	AccountID   AccountID
	Ref         TxRef
	Date        time.Time
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string

	// Seq is the insertion order assigned by the store. It breaks ties when
	// entries share a date: report consumers depend on a stable, reproducible
	// ordering (date first, then Seq).
	Seq       int64
	CreatedAt time.Time
}

// Effect returns the signed balance delta of the entry (debit - credit).
func (e LedgerEntry) Effect() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}
