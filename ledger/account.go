/*
account.go - Account ledger and the running-balance fold

PURPOSE:
  Per-account running balance, usable both as a live total and
  reconstructable historically for account statements.

THE FOLD:
  The running-balance reconstruction is a pure left-fold over entries sorted
  by date, ties broken by insertion order:

    balance[0] = opening_balance
    balance[i] = balance[i-1] + debit[i] - credit[i]

  Report consumers depend on this being stable and reproducible; the fold
  never reorders beyond the documented sort key.

SIGN CONVENTION:
  Debit charges the party (what the customer owes us / what we owe the
  supplier); credit records a payment against the account. Balances may go
  negative - that is a valid business state, not a fault.
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT LEDGER
// =============================================================================

// AccountLedger maintains each account's running balance as opening balance
// plus the signed sum of committed entries.
type AccountLedger struct {
	store Store
}

func NewAccountLedger(store Store) *AccountLedger {
	return &AccountLedger{store: store}
}

// CurrentBalance returns the account's committed balance.
func (l *AccountLedger) CurrentBalance(ctx context.Context, id AccountID) (decimal.Decimal, error) {
	account, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if account == nil {
		return decimal.Zero, ErrAccountNotFound
	}
	return account.CurrentBalance, nil
}

// BalanceAsOf reconstructs the account's balance just before cutoff:
// opening balance plus every committed entry dated strictly before it.
func (l *AccountLedger) BalanceAsOf(ctx context.Context, id AccountID, cutoff time.Time) (decimal.Decimal, error) {
	account, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if account == nil {
		return decimal.Zero, ErrAccountNotFound
	}
	entries, err := l.store.EntriesByAccount(ctx, id, MinTime, cutoff.Add(-time.Nanosecond))
	if err != nil {
		return decimal.Zero, err
	}
	balance := account.OpeningBalance
	for _, e := range entries {
		balance = balance.Add(e.Effect())
	}
	return balance, nil
}

// PostEntries commits entries: validates the debit/credit exclusivity
// invariant, appends them, and adjusts each account's current balance.
func (l *AccountLedger) PostEntries(ctx context.Context, entries []LedgerEntry) error {
	for _, e := range entries {
		if !e.Debit.IsZero() && !e.Credit.IsZero() {
			return ErrInvalidEntry
		}
	}
	if len(entries) == 0 {
		return nil
	}
	if err := l.store.AppendEntries(ctx, entries); err != nil {
		return err
	}
	for _, e := range entries {
		if err := l.store.AdjustAccountBalance(ctx, e.AccountID, e.Effect()); err != nil {
			return err
		}
	}
	return nil
}

// ReverseEntriesFor undoes every entry tagged with ref, symmetrically with
// StockLedger.ReverseTransaction: balances are compensated and the entries
// removed.
func (l *AccountLedger) ReverseEntriesFor(ctx context.Context, ref TxRef) error {
	entries, err := l.store.EntriesByRef(ctx, ref)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := l.store.AdjustAccountBalance(ctx, e.AccountID, e.Effect().Neg()); err != nil {
			return err
		}
	}
	return l.store.DeleteEntriesByRef(ctx, ref)
}

// =============================================================================
// RUNNING-BALANCE FOLD
// =============================================================================

// RunningBalance pairs an entry with the cumulative balance after it.
type RunningBalance struct {
	Entry   LedgerEntry
	Balance decimal.Decimal
}

// RunningBalances folds entries left-to-right from the opening balance.
// Entries must already be in the documented order (date, then Seq); the fold
// itself never reorders. Deterministic: same input, same output.
func RunningBalances(opening decimal.Decimal, entries []LedgerEntry) []RunningBalance {
	result := make([]RunningBalance, 0, len(entries))
	balance := opening
	for _, e := range entries {
		balance = balance.Add(e.Effect())
		result = append(result, RunningBalance{Entry: e, Balance: balance})
	}
	return result
}
