package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/ledger"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/store/sqlite"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/trading"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var testDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

// =============================================================================
// ITEMS AND ACCOUNTS
// =============================================================================

func TestItemRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	item := ledger.Item{
		ID:           "rohu",
		Name:         "Rohu",
		OpeningStock: dec("100.5"),
		CurrentStock: dec("100.5"),
		CreatedAt:    testDay,
	}
	require.NoError(t, s.SaveItem(ctx, item))

	got, err := s.GetItem(ctx, "rohu")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, item.Name, got.Name)
	assert.True(t, got.OpeningStock.Equal(dec("100.5")), "decimals survive text storage exactly")
	assert.True(t, got.CreatedAt.Equal(testDay))

	missing, err := s.GetItem(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAdjustItemStock(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveItem(ctx, ledger.Item{
		ID: "rohu", Name: "Rohu",
		OpeningStock: dec("100"), CurrentStock: dec("100"),
		CreatedAt: testDay,
	}))

	require.NoError(t, s.AdjustItemStock(ctx, "rohu", dec("-30.125")))
	got, err := s.GetItem(ctx, "rohu")
	require.NoError(t, err)
	assert.True(t, got.CurrentStock.Equal(dec("69.875")))

	err = s.AdjustItemStock(ctx, "ghost", dec("1"))
	assert.True(t, errors.Is(err, ledger.ErrItemNotFound))
}

func TestListAccounts_FiltersByKind(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, a := range []ledger.Account{
		{ID: "akbar", Name: "Akbar", Kind: ledger.AccountCustomer, CreatedAt: testDay},
		{ID: "karim", Name: "Karim", Kind: ledger.AccountSupplier, CreatedAt: testDay},
		{ID: "bashir", Name: "Bashir", Kind: ledger.AccountCustomer, CreatedAt: testDay},
	} {
		a.OpeningBalance, a.CurrentBalance = decimal.Zero, decimal.Zero
		require.NoError(t, s.SaveAccount(ctx, a))
	}

	customers, err := s.ListAccounts(ctx, ledger.AccountCustomer)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Akbar", customers[0].Name)
	assert.Equal(t, "Bashir", customers[1].Name)

	all, err := s.ListAccounts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestEntriesByAccount_OrderedByDateThenSeq(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveAccount(ctx, ledger.Account{
		ID: "akbar", Name: "Akbar", Kind: ledger.AccountCustomer,
		OpeningBalance: decimal.Zero, CurrentBalance: decimal.Zero,
		CreatedAt: testDay,
	}))

	later := testDay.AddDate(0, 0, 2)
	require.NoError(t, s.AppendEntries(ctx, []ledger.LedgerEntry{
		{ID: "e1", AccountID: "akbar", Ref: "s2", Date: later, Debit: dec("300"), Credit: decimal.Zero, CreatedAt: testDay},
		{ID: "e2", AccountID: "akbar", Ref: "s1", Date: testDay, Debit: dec("500"), Credit: decimal.Zero, CreatedAt: testDay},
		{ID: "e3", AccountID: "akbar", Ref: "s1", Date: testDay, Debit: decimal.Zero, Credit: dec("100"), CreatedAt: testDay},
	}))

	entries, err := s.EntriesByAccount(ctx, "akbar", ledger.MinTime, ledger.MaxTime)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Earlier date first, ties broken by assigned sequence.
	assert.Equal(t, ledger.TxRef("s1"), entries[0].Ref)
	assert.True(t, entries[0].Debit.Equal(dec("500")))
	assert.Equal(t, ledger.TxRef("s1"), entries[1].Ref)
	assert.True(t, entries[1].Credit.Equal(dec("100")))
	assert.Equal(t, ledger.TxRef("s2"), entries[2].Ref)
	assert.True(t, entries[0].Seq < entries[1].Seq)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func sampleTransaction(ref string, number int64) *trading.Transaction {
	return &trading.Transaction{
		Ref:    ledger.TxRef(ref),
		Number: number,
		Kind:   trading.KindSale,
		Date:   testDay,
		Status: trading.StatusDraft,

		PartyAccountID: "akbar",
		SupplierID:     "karim",
		VehicleNo:      "LHR-1234",
		Lines: []trading.LineItem{
			{
				ItemID:      "rohu",
				GrossWeight: dec("95"),
				TareWeight:  dec("5"),
				Rate:        dec("200"),
				NetWeight:   dec("90"),
				Amount:      dec("18000"),
				NetAmount:   dec("18000"),
			},
		},
		CashReceived:  dec("500"),
		ReceiptAmount: dec("200"),

		ConcessionAmount: decimal.Zero,
		CashPaid:         decimal.Zero,
		PreviousBalance:  decimal.Zero,
		Totals: trading.Totals{
			TotalWeight:   dec("90"),
			GrossAmount:   dec("18000"),
			NetAmount:     dec("18000"),
			BalanceAmount: dec("17300"),
		},
		CreatedAt: testDay,
		UpdatedAt: testDay,
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	tx := sampleTransaction("tx-1", 1)
	require.NoError(t, s.SaveTransaction(ctx, tx))

	got, err := s.GetTransaction(ctx, "tx-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, tx.Kind, got.Kind)
	assert.Equal(t, tx.Number, got.Number)
	assert.Equal(t, tx.VehicleNo, got.VehicleNo)
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Lines[0].NetWeight.Equal(dec("90")))
	assert.True(t, got.Totals.BalanceAmount.Equal(dec("17300")))
	assert.True(t, got.Date.Equal(testDay))
	assert.Nil(t, got.Bill)

	// Upsert: saving the same ref replaces the row.
	tx.VehicleNo = "LHR-9999"
	require.NoError(t, s.SaveTransaction(ctx, tx))
	got, err = s.GetTransaction(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "LHR-9999", got.VehicleNo)
}

func TestSupplierBillRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	tx := sampleTransaction("bill-1", 1)
	tx.Kind = trading.KindSupplierBill
	tx.Lines = nil
	tx.Bill = &trading.BillCharges{
		CommissionPct: dec("6"),
		Drugs:         dec("200"),
		Fare:          dec("300"),
		Labor:         dec("400"),
		Ice:           dec("100"),
	}
	tx.PeriodFrom = testDay.AddDate(0, 0, -30)
	tx.PeriodTo = testDay
	require.NoError(t, s.SaveTransaction(ctx, tx))

	got, err := s.GetTransaction(ctx, "bill-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Bill)
	assert.True(t, got.Bill.CommissionPct.Equal(dec("6")))
	assert.True(t, got.PeriodFrom.Equal(tx.PeriodFrom))
	assert.True(t, got.PeriodTo.Equal(tx.PeriodTo))
	assert.Empty(t, got.Lines)
}

func TestListTransactions_Filters(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	early := sampleTransaction("tx-1", 1)
	early.Date = testDay.AddDate(0, 0, -5)
	require.NoError(t, s.SaveTransaction(ctx, early))
	require.NoError(t, s.SaveTransaction(ctx, sampleTransaction("tx-2", 2)))

	other := sampleTransaction("tx-3", 3)
	other.SupplierID = "salim"
	require.NoError(t, s.SaveTransaction(ctx, other))

	inRange, err := s.ListTransactions(ctx, trading.Filter{From: testDay, To: testDay})
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	bySupplier, err := s.ListTransactions(ctx, trading.Filter{SupplierID: "karim"})
	require.NoError(t, err)
	require.Len(t, bySupplier, 2)
	assert.Equal(t, ledger.TxRef("tx-1"), bySupplier[0].Ref, "date ascending")

	all, err := s.ListTransactions(ctx, trading.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNextNumber_PerKind(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	n, err := s.NextNumber(ctx, trading.KindSale)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.SaveTransaction(ctx, sampleTransaction("tx-1", 7)))

	n, err = s.NextNumber(ctx, trading.KindSale)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	n, err = s.NextNumber(ctx, trading.KindPurchase)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "each kind numbers independently")
}

// =============================================================================
// UNIT OF WORK
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveItem(ctx, ledger.Item{
		ID: "rohu", Name: "Rohu",
		OpeningStock: dec("100"), CurrentStock: dec("100"),
		CreatedAt: testDay,
	}))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(inner trading.Store) error {
		if err := inner.AdjustItemStock(ctx, "rohu", dec("-40")); err != nil {
			return err
		}
		// The write is visible inside the same unit of work.
		item, err := inner.GetItem(ctx, "rohu")
		if err != nil {
			return err
		}
		if !item.CurrentStock.Equal(dec("60")) {
			t.Errorf("expected uncommitted 60 inside tx, got %s", item.CurrentStock)
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	item, err := s.GetItem(ctx, "rohu")
	require.NoError(t, err)
	assert.True(t, item.CurrentStock.Equal(dec("100")), "rollback must restore the stock")
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveItem(ctx, ledger.Item{
		ID: "rohu", Name: "Rohu",
		OpeningStock: dec("100"), CurrentStock: dec("100"),
		CreatedAt: testDay,
	}))

	err := s.WithTx(ctx, func(inner trading.Store) error {
		if err := inner.AdjustItemStock(ctx, "rohu", dec("-40")); err != nil {
			return err
		}
		return inner.SaveTransaction(ctx, sampleTransaction("tx-1", 1))
	})
	require.NoError(t, err)

	item, err := s.GetItem(ctx, "rohu")
	require.NoError(t, err)
	assert.True(t, item.CurrentStock.Equal(dec("60")))
	tx, err := s.GetTransaction(ctx, "tx-1")
	require.NoError(t, err)
	assert.NotNil(t, tx)
}
