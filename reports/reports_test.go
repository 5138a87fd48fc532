package reports_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/ledger"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/reports"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/store"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/trading"
)

var (
	day9  = time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	day10 = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day11 = time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type world struct {
	store       *store.Memory
	coordinator *trading.Coordinator
	aggregator  *reports.Aggregator
}

func newWorld(t *testing.T) *world {
	t.Helper()
	s := store.NewMemory()
	return &world{
		store:       s,
		coordinator: trading.NewCoordinator(s, false),
		aggregator:  reports.NewAggregator(s),
	}
}

func (w *world) item(t *testing.T, id, stock string) {
	t.Helper()
	err := w.store.SaveItem(context.Background(), ledger.Item{
		ID:           ledger.ItemID(id),
		Name:         id,
		OpeningStock: dec(stock),
		CurrentStock: dec(stock),
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
}

func (w *world) account(t *testing.T, id string, kind ledger.AccountKind, opening string) {
	t.Helper()
	err := w.store.SaveAccount(context.Background(), ledger.Account{
		ID:             ledger.AccountID(id),
		Name:           id,
		Kind:           kind,
		OpeningBalance: dec(opening),
		CurrentBalance: dec(opening),
		CreatedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)
}

func (w *world) sale(t *testing.T, date time.Time, customer, supplier, vehicle string, lines []trading.LineItem, cash, receipt string) *trading.Transaction {
	t.Helper()
	tx, err := w.coordinator.CreateTransaction(context.Background(), trading.Input{
		Kind:           trading.KindSale,
		Date:           date,
		PartyAccountID: ledger.AccountID(customer),
		SupplierID:     ledger.AccountID(supplier),
		VehicleNo:      vehicle,
		Lines:          lines,
		CashReceived:   dec(cash),
		ReceiptAmount:  dec(receipt),
	})
	require.NoError(t, err)
	return tx
}

func saleLine(item, gross, tare, rate string) trading.LineItem {
	return trading.LineItem{
		ItemID:      ledger.ItemID(item),
		GrossWeight: dec(gross),
		TareWeight:  dec(tare),
		Rate:        dec(rate),
	}
}

// =============================================================================
// STOCK REPORT
// =============================================================================

func TestStockReport_RowIdentityAndTotals(t *testing.T) {
	// katla: 100 carried in, +20 purchased, -30 sold => 90 remaining
	// rohu:  200 carried in, +40 purchased, -10 sold => 230 remaining
	ctx := context.Background()
	w := newWorld(t)
	w.item(t, "katla", "100")
	w.item(t, "rohu", "200")

	movements := []ledger.StockMovement{
		{ID: "m1", ItemID: "katla", Ref: "p1", Quantity: dec("20"), Date: day10},
		{ID: "m2", ItemID: "katla", Ref: "s1", Quantity: dec("-30"), Date: day10},
		{ID: "m3", ItemID: "rohu", Ref: "p2", Quantity: dec("40"), Date: day10},
		{ID: "m4", ItemID: "rohu", Ref: "s2", Quantity: dec("-10"), Date: day10},
	}
	require.NoError(t, w.store.AppendMovements(ctx, movements))

	report, err := w.aggregator.StockReport(ctx, day10, "")
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	katla, rohu := report.Rows[0], report.Rows[1]
	assert.Equal(t, ledger.ItemID("katla"), katla.ItemID)
	assert.True(t, katla.Previous.Equal(dec("100")))
	assert.True(t, katla.Purchased.Equal(dec("20")))
	assert.True(t, katla.Sold.Equal(dec("30")))
	assert.True(t, katla.Remaining.Equal(dec("90")))

	assert.True(t, rohu.Previous.Equal(dec("200")))
	assert.True(t, rohu.Remaining.Equal(dec("230")))

	assert.True(t, report.Totals.Previous.Equal(dec("300")))
	assert.True(t, report.Totals.Purchased.Equal(dec("60")))
	assert.True(t, report.Totals.Sold.Equal(dec("40")))
	assert.True(t, report.Totals.Remaining.Equal(dec("320")))

	// Row identity holds for every row and the totals row.
	for _, row := range append(report.Rows, report.Totals) {
		assert.True(t, row.Remaining.Equal(row.Previous.Add(row.Purchased).Sub(row.Sold)))
	}
}

func TestStockReport_EarlierDaysFoldIntoPrevious(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.item(t, "rohu", "100")

	require.NoError(t, w.store.AppendMovements(ctx, []ledger.StockMovement{
		{ID: "m1", ItemID: "rohu", Ref: "p1", Quantity: dec("50"), Date: day9},
		{ID: "m2", ItemID: "rohu", Ref: "s1", Quantity: dec("-30"), Date: day9},
		{ID: "m3", ItemID: "rohu", Ref: "s2", Quantity: dec("-20"), Date: day10},
	}))

	report, err := w.aggregator.StockReport(ctx, day10, "rohu")
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.True(t, row.Previous.Equal(dec("120")), "previous: %s", row.Previous)
	assert.True(t, row.Purchased.Equal(dec("0")))
	assert.True(t, row.Sold.Equal(dec("20")))
	assert.True(t, row.Remaining.Equal(dec("100")))
}

func TestStockReport_UnknownItem(t *testing.T) {
	w := newWorld(t)
	_, err := w.aggregator.StockReport(context.Background(), day10, "ghost")
	assert.True(t, errors.Is(err, ledger.ErrItemNotFound))
}

// =============================================================================
// REGISTER
// =============================================================================

func TestRegister_PerAccountFormulaAndTotals(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.item(t, "rohu", "1000")
	w.account(t, "akbar", ledger.AccountCustomer, "1000")
	w.account(t, "bashir", ledger.AccountCustomer, "500")
	w.account(t, "karim", ledger.AccountSupplier, "0")

	// akbar: 40kg @ 200 = 8000 charged, 1000 collected.
	w.sale(t, day10, "akbar", "karim", "LHR-1", []trading.LineItem{saleLine("rohu", "45", "5", "200")}, "1000", "0")

	report, err := w.aggregator.Register(ctx, ledger.AccountCustomer, day10, day10)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2, "suppliers excluded from the customer register")

	akbar, bashir := report.Rows[0], report.Rows[1]
	assert.Equal(t, ledger.AccountID("akbar"), akbar.AccountID)
	assert.True(t, akbar.Opening.Equal(dec("1000")))
	assert.True(t, akbar.NetAmount.Equal(dec("8000")))
	assert.True(t, akbar.Collections.Equal(dec("1000")))
	assert.True(t, akbar.Balance.Equal(dec("8000")))

	// No activity in range: balance is just the opening.
	assert.True(t, bashir.NetAmount.IsZero())
	assert.True(t, bashir.Balance.Equal(dec("500")))

	assert.True(t, report.Totals.Opening.Equal(dec("1500")))
	assert.True(t, report.Totals.NetAmount.Equal(dec("8000")))
	assert.True(t, report.Totals.Collections.Equal(dec("1000")))
	assert.True(t, report.Totals.Balance.Equal(dec("8500")))
}

func TestRegister_InvalidRange(t *testing.T) {
	w := newWorld(t)
	_, err := w.aggregator.Register(context.Background(), ledger.AccountCustomer, day11, day10)
	assert.True(t, errors.Is(err, ledger.ErrInvalidRange))
}

// =============================================================================
// LEDGER REPORT
// =============================================================================

func TestLedger_OpeningFoldClosing(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.account(t, "akbar", ledger.AccountCustomer, "1000")
	accounts := ledger.NewAccountLedger(w.store)

	require.NoError(t, accounts.PostEntries(ctx, []ledger.LedgerEntry{
		{ID: "e1", AccountID: "akbar", Ref: "s1", Date: day9, Debit: dec("500")},
		{ID: "e2", AccountID: "akbar", Ref: "s2", Date: day10, Debit: dec("300")},
		{ID: "e3", AccountID: "akbar", Ref: "s2", Date: day10, Credit: dec("100")},
	}))

	report, err := w.aggregator.Ledger(ctx, "akbar", day10, day10)
	require.NoError(t, err)

	// The day-9 entry is folded into the opening, not listed.
	assert.True(t, report.Opening.Equal(dec("1500")))
	require.Len(t, report.Lines, 2)
	assert.True(t, report.Lines[0].Balance.Equal(dec("1800")))
	assert.True(t, report.Lines[1].Balance.Equal(dec("1700")))
	assert.True(t, report.Closing.Equal(dec("1700")))
}

func TestLedger_EmptyRangeClosesAtOpening(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.account(t, "akbar", ledger.AccountCustomer, "1000")

	report, err := w.aggregator.Ledger(ctx, "akbar", day10, day11)
	require.NoError(t, err)
	assert.Empty(t, report.Lines)
	assert.True(t, report.Opening.Equal(dec("1000")))
	assert.True(t, report.Closing.Equal(dec("1000")))
}

func TestLedger_Errors(t *testing.T) {
	w := newWorld(t)

	_, err := w.aggregator.Ledger(context.Background(), "ghost", day10, day10)
	assert.True(t, errors.Is(err, ledger.ErrAccountNotFound))

	w.account(t, "akbar", ledger.AccountCustomer, "0")
	_, err = w.aggregator.Ledger(context.Background(), "akbar", day11, day10)
	assert.True(t, errors.Is(err, ledger.ErrInvalidRange))
}

// =============================================================================
// DAILY SUMMARY
// =============================================================================

func TestDaily_SalesAgainstCarriedBalances(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.item(t, "rohu", "1000")
	w.account(t, "akbar", ledger.AccountCustomer, "1000")
	w.account(t, "bashir", ledger.AccountCustomer, "500")
	w.account(t, "karim", ledger.AccountSupplier, "0")

	// 40kg @ 200 = 8000; collection 1000 cash + 200 receipt.
	w.sale(t, day10, "akbar", "karim", "LHR-1", []trading.LineItem{saleLine("rohu", "45", "5", "200")}, "1000", "200")

	summary, err := w.aggregator.Daily(ctx, day10)
	require.NoError(t, err)

	assert.True(t, summary.PreviousBalance.Equal(dec("1500")), "the day's own sale must not leak into previous")
	assert.True(t, summary.TodaySales.Equal(dec("8000")))
	assert.True(t, summary.TotalAmount.Equal(dec("9500")))
	assert.True(t, summary.TotalCollection.Equal(dec("1200")))
	assert.True(t, summary.ClosingBalance.Equal(dec("8300")))
}

func TestCompareDaily_SecondDayCarriesTheFirst(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.item(t, "rohu", "1000")
	w.account(t, "akbar", ledger.AccountCustomer, "1000")
	w.account(t, "bashir", ledger.AccountCustomer, "500")
	w.account(t, "karim", ledger.AccountSupplier, "0")

	w.sale(t, day10, "akbar", "karim", "LHR-1", []trading.LineItem{saleLine("rohu", "45", "5", "200")}, "1000", "200")

	comparison, err := w.aggregator.CompareDaily(ctx, day10, day11)
	require.NoError(t, err)

	assert.True(t, comparison.First.ClosingBalance.Equal(dec("8300")))
	assert.True(t, comparison.Second.PreviousBalance.Equal(dec("8300")))
	assert.True(t, comparison.Second.TodaySales.IsZero())
	assert.True(t, comparison.Second.ClosingBalance.Equal(dec("8300")))
}

// =============================================================================
// VENDOR SALES
// =============================================================================

func TestVendorSales_GroupsInFirstSeenOrder(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.item(t, "rohu", "1000")
	w.account(t, "akbar", ledger.AccountCustomer, "0")
	w.account(t, "karim", ledger.AccountSupplier, "0")
	w.account(t, "salim", ledger.AccountSupplier, "0")

	// karim: two sales, same vehicle; salim: one sale.
	w.sale(t, day10, "akbar", "karim", "LHR-1", []trading.LineItem{saleLine("rohu", "45", "5", "200")}, "0", "0")  // 40kg / 8000
	w.sale(t, day10, "akbar", "salim", "LHR-2", []trading.LineItem{saleLine("rohu", "25", "5", "100")}, "0", "0")  // 20kg / 2000
	w.sale(t, day10, "akbar", "karim", "LHR-1", []trading.LineItem{saleLine("rohu", "15", "5", "300")}, "0", "0")  // 10kg / 3000

	report, err := w.aggregator.VendorSales(ctx, day10, day10)
	require.NoError(t, err)
	require.Len(t, report.Groups, 2)

	karim, salim := report.Groups[0], report.Groups[1]
	assert.Equal(t, ledger.AccountID("karim"), karim.SupplierID)
	assert.Len(t, karim.Sales, 2)
	assert.True(t, karim.TotalWeight.Equal(dec("50")))
	assert.True(t, karim.TotalAmount.Equal(dec("11000")))
	assert.Equal(t, 1, karim.VehicleCount, "same vehicle counted once")

	assert.Equal(t, ledger.AccountID("salim"), salim.SupplierID)
	assert.Len(t, salim.Sales, 1)
	assert.True(t, salim.TotalWeight.Equal(dec("20")))

	assert.True(t, report.TotalWeight.Equal(dec("70")))
	assert.True(t, report.TotalAmount.Equal(dec("13000")))
	assert.Equal(t, 2, report.VehicleCount)
}

func TestVendorSales_InvalidRange(t *testing.T) {
	w := newWorld(t)
	_, err := w.aggregator.VendorSales(context.Background(), day11, day10)
	assert.True(t, errors.Is(err, ledger.ErrInvalidRange))
}
