/*
reports.go - Read-only projections over the ledgers and transaction history

PURPOSE:
  Builds the five printed/exported report shapes from the same primitives
  the transaction lifecycle uses. Never mutates anything: every function
  here is a pure read over the store.

REPORTS:
  StockReport      - per-item stock position as of a date
  Register         - per-account period balances for customers or suppliers
  LedgerReport     - one account's running-balance statement over a range
  DailySummary     - one day's sales vs collections, with a two-date compare
  VendorSales      - sales grouped by supplier with per-group totals

  Every ranged report rejects from > to before touching the store.
*/
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/ledger"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/trading"
)

// Aggregator reads ledgers and history to produce report aggregates.
type Aggregator struct {
	store trading.Store
}

func NewAggregator(store trading.Store) *Aggregator {
	return &Aggregator{store: store}
}

// =============================================================================
// STOCK REPORT
// =============================================================================

// StockRow is one item's position on the report date. The identity
// Remaining = Previous + Purchased - Sold holds for every row and for the
// totals row.
type StockRow struct {
	ItemID    ledger.ItemID
	Name      string
	Previous  decimal.Decimal
	Purchased decimal.Decimal
	Sold      decimal.Decimal
	Remaining decimal.Decimal
}

type StockReport struct {
	Date   time.Time
	Rows   []StockRow
	Totals StockRow
}

// StockReport computes, for each item (or just itemID when non-empty), the
// stock carried into the report date, the day's purchases and sales, and
// the remaining stock. Totals are column sums across rows.
func (a *Aggregator) StockReport(ctx context.Context, date time.Time, itemID ledger.ItemID) (*StockReport, error) {
	var items []ledger.Item
	if itemID != "" {
		item, err := a.store.GetItem(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, ledger.ErrItemNotFound
		}
		items = []ledger.Item{*item}
	} else {
		var err error
		items, err = a.store.ListItems(ctx)
		if err != nil {
			return nil, err
		}
	}

	dayStart := ledger.DayStart(date)
	report := &StockReport{Date: dayStart}
	report.Totals = StockRow{
		Previous:  decimal.Zero,
		Purchased: decimal.Zero,
		Sold:      decimal.Zero,
		Remaining: decimal.Zero,
	}

	for _, item := range items {
		before, err := a.store.MovementsByItem(ctx, item.ID, ledger.MinTime, dayStart.Add(-time.Nanosecond))
		if err != nil {
			return nil, err
		}
		today, err := a.store.MovementsByItem(ctx, item.ID, dayStart, ledger.DayEnd(date))
		if err != nil {
			return nil, err
		}

		prevIn, prevOut := splitBySign(before)
		purchased, sold := splitBySign(today)

		row := StockRow{
			ItemID:    item.ID,
			Name:      item.Name,
			Previous:  item.OpeningStock.Add(prevIn).Sub(prevOut),
			Purchased: purchased,
			Sold:      sold,
		}
		row.Remaining = row.Previous.Add(row.Purchased).Sub(row.Sold)

		report.Rows = append(report.Rows, row)
		report.Totals.Previous = report.Totals.Previous.Add(row.Previous)
		report.Totals.Purchased = report.Totals.Purchased.Add(row.Purchased)
		report.Totals.Sold = report.Totals.Sold.Add(row.Sold)
		report.Totals.Remaining = report.Totals.Remaining.Add(row.Remaining)
	}
	return report, nil
}

// splitBySign buckets movements into inbound (positive quantities) and
// outbound (negative, returned as a positive magnitude).
func splitBySign(movements []ledger.StockMovement) (in, out decimal.Decimal) {
	in, out = decimal.Zero, decimal.Zero
	for _, m := range movements {
		if m.Quantity.IsNegative() {
			out = out.Add(m.Quantity.Neg())
		} else {
			in = in.Add(m.Quantity)
		}
	}
	return in, out
}

// =============================================================================
// CUSTOMER / SUPPLIER REGISTER
// =============================================================================

// RegisterRow is one account's period activity:
// Balance = Opening + NetAmount - Collections.
type RegisterRow struct {
	AccountID   ledger.AccountID
	Name        string
	Opening     decimal.Decimal
	NetAmount   decimal.Decimal
	Collections decimal.Decimal
	Balance     decimal.Decimal
}

type RegisterReport struct {
	Kind   ledger.AccountKind
	From   time.Time
	To     time.Time
	Rows   []RegisterRow
	Totals RegisterRow
}

// Register lists every account of the given kind with its opening balance,
// period debits (net amounts charged), period credits (collections), and
// resulting balance. Grand totals are column sums.
func (a *Aggregator) Register(ctx context.Context, kind ledger.AccountKind, from, to time.Time) (*RegisterReport, error) {
	if from.After(to) {
		return nil, ledger.ErrInvalidRange
	}
	accounts, err := a.store.ListAccounts(ctx, kind)
	if err != nil {
		return nil, err
	}

	report := &RegisterReport{
		Kind: kind,
		From: ledger.DayStart(from),
		To:   ledger.DayEnd(to),
	}
	report.Totals = RegisterRow{
		Opening:     decimal.Zero,
		NetAmount:   decimal.Zero,
		Collections: decimal.Zero,
		Balance:     decimal.Zero,
	}

	for _, account := range accounts {
		entries, err := a.store.EntriesByAccount(ctx, account.ID, report.From, report.To)
		if err != nil {
			return nil, err
		}
		row := RegisterRow{
			AccountID:   account.ID,
			Name:        account.Name,
			Opening:     account.OpeningBalance,
			NetAmount:   decimal.Zero,
			Collections: decimal.Zero,
		}
		for _, e := range entries {
			row.NetAmount = row.NetAmount.Add(e.Debit)
			row.Collections = row.Collections.Add(e.Credit)
		}
		row.Balance = row.Opening.Add(row.NetAmount).Sub(row.Collections)

		report.Rows = append(report.Rows, row)
		report.Totals.Opening = report.Totals.Opening.Add(row.Opening)
		report.Totals.NetAmount = report.Totals.NetAmount.Add(row.NetAmount)
		report.Totals.Collections = report.Totals.Collections.Add(row.Collections)
		report.Totals.Balance = report.Totals.Balance.Add(row.Balance)
	}
	return report, nil
}

// =============================================================================
// LEDGER REPORT
// =============================================================================

// LedgerReport is one account's statement over a range: the balance carried
// into the range, each entry with its running balance, and the closing
// balance.
type LedgerReport struct {
	AccountID ledger.AccountID
	Name      string
	From      time.Time
	To        time.Time
	Opening   decimal.Decimal
	Lines     []ledger.RunningBalance
	Closing   decimal.Decimal
}

// Ledger folds the account's entries within [from, to] over the balance as
// of range start. Entry order is date then insertion order, exactly as
// stored; the fold never reorders.
func (a *Aggregator) Ledger(ctx context.Context, accountID ledger.AccountID, from, to time.Time) (*LedgerReport, error) {
	if from.After(to) {
		return nil, ledger.ErrInvalidRange
	}
	account, err := a.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ledger.ErrAccountNotFound
	}

	accountLedger := ledger.NewAccountLedger(a.store)
	opening, err := accountLedger.BalanceAsOf(ctx, accountID, ledger.DayStart(from))
	if err != nil {
		return nil, err
	}
	entries, err := a.store.EntriesByAccount(ctx, accountID, ledger.DayStart(from), ledger.DayEnd(to))
	if err != nil {
		return nil, err
	}

	lines := ledger.RunningBalances(opening, entries)
	closing := opening
	if len(lines) > 0 {
		closing = lines[len(lines)-1].Balance
	}

	return &LedgerReport{
		AccountID: accountID,
		Name:      account.Name,
		From:      ledger.DayStart(from),
		To:        ledger.DayEnd(to),
		Opening:   opening,
		Lines:     lines,
		Closing:   closing,
	}, nil
}

// =============================================================================
// DAILY NET AMOUNT SUMMARY
// =============================================================================

// DailySummary is one day's position across all customers:
// TotalAmount = PreviousBalance + TodaySales, then
// ClosingBalance = TotalAmount - TotalCollection.
type DailySummary struct {
	Date            time.Time
	PreviousBalance decimal.Decimal
	TodaySales      decimal.Decimal
	TotalAmount     decimal.Decimal
	TotalCollection decimal.Decimal
	ClosingBalance  decimal.Decimal
}

// DailyComparison runs the identical computation for two dates.
type DailyComparison struct {
	First  DailySummary
	Second DailySummary
}

// Daily computes the net-amount summary for one date. The previous balance
// is the sum of all customer balances carried into the day; today's sales
// and collections come from that day's sale transactions.
func (a *Aggregator) Daily(ctx context.Context, date time.Time) (*DailySummary, error) {
	dayStart := ledger.DayStart(date)

	customers, err := a.store.ListAccounts(ctx, ledger.AccountCustomer)
	if err != nil {
		return nil, err
	}
	accountLedger := ledger.NewAccountLedger(a.store)
	previous := decimal.Zero
	for _, customer := range customers {
		balance, err := accountLedger.BalanceAsOf(ctx, customer.ID, dayStart)
		if err != nil {
			return nil, err
		}
		previous = previous.Add(balance)
	}

	sales, err := a.store.ListTransactions(ctx, trading.Filter{
		Kind: trading.KindSale,
		From: dayStart,
		To:   ledger.DayEnd(date),
	})
	if err != nil {
		return nil, err
	}

	todaySales, collection := decimal.Zero, decimal.Zero
	for _, sale := range sales {
		todaySales = todaySales.Add(sale.Totals.NetAmount)
		collection = collection.Add(sale.CashReceived).Add(sale.ReceiptAmount)
	}

	total := previous.Add(todaySales)
	return &DailySummary{
		Date:            dayStart,
		PreviousBalance: previous,
		TodaySales:      todaySales,
		TotalAmount:     total,
		TotalCollection: collection,
		ClosingBalance:  total.Sub(collection),
	}, nil
}

// CompareDaily runs the daily summary for two dates, for side-by-side
// display. The dates need not be ordered or adjacent.
func (a *Aggregator) CompareDaily(ctx context.Context, first, second time.Time) (*DailyComparison, error) {
	a1, err := a.Daily(ctx, first)
	if err != nil {
		return nil, err
	}
	a2, err := a.Daily(ctx, second)
	if err != nil {
		return nil, err
	}
	return &DailyComparison{First: *a1, Second: *a2}, nil
}

// =============================================================================
// VENDOR SALES GROUPING
// =============================================================================

// VendorGroup is one supplier's sales in the range. Sales keep their input
// order; VehicleCount is the number of distinct vehicle numbers in the
// group.
type VendorGroup struct {
	SupplierID   ledger.AccountID
	Name         string
	Sales        []trading.Transaction
	TotalWeight  decimal.Decimal
	TotalAmount  decimal.Decimal
	VehicleCount int
}

type VendorSalesReport struct {
	From         time.Time
	To           time.Time
	Groups       []VendorGroup
	TotalWeight  decimal.Decimal
	TotalAmount  decimal.Decimal
	VehicleCount int
}

// VendorSales groups the range's sale transactions by supplier, in the
// order suppliers first appear, and sums group totals into a grand total.
func (a *Aggregator) VendorSales(ctx context.Context, from, to time.Time) (*VendorSalesReport, error) {
	if from.After(to) {
		return nil, ledger.ErrInvalidRange
	}
	sales, err := a.store.ListTransactions(ctx, trading.Filter{
		Kind: trading.KindSale,
		From: ledger.DayStart(from),
		To:   ledger.DayEnd(to),
	})
	if err != nil {
		return nil, err
	}

	report := &VendorSalesReport{
		From:        ledger.DayStart(from),
		To:          ledger.DayEnd(to),
		TotalWeight: decimal.Zero,
		TotalAmount: decimal.Zero,
	}

	index := make(map[ledger.AccountID]int)
	vehicles := make(map[ledger.AccountID]map[string]bool)
	for _, sale := range sales {
		i, ok := index[sale.SupplierID]
		if !ok {
			name := ""
			if sale.SupplierID != "" {
				supplier, err := a.store.GetAccount(ctx, sale.SupplierID)
				if err != nil {
					return nil, err
				}
				if supplier != nil {
					name = supplier.Name
				}
			}
			i = len(report.Groups)
			index[sale.SupplierID] = i
			vehicles[sale.SupplierID] = make(map[string]bool)
			report.Groups = append(report.Groups, VendorGroup{
				SupplierID:  sale.SupplierID,
				Name:        name,
				TotalWeight: decimal.Zero,
				TotalAmount: decimal.Zero,
			})
		}

		group := &report.Groups[i]
		group.Sales = append(group.Sales, sale)
		group.TotalWeight = group.TotalWeight.Add(sale.Totals.TotalWeight)
		group.TotalAmount = group.TotalAmount.Add(sale.Totals.NetAmount)
		if sale.VehicleNo != "" && !vehicles[sale.SupplierID][sale.VehicleNo] {
			vehicles[sale.SupplierID][sale.VehicleNo] = true
			group.VehicleCount++
		}
	}

	for _, group := range report.Groups {
		report.TotalWeight = report.TotalWeight.Add(group.TotalWeight)
		report.TotalAmount = report.TotalAmount.Add(group.TotalAmount)
		report.VehicleCount += group.VehicleCount
	}
	return report, nil
}
