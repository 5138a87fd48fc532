/*
coordinator.go - Transaction lifecycle with atomic reconciliation

PURPOSE:
  Applies, reverses, and re-applies stock/balance effects around the
  create/update/delete of a transaction, and enforces the posted lock.

LIFECYCLE RULES:
  Create: compute totals, check stock preconditions (sales only; purchases
          always increase stock), then commit movements + entries + header
          in one unit of work. All-or-nothing: a failed stock check commits
          nothing and reports every short item.
  Update: rejected outright when posted. Otherwise the new quantities are
          validated with the edit-compensation rule (the transaction's own
          prior consumption is added back), then old effects are reversed
          and new ones applied inside one unit of work. Any failure rolls
          the reversal back - no net change from the caller's point of view.
  Delete: rejected when posted; otherwise reverses all effects and removes
          the header. Bulk delete is N independent sequential deletes, each
          atomic on its own.

CONCURRENCY:
  One mutator at a time (desktop, single writer). Reports may read
  concurrently; the unit of work guarantees they never observe the old
  transaction reversed with the new one not yet applied.
*/
package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/ledger"
)

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator owns the transaction lifecycle. All mutations run inside the
// store's unit of work; all business failures return typed errors.
type Coordinator struct {
	store              TxStore
	allowNegativeStock bool
}

// NewCoordinator creates a coordinator. allowNegativeStock is the configured
// override that lets sales drive stock below zero.
func NewCoordinator(store TxStore, allowNegativeStock bool) *Coordinator {
	return &Coordinator{store: store, allowNegativeStock: allowNegativeStock}
}

// Input is the caller-supplied content of a transaction. Computed fields of
// Lines are ignored; the coordinator recomputes everything.
type Input struct {
	Kind           Kind
	Date           time.Time
	PartyAccountID ledger.AccountID

	// Sale only.
	SupplierID ledger.AccountID
	VehicleNo  string

	Lines []LineItem

	ConcessionAmount decimal.Decimal
	CashPaid         decimal.Decimal
	CashReceived     decimal.Decimal
	ReceiptAmount    decimal.Decimal

	// Supplier bill only.
	Bill       *BillCharges
	PeriodFrom time.Time
	PeriodTo   time.Time
}

// =============================================================================
// CREATE
// =============================================================================

// CreateTransaction validates, computes, and commits a new transaction with
// its stock movements and ledger entries in one atomic unit of work.
func (c *Coordinator) CreateTransaction(ctx context.Context, input Input) (*Transaction, error) {
	if err := c.validate(ctx, input); err != nil {
		return nil, err
	}

	if input.Kind == KindSale {
		lines, _ := ComputeSale(input.Lines, input.CashReceived, input.ReceiptAmount)
		if err := c.checkStock(ctx, lines, ""); err != nil {
			return nil, err
		}
	}

	ref := ledger.TxRef(uuid.NewString())
	var tx *Transaction
	err := c.store.WithTx(ctx, func(s Store) error {
		var err error
		tx, err = c.commit(ctx, s, ref, input, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// =============================================================================
// UPDATE
// =============================================================================

// UpdateTransaction reverses the existing transaction's effects, recomputes
// from input, and re-applies - atomically. The availability check runs
// before any mutation, with the transaction's own prior consumption added
// back (edit-compensation), so an unchanged edit can never fail against its
// own stock and a failed validation leaves everything untouched.
func (c *Coordinator) UpdateTransaction(ctx context.Context, ref ledger.TxRef, input Input) (*Transaction, error) {
	existing, err := c.store.GetTransaction(ctx, ref)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ledger.ErrTransactionNotFound
	}
	if existing.Posted() {
		return nil, &ledger.LockedError{Ref: ref}
	}
	if err := c.validate(ctx, input); err != nil {
		return nil, err
	}

	if input.Kind == KindSale {
		lines, _ := ComputeSale(input.Lines, input.CashReceived, input.ReceiptAmount)
		if err := c.checkStock(ctx, lines, ref); err != nil {
			return nil, err
		}
	}

	var tx *Transaction
	err = c.store.WithTx(ctx, func(s Store) error {
		stock := ledger.NewStockLedger(s, c.allowNegativeStock)
		accounts := ledger.NewAccountLedger(s)

		if err := stock.ReverseTransaction(ctx, ref); err != nil {
			return err
		}
		if err := accounts.ReverseEntriesFor(ctx, ref); err != nil {
			return err
		}

		var err error
		tx, err = c.commit(ctx, s, ref, input, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// =============================================================================
// DELETE
// =============================================================================

// DeleteTransaction reverses all stock and balance effects of the
// transaction and removes it, atomically. After it returns, current stock
// and balances equal their values before the transaction was created.
func (c *Coordinator) DeleteTransaction(ctx context.Context, ref ledger.TxRef) error {
	existing, err := c.store.GetTransaction(ctx, ref)
	if err != nil {
		return err
	}
	if existing == nil {
		return ledger.ErrTransactionNotFound
	}
	if existing.Posted() {
		return &ledger.LockedError{Ref: ref}
	}

	return c.store.WithTx(ctx, func(s Store) error {
		stock := ledger.NewStockLedger(s, c.allowNegativeStock)
		accounts := ledger.NewAccountLedger(s)

		if err := stock.ReverseTransaction(ctx, ref); err != nil {
			return err
		}
		if err := accounts.ReverseEntriesFor(ctx, ref); err != nil {
			return err
		}
		return s.DeleteTransaction(ctx, ref)
	})
}

// DeleteResult reports the outcome of one transaction in a bulk delete.
type DeleteResult struct {
	Ref ledger.TxRef
	Err error
}

// DeleteTransactions deletes each transaction independently and in order.
// Each delete is atomic on its own; a failure leaves earlier deletions
// committed and is reported in the result list rather than aborting the
// batch.
func (c *Coordinator) DeleteTransactions(ctx context.Context, refs []ledger.TxRef) []DeleteResult {
	results := make([]DeleteResult, 0, len(refs))
	for _, ref := range refs {
		results = append(results, DeleteResult{Ref: ref, Err: c.DeleteTransaction(ctx, ref)})
	}
	return results
}

// =============================================================================
// POSTED LOCK
// =============================================================================

// PostTransaction sets the posted lock. Idempotent; there is no unpost.
func (c *Coordinator) PostTransaction(ctx context.Context, ref ledger.TxRef) (*Transaction, error) {
	tx, err := c.store.GetTransaction(ctx, ref)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ledger.ErrTransactionNotFound
	}
	if tx.Posted() {
		return tx, nil
	}
	tx.Status = StatusPosted
	tx.UpdatedAt = time.Now().UTC()
	if err := c.store.SaveTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// =============================================================================
// READ-ONLY QUERIES (live form feedback)
// =============================================================================

// CheckAvailability exposes the stock ledger's availability check, including
// edit-compensation via excludeRef, for live form validation.
func (c *Coordinator) CheckAvailability(ctx context.Context, id ledger.ItemID, required decimal.Decimal, excludeRef ledger.TxRef) (ledger.Availability, error) {
	return ledger.NewStockLedger(c.store, c.allowNegativeStock).CheckAvailability(ctx, id, required, excludeRef)
}

// CurrentBalance exposes the account ledger's live balance.
func (c *Coordinator) CurrentBalance(ctx context.Context, id ledger.AccountID) (decimal.Decimal, error) {
	return ledger.NewAccountLedger(c.store).CurrentBalance(ctx, id)
}

// =============================================================================
// SUPPLIER BILL GENERATION
// =============================================================================

// BillPreview is a computed supplier bill before commit.
type BillPreview struct {
	SupplierID  ledger.AccountID
	PeriodFrom  time.Time
	PeriodTo    time.Time
	SaleCount   int
	GrossAmount decimal.Decimal
	TotalWeight decimal.Decimal
	Totals      Totals
}

// PreviewSupplierBill aggregates the supplier's sale lines in [from, to] and
// computes the bill totals without committing anything.
func (c *Coordinator) PreviewSupplierBill(ctx context.Context, supplierID ledger.AccountID, from, to time.Time, charges BillCharges, concession, cashPaid decimal.Decimal) (*BillPreview, error) {
	if from.After(to) {
		return nil, ledger.ErrInvalidRange
	}
	supplier, err := c.store.GetAccount(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil || supplier.Kind != ledger.AccountSupplier {
		return nil, ledger.ErrAccountNotFound
	}

	gross, weight, count, err := c.aggregateSupplierSales(ctx, c.store, supplierID, from, to)
	if err != nil {
		return nil, err
	}

	return &BillPreview{
		SupplierID:  supplierID,
		PeriodFrom:  from,
		PeriodTo:    to,
		SaleCount:   count,
		GrossAmount: gross,
		TotalWeight: weight,
		Totals:      ComputeSupplierBill(gross, weight, charges, concession, cashPaid),
	}, nil
}

func (c *Coordinator) aggregateSupplierSales(ctx context.Context, s Store, supplierID ledger.AccountID, from, to time.Time) (gross, weight decimal.Decimal, count int, err error) {
	sales, err := s.ListTransactions(ctx, Filter{Kind: KindSale, SupplierID: supplierID, From: from, To: to})
	if err != nil {
		return decimal.Zero, decimal.Zero, 0, err
	}
	gross, weight = decimal.Zero, decimal.Zero
	for _, sale := range sales {
		for _, l := range sale.Lines {
			gross = gross.Add(l.Amount)
			weight = weight.Add(l.NetWeight)
		}
	}
	return gross, weight, len(sales), nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (c *Coordinator) validate(ctx context.Context, input Input) error {
	switch input.Kind {
	case KindPurchase, KindSale:
		if len(input.Lines) == 0 {
			return fmt.Errorf("%w: transaction has no line items", ledger.ErrInvalidInput)
		}
	case KindSupplierBill:
		if input.Bill == nil {
			return fmt.Errorf("%w: supplier bill has no charges", ledger.ErrInvalidInput)
		}
		if input.PeriodFrom.After(input.PeriodTo) {
			return ledger.ErrInvalidRange
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ledger.ErrInvalidInput, input.Kind)
	}
	if input.Date.IsZero() {
		return fmt.Errorf("%w: transaction date is required", ledger.ErrInvalidInput)
	}

	party, err := c.store.GetAccount(ctx, input.PartyAccountID)
	if err != nil {
		return err
	}
	if party == nil {
		return ledger.ErrAccountNotFound
	}
	wantKind := ledger.AccountSupplier
	if input.Kind == KindSale {
		wantKind = ledger.AccountCustomer
	}
	if party.Kind != wantKind {
		return fmt.Errorf("%w: %s party must be a %s", ledger.ErrInvalidInput, input.Kind, wantKind)
	}

	if input.Kind == KindSale && input.SupplierID != "" {
		supplier, err := c.store.GetAccount(ctx, input.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil || supplier.Kind != ledger.AccountSupplier {
			return ledger.ErrAccountNotFound
		}
	}

	for _, l := range input.Lines {
		item, err := c.store.GetItem(ctx, l.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ledger.ErrItemNotFound
		}
	}
	return nil
}

// checkStock validates every sale line against available stock, with
// excludeRef compensation for edits. Soft failures are aggregated so the
// caller sees every short item at once.
func (c *Coordinator) checkStock(ctx context.Context, computed []LineItem, excludeRef ledger.TxRef) error {
	stock := ledger.NewStockLedger(c.store, c.allowNegativeStock)

	required := aggregateByItem(computed, func(l LineItem) decimal.Decimal { return l.NetWeight })
	var shortages []ledger.Shortage
	for _, req := range required {
		avail, err := stock.CheckAvailability(ctx, req.itemID, req.qty, excludeRef)
		if err != nil {
			return err
		}
		if !avail.OK {
			shortages = append(shortages, ledger.Shortage{
				ItemID:    req.itemID,
				Required:  req.qty,
				Available: avail.Available,
			})
		}
	}
	if len(shortages) > 0 {
		return &ledger.InsufficientStockError{Shortages: shortages}
	}
	return nil
}

// commit computes totals and writes movements, entries, and the header.
// Runs inside the unit of work. existing carries over identity fields on
// update; nil means create.
func (c *Coordinator) commit(ctx context.Context, s Store, ref ledger.TxRef, input Input, existing *Transaction) (*Transaction, error) {
	party, err := s.GetAccount(ctx, input.PartyAccountID)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, ledger.ErrAccountNotFound
	}

	now := time.Now().UTC()
	tx := &Transaction{
		Ref:              ref,
		Kind:             input.Kind,
		Date:             ledger.DayStart(input.Date),
		Status:           StatusDraft,
		PartyAccountID:   input.PartyAccountID,
		SupplierID:       input.SupplierID,
		VehicleNo:        input.VehicleNo,
		ConcessionAmount: input.ConcessionAmount,
		CashPaid:         input.CashPaid,
		CashReceived:     input.CashReceived,
		ReceiptAmount:    input.ReceiptAmount,
		Bill:             input.Bill,
		PeriodFrom:       input.PeriodFrom,
		PeriodTo:         input.PeriodTo,
		PreviousBalance:  party.CurrentBalance,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if existing != nil {
		tx.Number = existing.Number
		tx.CreatedAt = existing.CreatedAt
	} else {
		tx.Number, err = s.NextNumber(ctx, input.Kind)
		if err != nil {
			return nil, err
		}
	}

	switch input.Kind {
	case KindPurchase:
		tx.Lines, tx.Totals = ComputePurchase(input.Lines, input.ConcessionAmount, input.CashPaid, party.CurrentBalance)
	case KindSale:
		tx.Lines, tx.Totals = ComputeSale(input.Lines, input.CashReceived, input.ReceiptAmount)
	case KindSupplierBill:
		gross, weight, _, err := c.aggregateSupplierSales(ctx, s, input.PartyAccountID, input.PeriodFrom, input.PeriodTo)
		if err != nil {
			return nil, err
		}
		tx.Totals = ComputeSupplierBill(gross, weight, *input.Bill, input.ConcessionAmount, input.CashPaid)
	}

	stock := ledger.NewStockLedger(s, c.allowNegativeStock)
	accounts := ledger.NewAccountLedger(s)

	if err := stock.ApplyMovements(ctx, c.buildMovements(tx, now)); err != nil {
		return nil, err
	}
	if err := accounts.PostEntries(ctx, c.buildEntries(tx, now)); err != nil {
		return nil, err
	}
	if err := s.SaveTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// buildMovements aggregates line quantities so each (ref, item) pair yields
// exactly one movement. Purchases commit positive quantities, sales negative.
// Supplier bills have no stock effect.
func (c *Coordinator) buildMovements(tx *Transaction, now time.Time) []ledger.StockMovement {
	if tx.Kind == KindSupplierBill {
		return nil
	}
	sign := decimal.NewFromInt(1)
	if tx.Kind == KindSale {
		sign = decimal.NewFromInt(-1)
	}

	byItem := aggregateByItem(tx.Lines, func(l LineItem) decimal.Decimal { return l.NetWeight })
	movements := make([]ledger.StockMovement, 0, len(byItem))
	for _, agg := range byItem {
		movements = append(movements, ledger.StockMovement{
			ID:        uuid.NewString(),
			ItemID:    agg.itemID,
			Ref:       tx.Ref,
			Quantity:  agg.qty.Mul(sign),
			Date:      tx.Date,
			CreatedAt: now,
		})
	}
	return movements
}

// buildEntries produces the balance effects: one debit charging the party
// with the transaction's net amount, and one credit for any payment taken
// alongside it. Debit and credit never share an entry.
func (c *Coordinator) buildEntries(tx *Transaction, now time.Time) []ledger.LedgerEntry {
	var charge, payment decimal.Decimal
	var chargeDesc, paymentDesc string

	switch tx.Kind {
	case KindPurchase:
		charge, payment = tx.Totals.NetAmount, tx.CashPaid
		chargeDesc = fmt.Sprintf("Purchase #%d", tx.Number)
		paymentDesc = fmt.Sprintf("Cash paid against purchase #%d", tx.Number)
	case KindSale:
		charge, payment = tx.Totals.NetAmount, tx.CashReceived.Add(tx.ReceiptAmount)
		chargeDesc = fmt.Sprintf("Sale #%d", tx.Number)
		paymentDesc = fmt.Sprintf("Received against sale #%d", tx.Number)
	case KindSupplierBill:
		charge, payment = tx.Totals.TotalPayable, tx.CashPaid
		chargeDesc = fmt.Sprintf("Supplier bill #%d", tx.Number)
		paymentDesc = fmt.Sprintf("Cash paid against bill #%d", tx.Number)
	}

	var entries []ledger.LedgerEntry
	if !charge.IsZero() {
		entries = append(entries, ledger.LedgerEntry{
			ID:          uuid.NewString(),
			AccountID:   tx.PartyAccountID,
			Ref:         tx.Ref,
			Date:        tx.Date,
			Debit:       charge,
			Description: chargeDesc,
			CreatedAt:   now,
		})
	}
	if !payment.IsZero() {
		entries = append(entries, ledger.LedgerEntry{
			ID:          uuid.NewString(),
			AccountID:   tx.PartyAccountID,
			Ref:         tx.Ref,
			Date:        tx.Date,
			Credit:      payment,
			Description: paymentDesc,
			CreatedAt:   now,
		})
	}
	return entries
}

// itemQty is an aggregated per-item quantity, in first-seen line order.
type itemQty struct {
	itemID ledger.ItemID
	qty    decimal.Decimal
}

func aggregateByItem(lines []LineItem, qty func(LineItem) decimal.Decimal) []itemQty {
	index := make(map[ledger.ItemID]int)
	var out []itemQty
	for _, l := range lines {
		if i, ok := index[l.ItemID]; ok {
			out[i].qty = out[i].qty.Add(qty(l))
			continue
		}
		index[l.ItemID] = len(out)
		out = append(out, itemQty{itemID: l.ItemID, qty: qty(l)})
	}
	return out
}
