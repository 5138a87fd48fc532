/*
handlers.go - HTTP API handlers for the distributor core

PURPOSE:
  Exposes master data, transactions, and reports via REST. Handles HTTP
  request/response and JSON serialization; all business logic lives in the
  trading coordinator and the report aggregator.

ENDPOINTS:
  Items:
    GET    /api/items                   List items
    POST   /api/items                   Create/update item
    GET    /api/items/{id}              Get item
    GET    /api/items/{id}/availability Live stock check

  Accounts:
    GET    /api/accounts                List accounts (?kind=customer|supplier)
    POST   /api/accounts                Create/update account
    GET    /api/accounts/{id}           Get account
    GET    /api/accounts/{id}/balance   Live balance

  Transactions:
    GET    /api/transactions            List (?kind, ?party_id, ?supplier_id, ?from, ?to)
    POST   /api/transactions            Create
    GET    /api/transactions/{ref}      Get
    PUT    /api/transactions/{ref}      Update (reverse + reapply)
    DELETE /api/transactions/{ref}      Delete (reverse + remove)
    POST   /api/transactions/{ref}/post Set the posted lock
    POST   /api/transactions/bulk-delete Delete N transactions independently

  Bills:
    POST   /api/bills/preview           Compute a supplier bill without commit

  Reports:
    GET    /api/reports/stock           Stock report (?date, ?item_id)
    GET    /api/reports/register        Customer/supplier register (?kind, ?from, ?to)
    GET    /api/reports/ledger          Account statement (?account_id, ?from, ?to)
    GET    /api/reports/daily           Daily summary (?date, ?compare)
    GET    /api/reports/vendor-sales    Vendor grouping (?from, ?to)

ERROR HANDLING:
  Business errors map to HTTP status by type:
  - 400: invalid input, invalid date range
  - 404: item/account/transaction not found
  - 409: posted lock (edit/delete of a posted transaction)
  - 422: insufficient stock (with per-item shortfalls)
  - 500: storage failures

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/ledger"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/reports"
	"github.com/haris936hk/FISHPLUS-Distributor-sub000/trading"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	store       trading.TxStore
	coordinator *trading.Coordinator
	aggregator  *reports.Aggregator
	log         zerolog.Logger
}

// NewHandler creates a handler over the given store.
func NewHandler(store trading.TxStore, allowNegativeStock bool, log zerolog.Logger) *Handler {
	return &Handler{
		store:       store,
		coordinator: trading.NewCoordinator(store, allowNegativeStock),
		aggregator:  reports.NewAggregator(store),
		log:         log,
	}
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// ListItems returns all items.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]ItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toItemDTO(item)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetItem returns a single item.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.GetItem(r.Context(), ledger.ItemID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "Item not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(*item))
}

// SaveItem creates or updates an item. On create, current stock starts at
// the opening stock; on update, committed movements are preserved by
// carrying the delta between old and new opening into current stock.
func (h *Handler) SaveItem(w http.ResponseWriter, r *http.Request) {
	var req SaveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	ctx := r.Context()
	existing, err := h.store.GetItem(ctx, ledger.ItemID(req.ID))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	item := ledger.Item{
		ID:           ledger.ItemID(req.ID),
		Name:         req.Name,
		OpeningStock: req.OpeningStock,
		CurrentStock: req.OpeningStock,
		CreatedAt:    time.Now().UTC(),
	}
	status := http.StatusCreated
	if existing != nil {
		committed := existing.CurrentStock.Sub(existing.OpeningStock)
		item.CurrentStock = req.OpeningStock.Add(committed)
		item.CreatedAt = existing.CreatedAt
		status = http.StatusOK
	}

	if err := h.store.SaveItem(ctx, item); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, status, toItemDTO(item))
}

// CheckAvailability is the live form-feedback stock check.
// GET /api/items/{id}/availability?required=12.5&exclude_ref=...
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id := ledger.ItemID(chi.URLParam(r, "id"))
	required, err := decimal.NewFromString(r.URL.Query().Get("required"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid required quantity", err)
		return
	}
	excludeRef := ledger.TxRef(r.URL.Query().Get("exclude_ref"))

	avail, err := h.coordinator.CheckAvailability(r.Context(), id, required, excludeRef)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityDTO{
		ItemID:    string(id),
		Required:  required,
		Available: avail.Available,
		OK:        avail.OK,
	})
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns accounts, optionally filtered by kind.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	kind := ledger.AccountKind(r.URL.Query().Get("kind"))
	if kind != "" && kind != ledger.AccountCustomer && kind != ledger.AccountSupplier {
		writeError(w, http.StatusBadRequest, "kind must be customer or supplier", nil)
		return
	}

	accounts, err := h.store.ListAccounts(r.Context(), kind)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, account := range accounts {
		dtos[i] = toAccountDTO(account)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns a single account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.store.GetAccount(r.Context(), ledger.AccountID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(*account))
}

// SaveAccount creates or updates an account. The same opening-vs-committed
// split as items: editing the opening balance shifts the current balance by
// the same delta, never touching committed entries.
func (h *Handler) SaveAccount(w http.ResponseWriter, r *http.Request) {
	var req SaveAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	kind := ledger.AccountKind(req.Kind)
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	if kind != ledger.AccountCustomer && kind != ledger.AccountSupplier {
		writeError(w, http.StatusBadRequest, "kind must be customer or supplier", nil)
		return
	}

	ctx := r.Context()
	existing, err := h.store.GetAccount(ctx, ledger.AccountID(req.ID))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	account := ledger.Account{
		ID:             ledger.AccountID(req.ID),
		Name:           req.Name,
		Kind:           kind,
		Phone:          req.Phone,
		Address:        req.Address,
		OpeningBalance: req.OpeningBalance,
		CurrentBalance: req.OpeningBalance,
		CreatedAt:      time.Now().UTC(),
	}
	status := http.StatusCreated
	if existing != nil {
		committed := existing.CurrentBalance.Sub(existing.OpeningBalance)
		account.CurrentBalance = req.OpeningBalance.Add(committed)
		account.CreatedAt = existing.CreatedAt
		status = http.StatusOK
	}

	if err := h.store.SaveAccount(ctx, account); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, status, toAccountDTO(account))
}

// GetBalance is the live balance lookup for forms.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))
	balance, err := h.coordinator.CurrentBalance(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{AccountID: string(id), Balance: balance})
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns transactions matching the query filters.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := trading.Filter{
		Kind:       trading.Kind(q.Get("kind")),
		PartyID:    ledger.AccountID(q.Get("party_id")),
		SupplierID: ledger.AccountID(q.Get("supplier_id")),
	}
	if s := q.Get("from"); s != "" {
		from, err := time.Parse(dateLayout, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		filter.From = ledger.DayStart(from)
	}
	if s := q.Get("to"); s != "" {
		to, err := time.Parse(dateLayout, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
		filter.To = ledger.DayEnd(to)
	}

	txs, err := h.store.ListTransactions(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]TransactionDTO, len(txs))
	for i := range txs {
		dtos[i] = toTransactionDTO(&txs[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTransaction returns a single transaction.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.store.GetTransaction(r.Context(), ledger.TxRef(chi.URLParam(r, "ref")))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if tx == nil {
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// CreateTransaction commits a new purchase, sale, or supplier bill.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	tx, err := h.coordinator.CreateTransaction(r.Context(), input)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.log.Info().
		Str("ref", string(tx.Ref)).
		Str("kind", string(tx.Kind)).
		Int64("number", tx.Number).
		Msg("transaction created")
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// UpdateTransaction reverses and re-applies an existing transaction.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ref := ledger.TxRef(chi.URLParam(r, "ref"))
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	tx, err := h.coordinator.UpdateTransaction(r.Context(), ref, input)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.log.Info().Str("ref", string(ref)).Msg("transaction updated")
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// DeleteTransaction reverses a transaction's effects and removes it.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ref := ledger.TxRef(chi.URLParam(r, "ref"))
	if err := h.coordinator.DeleteTransaction(r.Context(), ref); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.log.Info().Str("ref", string(ref)).Msg("transaction deleted")
	w.WriteHeader(http.StatusNoContent)
}

// BulkDeleteTransactions deletes each listed transaction independently and
// reports per-transaction outcomes. A failure does not abort the batch.
func (h *Handler) BulkDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	refs := make([]ledger.TxRef, len(req.Refs))
	for i, ref := range req.Refs {
		refs[i] = ledger.TxRef(ref)
	}

	results := h.coordinator.DeleteTransactions(r.Context(), refs)
	dtos := make([]BulkDeleteResultDTO, len(results))
	for i, res := range results {
		dtos[i] = BulkDeleteResultDTO{Ref: string(res.Ref), OK: res.Err == nil}
		if res.Err != nil {
			dtos[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PostTransaction sets the posted lock.
func (h *Handler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	ref := ledger.TxRef(chi.URLParam(r, "ref"))
	tx, err := h.coordinator.PostTransaction(r.Context(), ref)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.log.Info().Str("ref", string(ref)).Msg("transaction posted")
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// decodeInput parses a TransactionRequest body into a coordinator Input.
func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (trading.Input, bool) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return trading.Input{}, false
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return trading.Input{}, false
	}

	input := trading.Input{
		Kind:             trading.Kind(req.Kind),
		Date:             date,
		PartyAccountID:   ledger.AccountID(req.PartyAccountID),
		SupplierID:       ledger.AccountID(req.SupplierID),
		VehicleNo:        req.VehicleNo,
		ConcessionAmount: req.ConcessionAmount,
		CashPaid:         req.CashPaid,
		CashReceived:     req.CashReceived,
		ReceiptAmount:    req.ReceiptAmount,
	}

	for _, l := range req.Lines {
		input.Lines = append(input.Lines, trading.LineItem{
			ItemID:         ledger.ItemID(l.ItemID),
			Weight:         l.Weight,
			GrossWeight:    l.GrossWeight,
			TareWeight:     l.TareWeight,
			Rate:           l.Rate,
			GroceryCharges: l.GroceryCharges,
			IceCharges:     l.IceCharges,
		})
	}

	if req.Bill != nil {
		input.Bill = &trading.BillCharges{
			CommissionPct: req.Bill.CommissionPct,
			Drugs:         req.Bill.Drugs,
			Fare:          req.Bill.Fare,
			Labor:         req.Bill.Labor,
			Ice:           req.Bill.Ice,
		}
	}
	if req.PeriodFrom != "" {
		from, err := time.Parse(dateLayout, req.PeriodFrom)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period_from (use YYYY-MM-DD)", err)
			return trading.Input{}, false
		}
		input.PeriodFrom = ledger.DayStart(from)
	}
	if req.PeriodTo != "" {
		to, err := time.Parse(dateLayout, req.PeriodTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period_to (use YYYY-MM-DD)", err)
			return trading.Input{}, false
		}
		input.PeriodTo = ledger.DayEnd(to)
	}
	return input, true
}

// =============================================================================
// BILL HANDLERS
// =============================================================================

// PreviewBill computes a supplier bill from the supplier's sale lines in a
// period, without committing anything.
func (h *Handler) PreviewBill(w http.ResponseWriter, r *http.Request) {
	var req BillPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	from, err := time.Parse(dateLayout, req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := time.Parse(dateLayout, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	charges := trading.BillCharges{
		CommissionPct: req.CommissionPct,
		Drugs:         req.Drugs,
		Fare:          req.Fare,
		Labor:         req.Labor,
		Ice:           req.Ice,
	}
	preview, err := h.coordinator.PreviewSupplierBill(r.Context(),
		ledger.AccountID(req.SupplierID), ledger.DayStart(from), ledger.DayEnd(to),
		charges, req.ConcessionAmount, req.CashPaid)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BillPreviewDTO{
		SupplierID:  string(preview.SupplierID),
		From:        preview.PeriodFrom.Format(dateLayout),
		To:          preview.PeriodTo.Format(dateLayout),
		SaleCount:   preview.SaleCount,
		GrossAmount: preview.GrossAmount,
		TotalWeight: preview.TotalWeight,
		Totals: TotalsDTO{
			TotalWeight:      preview.Totals.TotalWeight,
			GrossAmount:      preview.Totals.GrossAmount,
			NetAmount:        preview.Totals.NetAmount,
			BalanceAmount:    preview.Totals.BalanceAmount,
			CommissionAmount: preview.Totals.CommissionAmount,
			TotalCharges:     preview.Totals.TotalCharges,
			NetPayable:       preview.Totals.NetPayable,
			TotalPayable:     preview.Totals.TotalPayable,
		},
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// StockReport returns each item's stock position as of a date.
// GET /api/reports/stock?date=YYYY-MM-DD&item_id=...
func (h *Handler) StockReport(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDateParam(w, r, "date", time.Now())
	if !ok {
		return
	}
	itemID := ledger.ItemID(r.URL.Query().Get("item_id"))

	report, err := h.aggregator.StockReport(r.Context(), date, itemID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dto := StockReportDTO{
		Date:   report.Date.Format(dateLayout),
		Rows:   make([]StockRowDTO, len(report.Rows)),
		Totals: toStockRowDTO(report.Totals),
	}
	for i, row := range report.Rows {
		dto.Rows[i] = toStockRowDTO(row)
	}
	writeJSON(w, http.StatusOK, dto)
}

// RegisterReport returns the customer or supplier register for a period.
// GET /api/reports/register?kind=customer&from=...&to=...
func (h *Handler) RegisterReport(w http.ResponseWriter, r *http.Request) {
	kind := ledger.AccountKind(r.URL.Query().Get("kind"))
	if kind != ledger.AccountCustomer && kind != ledger.AccountSupplier {
		writeError(w, http.StatusBadRequest, "kind must be customer or supplier", nil)
		return
	}
	from, to, ok := h.parseRangeParams(w, r)
	if !ok {
		return
	}

	report, err := h.aggregator.Register(r.Context(), kind, from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dto := RegisterReportDTO{
		Kind:   string(report.Kind),
		From:   report.From.Format(dateLayout),
		To:     report.To.Format(dateLayout),
		Rows:   make([]RegisterRowDTO, len(report.Rows)),
		Totals: toRegisterRowDTO(report.Totals),
	}
	for i, row := range report.Rows {
		dto.Rows[i] = toRegisterRowDTO(row)
	}
	writeJSON(w, http.StatusOK, dto)
}

// LedgerReport returns one account's running-balance statement.
// GET /api/reports/ledger?account_id=...&from=...&to=...
func (h *Handler) LedgerReport(w http.ResponseWriter, r *http.Request) {
	accountID := ledger.AccountID(r.URL.Query().Get("account_id"))
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "account_id is required", nil)
		return
	}
	from, to, ok := h.parseRangeParams(w, r)
	if !ok {
		return
	}

	report, err := h.aggregator.Ledger(r.Context(), accountID, from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dto := LedgerReportDTO{
		AccountID: string(report.AccountID),
		Name:      report.Name,
		From:      report.From.Format(dateLayout),
		To:        report.To.Format(dateLayout),
		Opening:   report.Opening,
		Lines:     make([]LedgerLineDTO, len(report.Lines)),
		Closing:   report.Closing,
	}
	for i, line := range report.Lines {
		dto.Lines[i] = LedgerLineDTO{
			Date:        line.Entry.Date.Format(dateLayout),
			Ref:         string(line.Entry.Ref),
			Description: line.Entry.Description,
			Debit:       line.Entry.Debit,
			Credit:      line.Entry.Credit,
			Balance:     line.Balance,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// DailyReport returns the daily net amount summary; with ?compare= it runs
// the identical computation for both dates.
// GET /api/reports/daily?date=YYYY-MM-DD[&compare=YYYY-MM-DD]
func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDateParam(w, r, "date", time.Now())
	if !ok {
		return
	}

	if compare := r.URL.Query().Get("compare"); compare != "" {
		second, err := time.Parse(dateLayout, compare)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid compare date (use YYYY-MM-DD)", err)
			return
		}
		comparison, err := h.aggregator.CompareDaily(r.Context(), date, second)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, DailyComparisonDTO{
			First:  toDailySummaryDTO(comparison.First),
			Second: toDailySummaryDTO(comparison.Second),
		})
		return
	}

	summary, err := h.aggregator.Daily(r.Context(), date)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDailySummaryDTO(*summary))
}

// VendorSalesReport returns sales grouped by supplier.
// GET /api/reports/vendor-sales?from=...&to=...
func (h *Handler) VendorSalesReport(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRangeParams(w, r)
	if !ok {
		return
	}

	report, err := h.aggregator.VendorSales(r.Context(), from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dto := VendorSalesReportDTO{
		From:         report.From.Format(dateLayout),
		To:           report.To.Format(dateLayout),
		Groups:       make([]VendorGroupDTO, len(report.Groups)),
		TotalWeight:  report.TotalWeight,
		TotalAmount:  report.TotalAmount,
		VehicleCount: report.VehicleCount,
	}
	for i, group := range report.Groups {
		dto.Groups[i] = VendorGroupDTO{
			SupplierID:   string(group.SupplierID),
			Name:         group.Name,
			SaleCount:    len(group.Sales),
			TotalWeight:  group.TotalWeight,
			TotalAmount:  group.TotalAmount,
			VehicleCount: group.VehicleCount,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) parseDateParam(w http.ResponseWriter, r *http.Request, name string, def time.Time) (time.Time, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}
	date, err := time.Parse(dateLayout, s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name+" (use YYYY-MM-DD)", err)
		return time.Time{}, false
	}
	return date, true
}

func (h *Handler) parseRangeParams(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	from, ok = h.parseDateParam(w, r, "from", ledger.MinTime)
	if !ok {
		return
	}
	to, ok = h.parseDateParam(w, r, "to", ledger.MaxTime)
	return
}

// writeDomainError maps business errors to HTTP statuses. Storage failures
// fall through to 500 and get logged; business failures are the caller's to
// fix and are not log noise.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *ledger.InsufficientStockError
	if errors.As(err, &stockErr) {
		resp := ErrorResponse{Error: "Insufficient stock"}
		for _, s := range stockErr.Shortages {
			resp.Shortages = append(resp.Shortages, ShortfallDTO{
				ItemID:    string(s.ItemID),
				Required:  s.Required,
				Available: s.Available,
			})
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	switch {
	case errors.Is(err, ledger.ErrLocked):
		writeError(w, http.StatusConflict, "Transaction is posted and locked", err)
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case ledger.IsValidation(err):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	default:
		h.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func toItemDTO(item ledger.Item) ItemDTO {
	return ItemDTO{
		ID:           string(item.ID),
		Name:         item.Name,
		OpeningStock: item.OpeningStock,
		CurrentStock: item.CurrentStock,
		CreatedAt:    item.CreatedAt.Format(timestampLayout),
	}
}

func toAccountDTO(account ledger.Account) AccountDTO {
	return AccountDTO{
		ID:             string(account.ID),
		Name:           account.Name,
		Kind:           string(account.Kind),
		Phone:          account.Phone,
		Address:        account.Address,
		OpeningBalance: account.OpeningBalance,
		CurrentBalance: account.CurrentBalance,
		CreatedAt:      account.CreatedAt.Format(timestampLayout),
	}
}

func toStockRowDTO(row reports.StockRow) StockRowDTO {
	return StockRowDTO{
		ItemID:    string(row.ItemID),
		Name:      row.Name,
		Previous:  row.Previous,
		Purchased: row.Purchased,
		Sold:      row.Sold,
		Remaining: row.Remaining,
	}
}

func toRegisterRowDTO(row reports.RegisterRow) RegisterRowDTO {
	return RegisterRowDTO{
		AccountID:   string(row.AccountID),
		Name:        row.Name,
		Opening:     row.Opening,
		NetAmount:   row.NetAmount,
		Collections: row.Collections,
		Balance:     row.Balance,
	}
}

func toDailySummaryDTO(s reports.DailySummary) DailySummaryDTO {
	return DailySummaryDTO{
		Date:            s.Date.Format(dateLayout),
		PreviousBalance: s.PreviousBalance,
		TodaySales:      s.TodaySales,
		TotalAmount:     s.TotalAmount,
		TotalCollection: s.TotalCollection,
		ClosingBalance:  s.ClosingBalance,
	}
}
