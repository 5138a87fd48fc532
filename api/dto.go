/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the domain
  model from the external contract.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

AMOUNTS AND DATES:
  Amounts travel as JSON decimal numbers (shopspring/decimal handles exact
  parsing). Dates travel as YYYY-MM-DD strings; handlers parse them.

SEE ALSO:
  - handlers.go: uses these types
  - server.go: route wiring
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/trading"
)

// =============================================================================
// MASTER DATA
// =============================================================================

// ItemDTO represents an item in API responses.
type ItemDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	OpeningStock decimal.Decimal `json:"opening_stock"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	CreatedAt    string          `json:"created_at,omitempty"`
}

// SaveItemRequest creates or updates an item.
type SaveItemRequest struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	OpeningStock decimal.Decimal `json:"opening_stock"`
}

// AccountDTO represents a customer or supplier in API responses.
type AccountDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedAt      string          `json:"created_at,omitempty"`
}

// SaveAccountRequest creates or updates an account.
type SaveAccountRequest struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// LineItemRequest is one input line of a purchase or sale.
type LineItemRequest struct {
	ItemID         string          `json:"item_id"`
	Weight         decimal.Decimal `json:"weight,omitempty"`
	GrossWeight    decimal.Decimal `json:"gross_weight,omitempty"`
	TareWeight     decimal.Decimal `json:"tare_weight,omitempty"`
	Rate           decimal.Decimal `json:"rate"`
	GroceryCharges decimal.Decimal `json:"grocery_charges,omitempty"`
	IceCharges     decimal.Decimal `json:"ice_charges,omitempty"`
}

// BillChargesRequest are the header deductions of a supplier bill.
type BillChargesRequest struct {
	CommissionPct decimal.Decimal `json:"commission_pct"`
	Drugs         decimal.Decimal `json:"drugs"`
	Fare          decimal.Decimal `json:"fare"`
	Labor         decimal.Decimal `json:"labor"`
	Ice           decimal.Decimal `json:"ice"`
}

// TransactionRequest creates or updates a transaction.
type TransactionRequest struct {
	Kind           string            `json:"kind"`
	Date           string            `json:"date"` // YYYY-MM-DD
	PartyAccountID string            `json:"party_account_id"`
	SupplierID     string            `json:"supplier_id,omitempty"`
	VehicleNo      string            `json:"vehicle_no,omitempty"`
	Lines          []LineItemRequest `json:"lines,omitempty"`

	ConcessionAmount decimal.Decimal `json:"concession_amount,omitempty"`
	CashPaid         decimal.Decimal `json:"cash_paid,omitempty"`
	CashReceived     decimal.Decimal `json:"cash_received,omitempty"`
	ReceiptAmount    decimal.Decimal `json:"receipt_amount,omitempty"`

	Bill       *BillChargesRequest `json:"bill,omitempty"`
	PeriodFrom string              `json:"period_from,omitempty"` // YYYY-MM-DD
	PeriodTo   string              `json:"period_to,omitempty"`   // YYYY-MM-DD
}

// LineItemDTO is one computed line in a response.
type LineItemDTO struct {
	ItemID         string          `json:"item_id"`
	Weight         decimal.Decimal `json:"weight"`
	GrossWeight    decimal.Decimal `json:"gross_weight"`
	TareWeight     decimal.Decimal `json:"tare_weight"`
	Rate           decimal.Decimal `json:"rate"`
	GroceryCharges decimal.Decimal `json:"grocery_charges"`
	IceCharges     decimal.Decimal `json:"ice_charges"`
	NetWeight      decimal.Decimal `json:"net_weight"`
	Amount         decimal.Decimal `json:"amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
}

// TotalsDTO mirrors trading.Totals.
type TotalsDTO struct {
	TotalWeight      decimal.Decimal `json:"total_weight"`
	GrossAmount      decimal.Decimal `json:"gross_amount"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	BalanceAmount    decimal.Decimal `json:"balance_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount,omitempty"`
	TotalCharges     decimal.Decimal `json:"total_charges,omitempty"`
	NetPayable       decimal.Decimal `json:"net_payable,omitempty"`
	TotalPayable     decimal.Decimal `json:"total_payable,omitempty"`
}

// TransactionDTO is a committed transaction in API responses.
type TransactionDTO struct {
	Ref            string        `json:"ref"`
	Number         int64         `json:"number"`
	Kind           string        `json:"kind"`
	Date           string        `json:"date"`
	Status         string        `json:"status"`
	PartyAccountID string        `json:"party_account_id"`
	SupplierID     string        `json:"supplier_id,omitempty"`
	VehicleNo      string        `json:"vehicle_no,omitempty"`
	Lines          []LineItemDTO `json:"lines"`

	ConcessionAmount decimal.Decimal `json:"concession_amount"`
	CashPaid         decimal.Decimal `json:"cash_paid"`
	CashReceived     decimal.Decimal `json:"cash_received"`
	ReceiptAmount    decimal.Decimal `json:"receipt_amount"`

	Bill       *BillChargesRequest `json:"bill,omitempty"`
	PeriodFrom string              `json:"period_from,omitempty"`
	PeriodTo   string              `json:"period_to,omitempty"`

	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Totals          TotalsDTO       `json:"totals"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// BulkDeleteRequest deletes a set of transactions, each independently.
type BulkDeleteRequest struct {
	Refs []string `json:"refs"`
}

// BulkDeleteResultDTO reports one transaction's outcome in a bulk delete.
type BulkDeleteResultDTO struct {
	Ref   string `json:"ref"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// =============================================================================
// QUERIES AND BILLS
// =============================================================================

// AvailabilityDTO is the live form-feedback stock check result.
type AvailabilityDTO struct {
	ItemID    string          `json:"item_id"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	OK        bool            `json:"ok"`
}

// BalanceDTO is the live account balance.
type BalanceDTO struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// BillPreviewRequest computes a supplier bill without committing it.
type BillPreviewRequest struct {
	SupplierID       string          `json:"supplier_id"`
	From             string          `json:"from"` // YYYY-MM-DD
	To               string          `json:"to"`   // YYYY-MM-DD
	CommissionPct    decimal.Decimal `json:"commission_pct"`
	Drugs            decimal.Decimal `json:"drugs"`
	Fare             decimal.Decimal `json:"fare"`
	Labor            decimal.Decimal `json:"labor"`
	Ice              decimal.Decimal `json:"ice"`
	ConcessionAmount decimal.Decimal `json:"concession_amount"`
	CashPaid         decimal.Decimal `json:"cash_paid"`
}

// BillPreviewDTO is the computed supplier bill before commit.
type BillPreviewDTO struct {
	SupplierID  string          `json:"supplier_id"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	SaleCount   int             `json:"sale_count"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
	TotalWeight decimal.Decimal `json:"total_weight"`
	Totals      TotalsDTO       `json:"totals"`
}

// =============================================================================
// REPORTS
// =============================================================================

// StockRowDTO is one item's row on the stock report.
type StockRowDTO struct {
	ItemID    string          `json:"item_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Previous  decimal.Decimal `json:"previous"`
	Purchased decimal.Decimal `json:"purchased"`
	Sold      decimal.Decimal `json:"sold"`
	Remaining decimal.Decimal `json:"remaining"`
}

type StockReportDTO struct {
	Date   string        `json:"date"`
	Rows   []StockRowDTO `json:"rows"`
	Totals StockRowDTO   `json:"totals"`
}

// RegisterRowDTO is one account's row on the customer/supplier register.
type RegisterRowDTO struct {
	AccountID   string          `json:"account_id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Opening     decimal.Decimal `json:"opening"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	Collections decimal.Decimal `json:"collections"`
	Balance     decimal.Decimal `json:"balance"`
}

type RegisterReportDTO struct {
	Kind   string           `json:"kind"`
	From   string           `json:"from"`
	To     string           `json:"to"`
	Rows   []RegisterRowDTO `json:"rows"`
	Totals RegisterRowDTO   `json:"totals"`
}

// LedgerLineDTO is one statement line with its running balance.
type LedgerLineDTO struct {
	Date        string          `json:"date"`
	Ref         string          `json:"ref"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

type LedgerReportDTO struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Opening   decimal.Decimal `json:"opening"`
	Lines     []LedgerLineDTO `json:"lines"`
	Closing   decimal.Decimal `json:"closing"`
}

type DailySummaryDTO struct {
	Date            string          `json:"date"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	TodaySales      decimal.Decimal `json:"today_sales"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalCollection decimal.Decimal `json:"total_collection"`
	ClosingBalance  decimal.Decimal `json:"closing_balance"`
}

type DailyComparisonDTO struct {
	First  DailySummaryDTO `json:"first"`
	Second DailySummaryDTO `json:"second"`
}

// VendorGroupDTO is one supplier's aggregate on the vendor sales report.
type VendorGroupDTO struct {
	SupplierID   string          `json:"supplier_id"`
	Name         string          `json:"name"`
	SaleCount    int             `json:"sale_count"`
	TotalWeight  decimal.Decimal `json:"total_weight"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	VehicleCount int             `json:"vehicle_count"`
}

type VendorSalesReportDTO struct {
	From         string           `json:"from"`
	To           string           `json:"to"`
	Groups       []VendorGroupDTO `json:"groups"`
	TotalWeight  decimal.Decimal  `json:"total_weight"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	VehicleCount int              `json:"vehicle_count"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error     string         `json:"error"`
	Details   string         `json:"details,omitempty"`
	Shortages []ShortfallDTO `json:"shortages,omitempty"`
}

// ShortfallDTO is one item's stock shortfall in an insufficient-stock error.
type ShortfallDTO struct {
	ItemID    string          `json:"item_id"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toTransactionDTO(tx *trading.Transaction) TransactionDTO {
	dto := TransactionDTO{
		Ref:              string(tx.Ref),
		Number:           tx.Number,
		Kind:             string(tx.Kind),
		Date:             tx.Date.Format(dateLayout),
		Status:           string(tx.Status),
		PartyAccountID:   string(tx.PartyAccountID),
		SupplierID:       string(tx.SupplierID),
		VehicleNo:        tx.VehicleNo,
		Lines:            make([]LineItemDTO, len(tx.Lines)),
		ConcessionAmount: tx.ConcessionAmount,
		CashPaid:         tx.CashPaid,
		CashReceived:     tx.CashReceived,
		ReceiptAmount:    tx.ReceiptAmount,
		PreviousBalance:  tx.PreviousBalance,
		Totals: TotalsDTO{
			TotalWeight:      tx.Totals.TotalWeight,
			GrossAmount:      tx.Totals.GrossAmount,
			NetAmount:        tx.Totals.NetAmount,
			BalanceAmount:    tx.Totals.BalanceAmount,
			CommissionAmount: tx.Totals.CommissionAmount,
			TotalCharges:     tx.Totals.TotalCharges,
			NetPayable:       tx.Totals.NetPayable,
			TotalPayable:     tx.Totals.TotalPayable,
		},
		CreatedAt: tx.CreatedAt.Format(timestampLayout),
		UpdatedAt: tx.UpdatedAt.Format(timestampLayout),
	}
	for i, l := range tx.Lines {
		dto.Lines[i] = LineItemDTO{
			ItemID:         string(l.ItemID),
			Weight:         l.Weight,
			GrossWeight:    l.GrossWeight,
			TareWeight:     l.TareWeight,
			Rate:           l.Rate,
			GroceryCharges: l.GroceryCharges,
			IceCharges:     l.IceCharges,
			NetWeight:      l.NetWeight,
			Amount:         l.Amount,
			NetAmount:      l.NetAmount,
		}
	}
	if tx.Bill != nil {
		dto.Bill = &BillChargesRequest{
			CommissionPct: tx.Bill.CommissionPct,
			Drugs:         tx.Bill.Drugs,
			Fare:          tx.Bill.Fare,
			Labor:         tx.Bill.Labor,
			Ice:           tx.Bill.Ice,
		}
	}
	if !tx.PeriodFrom.IsZero() {
		dto.PeriodFrom = tx.PeriodFrom.Format(dateLayout)
	}
	if !tx.PeriodTo.IsZero() {
		dto.PeriodTo = tx.PeriodTo.Format(dateLayout)
	}
	return dto
}
