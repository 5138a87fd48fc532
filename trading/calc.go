/*
calc.go - Line-item calculator

PURPOSE:
  Pure arithmetic turning line entries into header totals. No side effects,
  no storage access: the same functions compute a live preview in a form and
  the committed totals in the coordinator.

FORMULAS:
  Purchase line:  amount = weight x rate
  Purchase header:
    total_weight   = sum(weight)
    gross_amount   = sum(amount)
    net_amount     = gross_amount - concession
    balance_amount = net_amount - cash_paid + previous_balance

  Sale line:      net_weight = max(0, gross_weight - tare_weight)
                  amount     = net_weight x rate
                  net_amount = amount + grocery + ice
  Sale header:
    gross_amount   = sum(amount)
    net_amount     = gross_amount + sum(grocery) + sum(ice)
    balance_amount = net_amount - cash_received - receipt_amount

  Supplier bill (gross from a date-range aggregate of the supplier's sales):
    commission     = gross x commission_pct / 100
    total_charges  = drugs + fare + labor + ice
    net_payable    = gross - commission - total_charges
    total_payable  = net_payable - concession
    balance_amount = total_payable - cash_paid

EDGE CASES:
  Zero rate gives a zero amount, not an error. A negative computed balance
  is a valid overpayment/credit, not a fault. Rounding (2dp money, 3dp
  weight) is applied here, at computation time.
*/
package trading

import (
	"github.com/shopspring/decimal"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/ledger"
)

var hundred = decimal.NewFromInt(100)

// ComputePurchase fills the computed fields of purchase lines and returns
// the header totals.
func ComputePurchase(lines []LineItem, concession, cashPaid, previousBalance decimal.Decimal) ([]LineItem, Totals) {
	out := make([]LineItem, len(lines))
	totalWeight := decimal.Zero
	gross := decimal.Zero

	for i, l := range lines {
		l.NetWeight = ledger.RoundWeight(l.Weight)
		l.Amount = ledger.RoundMoney(l.Weight.Mul(l.Rate))
		l.NetAmount = l.Amount
		out[i] = l

		totalWeight = totalWeight.Add(l.NetWeight)
		gross = gross.Add(l.Amount)
	}

	net := gross.Sub(concession)
	return out, Totals{
		TotalWeight:   totalWeight,
		GrossAmount:   gross,
		NetAmount:     net,
		BalanceAmount: net.Sub(cashPaid).Add(previousBalance),
	}
}

// ComputeSale fills the computed fields of sale lines and returns the header
// totals. The sale balance does not fold in the previous balance; the
// customer's running balance lives in the account ledger.
func ComputeSale(lines []LineItem, cashReceived, receiptAmount decimal.Decimal) ([]LineItem, Totals) {
	out := make([]LineItem, len(lines))
	totalWeight := decimal.Zero
	gross := decimal.Zero
	charges := decimal.Zero

	for i, l := range lines {
		net := l.GrossWeight.Sub(l.TareWeight)
		if net.IsNegative() {
			net = decimal.Zero
		}
		l.NetWeight = ledger.RoundWeight(net)
		l.Amount = ledger.RoundMoney(l.NetWeight.Mul(l.Rate))
		l.NetAmount = l.Amount.Add(l.GroceryCharges).Add(l.IceCharges)
		out[i] = l

		totalWeight = totalWeight.Add(l.NetWeight)
		gross = gross.Add(l.Amount)
		charges = charges.Add(l.GroceryCharges).Add(l.IceCharges)
	}

	net := gross.Add(charges)
	return out, Totals{
		TotalWeight:   totalWeight,
		GrossAmount:   gross,
		NetAmount:     net,
		BalanceAmount: net.Sub(cashReceived).Sub(receiptAmount),
	}
}

// ComputeSupplierBill derives bill totals from the aggregated gross amount
// and weight of the supplier's sale lines in the billed period.
func ComputeSupplierBill(grossAmount, totalWeight decimal.Decimal, charges BillCharges, concession, cashPaid decimal.Decimal) Totals {
	commission := ledger.RoundMoney(grossAmount.Mul(charges.CommissionPct).Div(hundred))
	totalCharges := charges.Drugs.Add(charges.Fare).Add(charges.Labor).Add(charges.Ice)
	netPayable := grossAmount.Sub(commission).Sub(totalCharges)
	totalPayable := netPayable.Sub(concession)

	return Totals{
		TotalWeight:      totalWeight,
		GrossAmount:      grossAmount,
		CommissionAmount: commission,
		TotalCharges:     totalCharges,
		NetPayable:       netPayable,
		TotalPayable:     totalPayable,
		NetAmount:        totalPayable,
		BalanceAmount:    totalPayable.Sub(cashPaid),
	}
}
