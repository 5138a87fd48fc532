package trading_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/haris936hk/FISHPLUS-Distributor-sub000/trading"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// PURCHASE COMPUTATION
// =============================================================================

func TestComputePurchase_TwoLines(t *testing.T) {
	// 90kg @ 200 + 45kg @ 180 = 18000 + 8100 = 26100
	lines := []trading.LineItem{
		{ItemID: "rohu", Weight: dec("90"), Rate: dec("200")},
		{ItemID: "katla", Weight: dec("45"), Rate: dec("180")},
	}

	out, totals := trading.ComputePurchase(lines, decimal.Zero, decimal.Zero, decimal.Zero)

	assert.True(t, out[0].Amount.Equal(dec("18000")), "line 1 amount: %s", out[0].Amount)
	assert.True(t, out[1].Amount.Equal(dec("8100")), "line 2 amount: %s", out[1].Amount)
	assert.True(t, totals.TotalWeight.Equal(dec("135")))
	assert.True(t, totals.GrossAmount.Equal(dec("26100")))
	assert.True(t, totals.NetAmount.Equal(dec("26100")))
	assert.True(t, totals.BalanceAmount.Equal(dec("26100")))
}

func TestComputePurchase_ConcessionCashAndPreviousBalance(t *testing.T) {
	lines := []trading.LineItem{
		{ItemID: "rohu", Weight: dec("100"), Rate: dec("250")},
	}

	// gross 25000, concession 500 -> net 24500,
	// cash 10000, previous balance 3000 -> balance 17500
	_, totals := trading.ComputePurchase(lines, dec("500"), dec("10000"), dec("3000"))

	assert.True(t, totals.NetAmount.Equal(dec("24500")))
	assert.True(t, totals.BalanceAmount.Equal(dec("17500")))
}

func TestComputePurchase_InputLinesUntouched(t *testing.T) {
	lines := []trading.LineItem{{ItemID: "rohu", Weight: dec("10"), Rate: dec("100")}}
	out, _ := trading.ComputePurchase(lines, decimal.Zero, decimal.Zero, decimal.Zero)

	assert.True(t, lines[0].Amount.IsZero(), "caller's slice must not be mutated")
	assert.True(t, out[0].Amount.Equal(dec("1000")))
}

// =============================================================================
// SALE COMPUTATION
// =============================================================================

func TestComputeSale_TareAndCharges(t *testing.T) {
	// net weights 100-10=90 and 50-5=45, amounts 18000 + 8100 = 26100 gross;
	// charges 100+50 = 150 -> net 26250; cash 500 + receipt 200 -> 25550
	lines := []trading.LineItem{
		{ItemID: "rohu", GrossWeight: dec("100"), TareWeight: dec("10"), Rate: dec("200"), GroceryCharges: dec("100")},
		{ItemID: "katla", GrossWeight: dec("50"), TareWeight: dec("5"), Rate: dec("180"), IceCharges: dec("50")},
	}

	out, totals := trading.ComputeSale(lines, dec("500"), dec("200"))

	assert.True(t, out[0].NetWeight.Equal(dec("90")))
	assert.True(t, out[1].NetWeight.Equal(dec("45")))
	assert.True(t, out[0].NetAmount.Equal(dec("18100")), "line net includes grocery")
	assert.True(t, out[1].NetAmount.Equal(dec("8150")), "line net includes ice")
	assert.True(t, totals.GrossAmount.Equal(dec("26100")))
	assert.True(t, totals.NetAmount.Equal(dec("26250")))
	assert.True(t, totals.BalanceAmount.Equal(dec("25550")))
}

func TestComputeSale_TareExceedingGrossClampsToZero(t *testing.T) {
	lines := []trading.LineItem{
		{ItemID: "rohu", GrossWeight: dec("5"), TareWeight: dec("8"), Rate: dec("200")},
	}

	out, totals := trading.ComputeSale(lines, decimal.Zero, decimal.Zero)

	assert.True(t, out[0].NetWeight.IsZero(), "net weight clamps at zero, got %s", out[0].NetWeight)
	assert.True(t, out[0].Amount.IsZero())
	assert.True(t, totals.GrossAmount.IsZero())
}

func TestComputeSale_ZeroRate(t *testing.T) {
	// zero rate is a giveaway line, not an error
	lines := []trading.LineItem{
		{ItemID: "rohu", GrossWeight: dec("10"), Rate: decimal.Zero},
	}

	out, totals := trading.ComputeSale(lines, decimal.Zero, decimal.Zero)

	assert.True(t, out[0].Amount.IsZero())
	assert.True(t, totals.TotalWeight.Equal(dec("10")))
}

func TestComputeSale_Rounding(t *testing.T) {
	// money rounds to 2dp, weight to 3dp
	lines := []trading.LineItem{
		{ItemID: "rohu", GrossWeight: dec("10.1234"), TareWeight: decimal.Zero, Rate: dec("3")},
	}

	out, _ := trading.ComputeSale(lines, decimal.Zero, decimal.Zero)

	assert.True(t, out[0].NetWeight.Equal(dec("10.123")), "net weight: %s", out[0].NetWeight)
	assert.True(t, out[0].Amount.Equal(dec("30.37")), "amount: %s", out[0].Amount)
}

// =============================================================================
// SUPPLIER BILL COMPUTATION
// =============================================================================

func TestComputeSupplierBill(t *testing.T) {
	// gross 26100 @ 6% -> commission 1566; charges 1000 -> net payable 23534;
	// concession 34 -> total payable 23500; cash 3500 -> balance 20000
	charges := trading.BillCharges{
		CommissionPct: dec("6"),
		Drugs:         dec("100"),
		Fare:          dec("200"),
		Labor:         dec("300"),
		Ice:           dec("400"),
	}

	totals := trading.ComputeSupplierBill(dec("26100"), dec("135"), charges, dec("34"), dec("3500"))

	assert.True(t, totals.CommissionAmount.Equal(dec("1566")))
	assert.True(t, totals.TotalCharges.Equal(dec("1000")))
	assert.True(t, totals.NetPayable.Equal(dec("23534")))
	assert.True(t, totals.TotalPayable.Equal(dec("23500")))
	assert.True(t, totals.BalanceAmount.Equal(dec("20000")))
	assert.True(t, totals.TotalWeight.Equal(dec("135")))
}

func TestComputeSupplierBill_ZeroCommission(t *testing.T) {
	totals := trading.ComputeSupplierBill(dec("10000"), dec("50"), trading.BillCharges{}, decimal.Zero, decimal.Zero)

	assert.True(t, totals.CommissionAmount.IsZero())
	assert.True(t, totals.NetPayable.Equal(dec("10000")))
	assert.True(t, totals.TotalPayable.Equal(dec("10000")))
	assert.True(t, totals.BalanceAmount.Equal(dec("10000")))
}

func TestComputeSupplierBill_CommissionRounding(t *testing.T) {
	// 333.33 @ 3% = 9.9999 -> 10.00
	totals := trading.ComputeSupplierBill(dec("333.33"), dec("1"), trading.BillCharges{CommissionPct: dec("3")}, decimal.Zero, decimal.Zero)

	assert.True(t, totals.CommissionAmount.Equal(dec("10")), "commission: %s", totals.CommissionAmount)
}
