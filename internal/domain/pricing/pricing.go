// Package pricing computes order totals. Every function here is pure.
package pricing

import "github.com/shopspring/decimal"

var (
	// FlatShipping is charged once per non-empty order.
	FlatShipping = decimal.NewFromInt(50)
	// VATRate is applied to the subtotal only.
	VATRate = decimal.RequireFromString("0.20")
)

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	VAT      decimal.Decimal `json:"vat"`
	Total    decimal.Decimal `json:"total"`
}

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal is price × quantity, unrounded.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// ComputeTotals derives shipping, VAT and grand total from a subtotal.
func ComputeTotals(subtotal decimal.Decimal) Totals {
	subtotal = Round2(subtotal)
	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = FlatShipping
	}
	vat := Round2(subtotal.Mul(VATRate))
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		VAT:      vat,
		Total:    Round2(subtotal.Add(shipping).Add(vat)),
	}
}
