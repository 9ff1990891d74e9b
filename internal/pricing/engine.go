package pricing

import (
	"github.com/noah-isme/storefront-cart/internal/discount"
	"github.com/noah-isme/storefront-cart/internal/money"
)

// Summary aggregates computed cart totals. Undiscounted always holds
// subtotal + tax + shipping; Total equals it unless a discount is attached.
type Summary struct {
	Subtotal     money.Money
	Tax          money.Money
	Shipping     money.Money
	Undiscounted money.Money
	Discount     *discount.Result
	Total        money.Money
}

// Compute sums the displayed line totals and adds tax and shipping. The
// currency comes from the first line, or fallback when lines is empty.
// It never looks at previously displayed totals.
func Compute(lines []money.Money, tax, shipping money.Money, fallback string) Summary {
	if fallback == "" {
		fallback = money.DefaultCurrency
	}
	currency := fallback
	if len(lines) > 0 && lines[0].Currency != "" {
		currency = lines[0].Currency
	}
	subtotal := money.Zero(currency)
	for _, line := range lines {
		subtotal = subtotal.Add(line)
	}
	grand := subtotal.Add(tax).Add(shipping)
	return Summary{
		Subtotal:     subtotal,
		Tax:          tax,
		Shipping:     shipping,
		Undiscounted: grand,
		Total:        grand,
	}
}

// WithDiscount attaches a discount result derived from s.Undiscounted.
func (s Summary) WithDiscount(res discount.Result) Summary {
	s.Discount = &res
	s.Total = res.Total
	return s
}
