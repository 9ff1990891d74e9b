package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/storefront-cart/internal/money"
	"github.com/noah-isme/storefront-cart/internal/page"
)

// NotFound is returned by FindByKey when no item matches.
const NotFound = -1

// LineItem is one product row as currently displayed.
type LineItem struct {
	Key       string
	Quantity  int
	UnitPrice money.Money
	LineTotal money.Money
}

// Rescan re-derives every line item from the price elements on the page, in
// document order. Unparseable quantities read as 0. The unit price comes from
// the price element's unit price attribute, or is derived from the line total
// when the attribute is absent.
func Rescan(d Display) []LineItem {
	ids := d.IDsByClass(page.ClassProductPrice)
	items := make([]LineItem, 0, len(ids))
	for _, id := range ids {
		key := strings.TrimSuffix(id, "-price")
		text, _ := d.Text(id)
		total := money.Parse(text)
		qtyText, _ := d.Text(page.QtyID(key))
		qty := money.ParseQuantity(qtyText)

		unit := total
		if raw, ok := d.Attr(id, page.AttrUnitPrice); ok && raw != "" {
			unit = money.Parse(raw)
		} else if qty > 1 {
			unit = money.New(total.Amount.Div(decimal.NewFromInt(int64(qty))), total.Currency)
		}
		if unit.Currency == "" {
			unit.Currency = total.Currency
		}
		items = append(items, LineItem{Key: key, Quantity: qty, UnitPrice: unit, LineTotal: total})
	}
	return items
}

// FindByKey returns the index of the first item with key, or NotFound.
func FindByKey(items []LineItem, key string) int {
	for i, item := range items {
		if item.Key == key {
			return i
		}
	}
	return NotFound
}

func lineTotals(items []LineItem) []money.Money {
	out := make([]money.Money, len(items))
	for i, item := range items {
		out[i] = item.LineTotal
	}
	return out
}
