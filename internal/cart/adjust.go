package cart

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/noah-isme/storefront-cart/internal/money"
	"github.com/noah-isme/storefront-cart/internal/page"
)

// ErrMissingElement is returned when a display element an operation needs is absent.
var ErrMissingElement = errors.New("cart: display element missing")

// Direction is a quantity change.
type Direction int

const (
	// Increase adds one unit.
	Increase Direction = iota
	// Decrease removes one unit, never going below one.
	Decrease
)

func (d Direction) String() string {
	if d == Increase {
		return "increase"
	}
	return "decrease"
}

// Adjust moves item's quantity one step in dir, floored at 1, and writes the
// new quantity and line total to the page. Nothing is written when either
// element is missing.
func Adjust(d Display, item LineItem, dir Direction) (LineItem, error) {
	qtyID, priceID := page.QtyID(item.Key), page.PriceID(item.Key)
	for _, id := range []string{qtyID, priceID} {
		if !d.Exists(id) {
			return item, fmt.Errorf("%w: %s", ErrMissingElement, id)
		}
	}

	qty := item.Quantity
	if dir == Increase {
		qty++
	} else {
		qty--
	}
	if qty < 1 {
		qty = 1
	}
	item.Quantity = qty
	item.LineTotal = item.UnitPrice.MulInt(qty)

	d.SetText(qtyID, strconv.Itoa(qty))
	d.SetText(priceID, money.Format(item.LineTotal))
	return item, nil
}
