package discount

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/storefront-cart/internal/money"
)

var (
	// ErrUnknownCode is returned when the code does not match any registry entry.
	ErrUnknownCode = errors.New("discount code not recognised")
	// ErrAlreadyApplied is returned when a discount is active and reapplication was not requested.
	ErrAlreadyApplied = errors.New("discount code already applied")
)

var hundred = decimal.NewFromInt(100)

// Discount is a registry entry: a code and the whole-number percentage it takes off.
type Discount struct {
	Code    string
	Percent int
}

// Registry maps normalised codes to percentages.
type Registry map[string]int

// DefaultRegistry returns the codes shipped with the storefront.
func DefaultRegistry() Registry {
	return Registry{
		"EGBIE-GET50-PERCE-NTOFF": 50,
		"EGBIE-GET20-PERCE-NTOFF": 20,
		"EGBIE-GET10-PERCE-NTOFF": 10,
	}
}

// NewRegistry normalises the provided codes, dropping entries outside 1..100 percent.
func NewRegistry(entries map[string]int) Registry {
	reg := make(Registry, len(entries))
	for code, percent := range entries {
		key := Normalize(code)
		if key == "" || percent <= 0 || percent > 100 {
			continue
		}
		reg[key] = percent
	}
	return reg
}

// Lookup matches code case-insensitively, ignoring surrounding space and dash placement.
func (r Registry) Lookup(code string) (Discount, bool) {
	key := Normalize(code)
	if key == "" {
		return Discount{}, false
	}
	percent, ok := r[key]
	if !ok {
		return Discount{}, false
	}
	return Discount{Code: key, Percent: percent}, true
}

// Normalize upper-cases code and regroups it into dash-separated blocks of five.
func Normalize(code string) string {
	return FormatInput(strings.ToUpper(strings.TrimSpace(code)))
}

// Result carries the outcome of applying a discount to a cart total.
type Result struct {
	Discount Discount
	Base     money.Money
	Amount   money.Money
	Total    money.Money
}

// Compute takes percent off total: amount = percent/100 * total, newTotal = total - amount.
func Compute(total money.Money, percent int) (amount money.Money, newTotal money.Money) {
	if percent <= 0 || total.Amount.Sign() <= 0 {
		return money.Zero(total.Currency), total
	}
	if percent > 100 {
		percent = 100
	}
	off := total.Amount.Mul(decimal.NewFromInt(int64(percent))).Div(hundred)
	amount = money.New(off, total.Currency)
	newTotal = money.New(total.Amount.Sub(off), total.Currency)
	return amount, newTotal
}
