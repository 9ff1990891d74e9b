package money

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of fractional digits retained when formatting.
const DisplayPlaces = 2

// DefaultCurrency is used when no priced line is available to borrow a symbol from.
const DefaultCurrency = "£"

// Money is a non-negative decimal amount tagged with a single-character currency symbol.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// New builds a Money value, clamping negative amounts to zero.
func New(amount decimal.Decimal, currency string) Money {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return Money{Amount: amount, Currency: currency}
}

// Zero returns a zero amount in the provided currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Parse converts display text such as "£123.45" into Money. The first rune is
// the currency symbol and the remainder is read permissively: anything that
// is not a leading decimal numeral yields a zero amount. Parse never fails.
func Parse(text string) Money {
	if text == "" {
		return Zero("")
	}
	r, size := utf8.DecodeRuneInString(text)
	currency := string(r)
	return New(leadingDecimal(text[size:]), currency)
}

// Format renders m as the currency symbol immediately followed by the amount.
func Format(m Money) string {
	return m.Currency + m.Amount.Round(DisplayPlaces).String()
}

// String implements fmt.Stringer.
func (m Money) String() string {
	return Format(m)
}

// Add sums two amounts keeping the receiver's currency, or other's when the receiver has none.
func (m Money) Add(other Money) Money {
	currency := m.Currency
	if currency == "" {
		currency = other.Currency
	}
	return New(m.Amount.Add(other.Amount), currency)
}

// MulInt multiplies the amount by an integer factor.
func (m Money) MulInt(n int) Money {
	return New(m.Amount.Mul(decimal.NewFromInt(int64(n))), m.Currency)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Equal compares amounts and currencies.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// MaxQuantity caps ParseQuantity; longer digit runs saturate here.
const MaxQuantity = 1 << 30

// ParseQuantity reads the leading integer of text, returning 0 when there is
// none and MaxQuantity when the digits exceed it.
func ParseQuantity(text string) int {
	n := 0
	digits := 0
	for _, r := range strings.TrimSpace(text) {
		if r < '0' || r > '9' {
			break
		}
		digits++
		if n > (MaxQuantity-int(r-'0'))/10 {
			n = MaxQuantity
			continue
		}
		n = n*10 + int(r-'0')
	}
	if digits == 0 {
		return 0
	}
	return n
}

func leadingDecimal(text string) decimal.Decimal {
	s := strings.TrimLeft(text, " \t\n\r")
	var b strings.Builder
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		b.WriteByte(s[i])
		i++
	}
	intDigits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		b.WriteByte(s[i])
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		j := i + 1
		var frac strings.Builder
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			frac.WriteByte(s[j])
			j++
			fracDigits++
		}
		if fracDigits > 0 {
			if intDigits == 0 {
				b.WriteByte('0')
			}
			b.WriteByte('.')
			b.WriteString(frac.String())
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
