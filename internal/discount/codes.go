package discount

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// GroupSize is the number of characters between dashes in a discount code.
const GroupSize = 5

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrInvalidLength is returned by Generate for non-positive lengths.
var ErrInvalidLength = errors.New("discount code length must be positive")

// FormatInput strips any dashes the user typed and regroups the characters in
// blocks of GroupSize separated by dashes, e.g. "ABCDEFGH" -> "ABCDE-FGH".
func FormatInput(value string) string {
	raw := strings.ReplaceAll(value, "-", "")
	if raw == "" {
		return ""
	}
	runes := []rune(raw)
	var b strings.Builder
	b.Grow(len(raw) + len(runes)/GroupSize)
	for i, r := range runes {
		if i > 0 && i%GroupSize == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Generate returns a random code of length characters drawn from upper-case
// letters and digits, grouped with FormatInput.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}
	limit := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return FormatInput(string(buf)), nil
}
