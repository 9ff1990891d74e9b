package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storefront-cart/internal/discount"
	"github.com/noah-isme/storefront-cart/internal/money"
)

func TestComputeSingleItem(t *testing.T) {
	s := Compute([]money.Money{money.Parse("£10")}, money.Parse("£2"), money.Parse("£5"), "")
	require.Equal(t, "£10", s.Subtotal.String())
	require.Equal(t, "£17", s.Total.String())
	require.Equal(t, "£17", s.Undiscounted.String())
	require.Nil(t, s.Discount)
}

func TestComputeEmptyUsesFallbackCurrency(t *testing.T) {
	s := Compute(nil, money.Parse("£2"), money.Parse("£5"), "$")
	require.Equal(t, "$0", s.Subtotal.String())
	require.Equal(t, "$7", s.Total.String())

	s = Compute(nil, money.Zero("£"), money.Zero("£"), "")
	require.Equal(t, money.DefaultCurrency+"0", s.Subtotal.String())
}

func TestComputeSubtotalOrderIndependent(t *testing.T) {
	lines := []money.Money{
		money.Parse("£10.99"),
		money.Parse("£3.50"),
		money.Parse("£120"),
		money.Parse("£0.01"),
		money.Parse("£7.25"),
	}
	want := Compute(lines, money.Zero("£"), money.Zero("£"), "").Subtotal

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]money.Money(nil), lines...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Compute(shuffled, money.Zero("£"), money.Zero("£"), "").Subtotal
		require.True(t, want.Equal(got), "subtotal changed with order: %s vs %s", want, got)
	}
	require.Equal(t, "£141.75", want.String())
}

func TestWithDiscountDoesNotCompound(t *testing.T) {
	m := discount.NewManager(nil)
	s := Compute([]money.Money{money.Parse("£10")}, money.Parse("£2"), money.Parse("£5"), "")
	res, err := m.Apply("EGBIE-GET50-PERCE-NTOFF", s.Undiscounted, false)
	require.NoError(t, err)
	s = s.WithDiscount(res)
	require.Equal(t, "£8.5", s.Total.String())

	// quantity goes to 2: the discount is re-derived from the fresh total
	next := Compute([]money.Money{money.Parse("£20")}, money.Parse("£2"), money.Parse("£5"), "")
	res, ok := m.Reapply(next.Undiscounted)
	require.True(t, ok)
	next = next.WithDiscount(res)
	require.Equal(t, "£27", next.Undiscounted.String())
	require.Equal(t, "£13.5", next.Total.String())
}
