package cart

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storefront-cart/internal/money"
	"github.com/noah-isme/storefront-cart/internal/page"
)

func twoItemDoc() *page.Document {
	return page.Build(page.Layout{
		Items: []page.ItemSeed{
			{Key: "a", Name: "A", Quantity: 2, UnitPrice: "£4.50"},
			{Key: "b", Name: "B", Quantity: 1, UnitPrice: "$3"},
		},
		Tax: "£1", Shipping: "£2",
	}, formatLine)
}

func TestRescanReadsDocumentOrder(t *testing.T) {
	items := Rescan(twoItemDoc())
	require.Len(t, items, 2)

	require.Equal(t, "a", items[0].Key)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, "£4.5", money.Format(items[0].UnitPrice))
	require.Equal(t, "£9", money.Format(items[0].LineTotal))

	require.Equal(t, "b", items[1].Key)
	require.Equal(t, "$3", money.Format(items[1].LineTotal))
}

func TestRescanDerivesUnitPriceWithoutAttribute(t *testing.T) {
	d := page.NewDocument()
	d.Append("", page.Element{ID: page.QtyID("x"), Text: "4"})
	d.Append("", page.Element{ID: page.PriceID("x"), Text: "£10", Classes: []string{page.ClassProductPrice}})

	items := Rescan(d)
	require.Len(t, items, 1)
	require.Equal(t, "£2.5", money.Format(items[0].UnitPrice))
}

func TestRescanUnparseableQuantityIsZero(t *testing.T) {
	d := page.NewDocument()
	d.Append("", page.Element{ID: page.QtyID("x"), Text: "lots"})
	d.Append("", page.Element{ID: page.PriceID("x"), Text: "£10", Classes: []string{page.ClassProductPrice}})

	items := Rescan(d)
	require.Equal(t, 0, items[0].Quantity)
}

func TestFindByKey(t *testing.T) {
	items := Rescan(twoItemDoc())
	require.Equal(t, 1, FindByKey(items, "b"))
	require.Equal(t, NotFound, FindByKey(items, "zzz"))
	require.Equal(t, NotFound, FindByKey(nil, "a"))
}

func TestAdjustWritesQuantityAndLineTotal(t *testing.T) {
	d := twoItemDoc()
	items := Rescan(d)

	up, err := Adjust(d, items[0], Increase)
	require.NoError(t, err)
	require.Equal(t, 3, up.Quantity)
	qty, _ := d.Text(page.QtyID("a"))
	line, _ := d.Text(page.PriceID("a"))
	require.Equal(t, "3", qty)
	require.Equal(t, "£13.5", line)

	down, err := Adjust(d, items[1], Decrease)
	require.NoError(t, err)
	require.Equal(t, 1, down.Quantity)
}

func TestAdjustMissingElementWritesNothing(t *testing.T) {
	d := twoItemDoc()
	items := Rescan(d)
	require.True(t, d.Remove(page.PriceID("a")))

	_, err := Adjust(d, items[0], Increase)
	require.ErrorIs(t, err, ErrMissingElement)
	qty, _ := d.Text(page.QtyID("a"))
	require.Equal(t, "2", qty)
}

func TestDirectionString(t *testing.T) {
	require.Equal(t, "increase", Increase.String())
	require.Equal(t, "decrease", Decrease.String())
}
