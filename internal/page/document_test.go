package page

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendRejectsDuplicatesAndOrphans(t *testing.T) {
	d := NewDocument()
	require.True(t, d.Append("", Element{ID: "root", Tag: "div"}))
	require.False(t, d.Append("", Element{ID: "root", Tag: "div"}))
	require.False(t, d.Append("missing", Element{ID: "child", Tag: "span"}))
	require.False(t, d.Append("", Element{Tag: "span"}))
	require.True(t, d.Append("root", Element{ID: "child", Tag: "span"}))
	require.Equal(t, []string{"child"}, d.Children("root"))
}

func TestRemoveDropsDescendants(t *testing.T) {
	d := NewDocument()
	d.Append("", Element{ID: "a", Tag: "div"})
	d.Append("a", Element{ID: "b", Tag: "div"})
	d.Append("b", Element{ID: "c", Tag: "span", Classes: []string{"x"}})
	d.Append("", Element{ID: "d", Tag: "span", Classes: []string{"x"}})

	require.True(t, d.Remove("a"))
	require.False(t, d.Exists("b"))
	require.False(t, d.Exists("c"))
	require.Equal(t, []string{"d"}, d.IDsByClass("x"))
	require.False(t, d.Remove("a"))
}

func TestClassesAndVisibility(t *testing.T) {
	d := NewDocument()
	d.Append("", Element{ID: "el", Tag: "div", Hidden: true})
	require.False(t, d.Visible("el"))
	d.SetVisible("el", true)
	require.True(t, d.Visible("el"))

	d.AddClass("el", "show")
	d.AddClass("el", "show")
	require.True(t, d.HasClass("el", "show"))
	require.Len(t, d.Elements()[0].Classes, 1)
	d.RemoveClass("el", "show")
	require.False(t, d.HasClass("el", "show"))
	require.False(t, d.AddClass("nope", "show"))
}

func TestElementsReturnsCopies(t *testing.T) {
	d := NewDocument()
	d.Append("", Element{ID: "el", Tag: "div", Attrs: map[string]string{"k": "v"}})
	els := d.Elements()
	els[0].Attrs["k"] = "changed"
	v, ok := d.Attr("el", "k")
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestBuildLaysOutRows(t *testing.T) {
	d := Build(Layout{
		Items: []ItemSeed{
			{Key: "p1", Name: "Mug", Quantity: 2, UnitPrice: "£4.50"},
			{Key: "p2", Name: "Tee", Quantity: 1, UnitPrice: "£12"},
		},
		Products: []ProductSeed{{ID: "9", Name: "Hat", Price: "£8", Stock: 3}},
		Tax:      "£2",
		Shipping: "£5",
	}, nil)

	require.Equal(t, []string{PriceID("p1"), PriceID("p2")}, d.IDsByClass(ClassProductPrice))
	qty, _ := d.Text(QtyID("p1"))
	require.Equal(t, "2", qty)
	unit, _ := d.Attr(PriceID("p2"), AttrUnitPrice)
	require.Equal(t, "£12", unit)
	tax, _ := d.Text(IDTax)
	require.Equal(t, "£2", tax)
	row, _ := d.Attr("p1-remove", AttrRemoveDivID)
	require.Equal(t, RowID("p1"), row)
	require.True(t, d.Exists("9-add"))
	spinner, _ := d.Attr("9-add", AttrSpinner)
	require.Equal(t, "9-spinner", spinner)
	require.False(t, d.Visible(IDSaveContainer))
}
