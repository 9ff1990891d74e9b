package cart

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storefront-cart/internal/page"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want Intent
	}{
		{"increase", Event{Type: EventClick, Target: Target{Classes: []string{page.ClassIncrease}}}, IncreaseQty},
		{"decrease", Event{Type: EventClick, Target: Target{Classes: []string{page.ClassDecrease}}}, DecreaseQty},
		{"remove", Event{Type: EventClick, Target: Target{Data: map[string]string{"removedivid": "p1-row"}}}, RemoveItem},
		{"save item", Event{Type: EventClick, Target: Target{Classes: []string{page.ClassSaveItem}}}, SaveItem},
		{"add button", Event{Type: EventClick, Target: Target{Tag: "BUTTON", Classes: []string{page.ClassAddToCart}}}, AddToBasket},
		{"add image", Event{Type: EventClick, Target: Target{Tag: "img", Classes: []string{page.ClassCartImageButton}}}, AddToBasket},
		{"add class on wrong tag", Event{Type: EventClick, Target: Target{Tag: "div", Classes: []string{page.ClassAddToCart}}}, Unknown},
		{"sidebar class", Event{Type: EventClick, Target: Target{Classes: []string{page.ClassSaveToggle}}}, ToggleSidebar},
		{"sidebar button", Event{Type: EventClick, Target: Target{ID: page.IDSaveButton}}, ToggleSidebar},
		{"sidebar window icon", Event{Type: EventClick, Target: Target{ID: page.IDWindowIcon}}, ToggleSidebar},
		{"sidebar alt", Event{Type: EventClick, Target: Target{Alt: "save icon"}}, ToggleSidebar},
		{"close message", Event{Type: EventClick, Target: Target{ID: page.IDMessageClose}}, CloseMessage},
		{"apply click", Event{Type: EventClick, Target: Target{ID: page.IDDiscountSubmit}}, ApplyDiscount},
		{"apply submit", Event{Type: EventSubmit, Target: Target{ID: page.IDDiscountInput}}, ApplyDiscount},
		{"format", Event{Type: EventInput, Target: Target{ID: page.IDDiscountInput}}, FormatCode},
		{"input elsewhere", Event{Type: EventInput, Target: Target{ID: "search"}}, Unknown},
		{"case insensitive type", Event{Type: "CLICK", Target: Target{Classes: []string{page.ClassIncrease}}}, IncreaseQty},
		{"unknown type", Event{Type: "hover", Target: Target{Classes: []string{page.ClassIncrease}}}, Unknown},
		{"empty", Event{Type: EventClick}, Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.ev))
		})
	}
}

func TestIntentString(t *testing.T) {
	require.Equal(t, "increase_qty", IncreaseQty.String())
	require.Equal(t, "unknown", Intent(99).String())
}

func TestResolveTargetFillsFromPage(t *testing.T) {
	doc := page.Build(singleItemLayout(), formatLine)

	got := resolveTarget(doc, Target{ID: "p1-increase"})
	require.Equal(t, "img", got.Tag)
	require.Equal(t, []string{page.ClassIncrease}, got.Classes)
	require.Equal(t, "p1-btn", got.Data["productid"])
	require.Equal(t, IncreaseQty, Classify(Event{Type: EventClick, Target: got}))

	sent := Target{ID: "p1-increase", Classes: []string{page.ClassDecrease}}
	require.Equal(t, sent, resolveTarget(doc, sent))

	missing := Target{ID: "nope"}
	require.Equal(t, missing, resolveTarget(doc, missing))
}

func TestProductKey(t *testing.T) {
	require.Equal(t, "p1", productKey(Target{Data: map[string]string{"productid": "p1-btn"}}))
	require.Equal(t, "p2", productKey(Target{ID: "p2-increase"}))
	require.Equal(t, "solo", productKey(Target{ID: "solo"}))
}
