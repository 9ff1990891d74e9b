package cart

import (
	"slices"
	"strings"

	"github.com/noah-isme/storefront-cart/internal/page"
)

// Intent is a recognised user action.
type Intent int

const (
	// Unknown matches no handler; Dispatch ignores it.
	Unknown Intent = iota
	// IncreaseQty adds one to a line quantity.
	IncreaseQty
	// DecreaseQty removes one from a line quantity, never below 1.
	DecreaseQty
	// RemoveItem drops a line from the cart.
	RemoveItem
	// SaveItem copies a line into the saved-items sidebar.
	SaveItem
	// ApplyDiscount submits the code in the discount input.
	ApplyDiscount
	// ToggleSidebar opens or closes the saved-items sidebar.
	ToggleSidebar
	// FormatCode regroups the discount input as the user types.
	FormatCode
	// AddToBasket sends a store product to the remote basket.
	AddToBasket
	// CloseMessage hides the message box.
	CloseMessage
)

var intentNames = map[Intent]string{
	Unknown:       "unknown",
	IncreaseQty:   "increase_qty",
	DecreaseQty:   "decrease_qty",
	RemoveItem:    "remove_item",
	SaveItem:      "save_item",
	ApplyDiscount: "apply_discount",
	ToggleSidebar: "toggle_sidebar",
	FormatCode:    "format_code",
	AddToBasket:   "add_to_basket",
	CloseMessage:  "close_message",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return intentNames[Unknown]
}

// Event types.
const (
	EventClick  = "click"
	EventInput  = "input"
	EventSubmit = "submit"
)

const saveIconAlt = "save icon"

// Target describes the element an event fired on. Data holds the element's
// data attributes without the "data-" prefix.
type Target struct {
	ID      string            `json:"id"`
	Tag     string            `json:"tag,omitempty"`
	Classes []string          `json:"classes,omitempty"`
	Alt     string            `json:"alt,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// Event is one UI event delivered to a cart session.
type Event struct {
	Type   string `json:"type"`
	Target Target `json:"target"`
	Value  string `json:"value,omitempty"`
}

func (t Target) has(class string) bool { return slices.Contains(t.Classes, class) }

func (t Target) data(name string) string {
	return t.Data[strings.TrimPrefix(name, "data-")]
}

// Classify maps an event to the intent it expresses. It inspects only the
// event and never the page.
func Classify(ev Event) Intent {
	t := ev.Target
	switch strings.ToLower(ev.Type) {
	case EventInput:
		if t.ID == page.IDDiscountInput {
			return FormatCode
		}
		return Unknown
	case EventSubmit:
		if t.ID == page.IDDiscountInput || t.ID == page.IDDiscountSubmit {
			return ApplyDiscount
		}
		return Unknown
	case EventClick:
	default:
		return Unknown
	}

	switch {
	case t.has(page.ClassIncrease):
		return IncreaseQty
	case t.has(page.ClassDecrease):
		return DecreaseQty
	case t.data(page.AttrRemoveDivID) != "":
		return RemoveItem
	case t.has(page.ClassSaveItem):
		return SaveItem
	case strings.EqualFold(t.Tag, "button") && t.has(page.ClassAddToCart),
		strings.EqualFold(t.Tag, "img") && t.has(page.ClassCartImageButton):
		return AddToBasket
	case t.has(page.ClassSaveToggle), t.ID == page.IDSaveButton, t.ID == page.IDWindowIcon, t.Alt == saveIconAlt:
		return ToggleSidebar
	case t.ID == page.IDMessageClose:
		return CloseMessage
	case t.ID == page.IDDiscountSubmit:
		return ApplyDiscount
	}
	return Unknown
}

// resolveTarget fills the tag, classes and data of t from the page when the
// client only sent an id.
func resolveTarget(d Display, t Target) Target {
	if t.ID == "" || !d.Exists(t.ID) || t.Tag != "" || len(t.Classes) > 0 || len(t.Data) > 0 {
		return t
	}
	for _, el := range d.Elements() {
		if el.ID != t.ID {
			continue
		}
		t.Tag = el.Tag
		t.Classes = slices.Clone(el.Classes)
		if alt, ok := el.Attrs["alt"]; ok {
			t.Alt = alt
		}
		for k, v := range el.Attrs {
			if name, ok := strings.CutPrefix(k, "data-"); ok {
				if t.Data == nil {
					t.Data = map[string]string{}
				}
				t.Data[name] = v
			}
		}
		break
	}
	return t
}
