package page

import "strconv"

// Element ids and classes shared by the layout builder and the cart controller.
const (
	IDCartContainer   = "cart-container"
	IDGiftInfo        = "gift-info"
	IDCartSummary     = "cart-summary"
	IDSubtotal        = "price-total"
	IDTax             = "price-tax"
	IDShipping        = "shipping-and-handling"
	IDOrderTotal      = "order-total"
	IDCartQuantity    = "cart-quantity"
	IDIconQuantity    = "icon-cart-quantity"
	IDSpinner         = "spinner"
	IDSaveSidebar     = "save-sidebar"
	IDWindowIcon      = "window-icon"
	IDSaveButton      = "save"
	IDSaveContainer   = "save-container"
	IDSavedProducts   = "saved-products"
	IDSidebarMessage  = "save-sidebar-msg"
	IDMessageBox      = "popup-message"
	IDMessageText     = "popup-message-text"
	IDMessageClose    = "message-pop-close-icon"
	IDDiscountInput   = "apply-input"
	IDDiscountSubmit  = "apply-discount"
	IDProductsSection = "products"

	ClassProductPrice    = "product-price"
	ClassIncrease        = "increase-quantity"
	ClassDecrease        = "decrease-quantity"
	ClassRemove          = "remove-item"
	ClassSaveItem        = "save-for-later"
	ClassSaveToggle      = "save-quantity"
	ClassAddToCart       = "add-to-cart"
	ClassCartImageButton = "cart-image-btn"
	ClassPopup           = "popup"
	ClassShow            = "show"
	ClassHide            = "hide"
	ClassCenter          = "center"
	ClassSingleColumn    = "single-column"
	ClassCard            = "card"

	AttrUnitPrice   = "data-unit-price"
	AttrProductID   = "data-productid"
	AttrProductName = "data-productname"
	AttrProductDesc = "data-productdescr"
	AttrRemoveDivID = "data-removedivid"
	AttrSpinner     = "data-spinner"
	AttrCartImage   = "data-cartimg"
	AttrPrice       = "data-price"
	AttrStock       = "data-stock"
)

// QtyID is the quantity element id of a line item.
func QtyID(key string) string { return key + "-qty" }

// PriceID is the line total element id of a line item.
func PriceID(key string) string { return key + "-price" }

// RowID is the container element id of a line item.
func RowID(key string) string { return key + "-row" }

// NameID is the product name element id of a line item.
func NameID(key string) string { return key + "-name" }

// ItemSeed describes one cart row to render.
type ItemSeed struct {
	Key         string
	Name        string
	Description string
	Quantity    int
	UnitPrice   string
}

// ProductSeed describes one store product offered for adding to the basket.
type ProductSeed struct {
	ID          string
	Name        string
	Description string
	Price       string
	Stock       int
}

// Layout is the initial content of a cart page.
type Layout struct {
	Items    []ItemSeed
	Products []ProductSeed
	Tax      string
	Shipping string
}

// Build renders layout into a fresh document. Line totals are written as
// the raw unit price times quantity so the cart controller can take over
// from there.
func Build(layout Layout, formatLine func(unit string, qty int) string) *Document {
	d := NewDocument()
	d.Append("", Element{ID: IDIconQuantity, Tag: "span"})
	d.Append("", Element{ID: IDSpinner, Tag: "div", Hidden: true})
	d.Append("", Element{ID: IDMessageBox, Tag: "div"})
	d.Append(IDMessageBox, Element{ID: IDMessageText, Tag: "p", Classes: []string{"message"}})
	d.Append(IDMessageBox, Element{ID: IDMessageClose, Tag: "img"})

	d.Append("", Element{ID: IDCartContainer, Tag: "div", Classes: []string{"container"}})
	d.Append(IDCartContainer, Element{ID: IDCartQuantity, Tag: "span"})
	for _, item := range layout.Items {
		appendRow(d, item, formatLine)
	}
	d.Append(IDCartContainer, Element{ID: IDGiftInfo, Tag: "div"})

	d.Append(IDCartContainer, Element{ID: IDCartSummary, Tag: "div"})
	d.Append(IDCartSummary, Element{ID: IDSubtotal, Tag: "span"})
	d.Append(IDCartSummary, Element{ID: IDTax, Tag: "span", Text: layout.Tax})
	d.Append(IDCartSummary, Element{ID: IDShipping, Tag: "span", Text: layout.Shipping})
	d.Append(IDCartSummary, Element{ID: IDOrderTotal, Tag: "span"})
	d.Append(IDCartSummary, Element{ID: IDDiscountInput, Tag: "input"})
	d.Append(IDCartSummary, Element{ID: IDDiscountSubmit, Tag: "button"})

	d.Append("", Element{ID: IDSaveButton, Tag: "button", Classes: []string{ClassSaveToggle}})
	d.Append("", Element{ID: IDSaveSidebar, Tag: "aside"})
	d.Append(IDSaveSidebar, Element{ID: IDWindowIcon, Tag: "img", Classes: []string{ClassHide}})
	d.Append(IDSaveSidebar, Element{ID: IDSaveContainer, Tag: "div", Hidden: true})
	d.Append(IDSaveContainer, Element{ID: IDSavedProducts, Tag: "div", Classes: []string{"cards"}})
	d.Append(IDSaveContainer, Element{ID: IDSidebarMessage, Tag: "p", Text: "You have no saved items"})

	if len(layout.Products) > 0 {
		d.Append("", Element{ID: IDProductsSection, Tag: "section"})
		for _, p := range layout.Products {
			appendProduct(d, p)
		}
	}
	return d
}

func appendRow(d *Document, item ItemSeed, formatLine func(string, int) string) {
	key := item.Key
	line := item.UnitPrice
	if formatLine != nil {
		line = formatLine(item.UnitPrice, item.Quantity)
	}
	d.Append(IDCartContainer, Element{ID: RowID(key), Tag: "div"})
	d.Append(RowID(key), Element{ID: NameID(key), Tag: "h2", Text: item.Name})
	d.Append(RowID(key), Element{ID: QtyID(key), Tag: "span", Text: strconv.Itoa(item.Quantity)})
	d.Append(RowID(key), Element{
		ID:      PriceID(key),
		Tag:     "span",
		Text:    line,
		Classes: []string{ClassProductPrice},
		Attrs:   map[string]string{AttrUnitPrice: item.UnitPrice},
	})
	buttonAttrs := map[string]string{
		AttrProductID:   key + "-btn",
		AttrUnitPrice:   item.UnitPrice,
		AttrProductName: item.Name,
		AttrProductDesc: item.Description,
	}
	d.Append(RowID(key), Element{ID: key + "-increase", Tag: "img", Classes: []string{ClassIncrease}, Attrs: buttonAttrs})
	d.Append(RowID(key), Element{ID: key + "-decrease", Tag: "img", Classes: []string{ClassDecrease}, Attrs: buttonAttrs})
	d.Append(RowID(key), Element{ID: key + "-save", Tag: "a", Classes: []string{ClassSaveItem}, Attrs: buttonAttrs})
	d.Append(RowID(key), Element{ID: key + "-remove", Tag: "a", Classes: []string{ClassRemove}, Attrs: map[string]string{AttrRemoveDivID: RowID(key)}})
}

func appendProduct(d *Document, p ProductSeed) {
	card := p.ID + "-card"
	d.Append(IDProductsSection, Element{ID: card, Tag: "div", Classes: []string{ClassCard}})
	d.Append(card, Element{ID: p.ID + "-title", Tag: "h3", Text: p.Name})
	d.Append(card, Element{ID: p.ID + "-spinner", Tag: "div", Hidden: true})
	attrs := map[string]string{
		AttrSpinner:     p.ID + "-spinner",
		AttrCartImage:   p.ID + "-cartimg",
		AttrProductName: p.Name,
		AttrProductDesc: p.Description,
		AttrPrice:       p.Price,
		AttrStock:       strconv.Itoa(p.Stock),
	}
	d.Append(card, Element{ID: p.ID + "-cartimg", Tag: "img", Classes: []string{ClassCartImageButton}, Attrs: attrs})
	d.Append(card, Element{ID: p.ID + "-add", Tag: "button", Classes: []string{ClassAddToCart}, Attrs: attrs})
}
