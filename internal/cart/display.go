package cart

import "github.com/noah-isme/storefront-cart/internal/page"

// Display is the page the controller reads and mutates. Writes report false
// when the element does not exist.
type Display interface {
	Exists(id string) bool
	Text(id string) (string, bool)
	SetText(id, text string) bool
	Attr(id, name string) (string, bool)
	SetAttr(id, name, value string) bool
	IDsByClass(class string) []string
	HasClass(id, class string) bool
	AddClass(id, class string) bool
	RemoveClass(id, class string) bool
	Visible(id string) bool
	SetVisible(id string, visible bool) bool
	Append(parent string, el page.Element) bool
	Remove(id string) bool
	Elements() []page.Element
}

var _ Display = (*page.Document)(nil)
