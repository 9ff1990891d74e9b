package page

import "slices"

// Element is one node of the cart page.
type Element struct {
	ID      string            `json:"id"`
	Tag     string            `json:"tag"`
	Parent  string            `json:"parent,omitempty"`
	Text    string            `json:"text,omitempty"`
	Classes []string          `json:"classes,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Hidden  bool              `json:"hidden,omitempty"`
}

// Document is an ordered, id-addressed element tree. It is not safe for
// concurrent use; the cart controller serialises access.
type Document struct {
	order []string
	elems map[string]*Element
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{elems: map[string]*Element{}}
}

// Append adds el under parent (empty for the root). It reports false when
// the id is empty or already taken, or the parent does not exist.
func (d *Document) Append(parent string, el Element) bool {
	if el.ID == "" {
		return false
	}
	if _, exists := d.elems[el.ID]; exists {
		return false
	}
	if parent != "" {
		if _, ok := d.elems[parent]; !ok {
			return false
		}
	}
	el.Parent = parent
	el.Classes = slices.Clone(el.Classes)
	if len(el.Attrs) > 0 {
		attrs := make(map[string]string, len(el.Attrs))
		for k, v := range el.Attrs {
			attrs[k] = v
		}
		el.Attrs = attrs
	}
	d.elems[el.ID] = &el
	d.order = append(d.order, el.ID)
	return true
}

// Exists reports whether id is present.
func (d *Document) Exists(id string) bool {
	_, ok := d.elems[id]
	return ok
}

// Text returns the text content of id.
func (d *Document) Text(id string) (string, bool) {
	el, ok := d.elems[id]
	if !ok {
		return "", false
	}
	return el.Text, true
}

// SetText replaces the text content of id.
func (d *Document) SetText(id, text string) bool {
	el, ok := d.elems[id]
	if !ok {
		return false
	}
	el.Text = text
	return true
}

// Attr returns a data attribute of id.
func (d *Document) Attr(id, name string) (string, bool) {
	el, ok := d.elems[id]
	if !ok || el.Attrs == nil {
		return "", false
	}
	v, ok := el.Attrs[name]
	return v, ok
}

// SetAttr sets a data attribute on id.
func (d *Document) SetAttr(id, name, value string) bool {
	el, ok := d.elems[id]
	if !ok {
		return false
	}
	if el.Attrs == nil {
		el.Attrs = map[string]string{}
	}
	el.Attrs[name] = value
	return true
}

// IDsByClass lists the ids carrying class, in document order.
func (d *Document) IDsByClass(class string) []string {
	var out []string
	for _, id := range d.order {
		if slices.Contains(d.elems[id].Classes, class) {
			out = append(out, id)
		}
	}
	return out
}

// HasClass reports whether id carries class.
func (d *Document) HasClass(id, class string) bool {
	el, ok := d.elems[id]
	return ok && slices.Contains(el.Classes, class)
}

// AddClass adds class to id if missing.
func (d *Document) AddClass(id, class string) bool {
	el, ok := d.elems[id]
	if !ok {
		return false
	}
	if !slices.Contains(el.Classes, class) {
		el.Classes = append(el.Classes, class)
	}
	return true
}

// RemoveClass drops class from id.
func (d *Document) RemoveClass(id, class string) bool {
	el, ok := d.elems[id]
	if !ok {
		return false
	}
	el.Classes = slices.DeleteFunc(el.Classes, func(c string) bool { return c == class })
	return true
}

// Visible reports whether id exists and is shown.
func (d *Document) Visible(id string) bool {
	el, ok := d.elems[id]
	return ok && !el.Hidden
}

// SetVisible shows or hides id.
func (d *Document) SetVisible(id string, visible bool) bool {
	el, ok := d.elems[id]
	if !ok {
		return false
	}
	el.Hidden = !visible
	return true
}

// Remove deletes id and all of its descendants.
func (d *Document) Remove(id string) bool {
	if _, ok := d.elems[id]; !ok {
		return false
	}
	doomed := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, other := range d.order {
			el := d.elems[other]
			if !doomed[other] && doomed[el.Parent] {
				doomed[other] = true
				changed = true
			}
		}
	}
	d.order = slices.DeleteFunc(d.order, func(other string) bool { return doomed[other] })
	for other := range doomed {
		delete(d.elems, other)
	}
	return true
}

// Children lists the direct children of parent in document order.
func (d *Document) Children(parent string) []string {
	var out []string
	for _, id := range d.order {
		if d.elems[id].Parent == parent {
			out = append(out, id)
		}
	}
	return out
}

// Elements returns a copy of every element in document order.
func (d *Document) Elements() []Element {
	out := make([]Element, 0, len(d.order))
	for _, id := range d.order {
		el := *d.elems[id]
		el.Classes = slices.Clone(el.Classes)
		if el.Attrs != nil {
			attrs := make(map[string]string, len(el.Attrs))
			for k, v := range el.Attrs {
				attrs[k] = v
			}
			el.Attrs = attrs
		}
		out = append(out, el)
	}
	return out
}
