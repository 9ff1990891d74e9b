package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/storefront-cart/internal/basket"
	"github.com/noah-isme/storefront-cart/internal/discount"
	"github.com/noah-isme/storefront-cart/internal/money"
	"github.com/noah-isme/storefront-cart/internal/obs"
	"github.com/noah-isme/storefront-cart/internal/page"
	"github.com/noah-isme/storefront-cart/internal/pricing"
)

// User-facing messages.
const (
	MsgInvalidDiscount = "Invalid discount code"
	MsgAlreadyApplied  = "Discount code already applied"
)

var summaryIDs = []string{page.IDSubtotal, page.IDTax, page.IDShipping, page.IDOrderTotal}

// freshSummary rescans the page and computes undiscounted totals. It reports
// false when a summary element is missing.
func (c *Controller) freshSummary() (pricing.Summary, bool) {
	c.items = Rescan(c.doc)
	for _, id := range summaryIDs {
		if !c.doc.Exists(id) {
			return pricing.Summary{}, false
		}
	}
	taxText, _ := c.doc.Text(page.IDTax)
	shipText, _ := c.doc.Text(page.IDShipping)
	return pricing.Compute(lineTotals(c.items), money.Parse(taxText), money.Parse(shipText), c.currency), true
}

// recompute rebuilds the summary from scratch, re-deriving any active
// discount from the undiscounted total, and writes it to the page.
func (c *Controller) recompute() {
	s, ok := c.freshSummary()
	if !ok {
		if len(c.items) == 0 && !c.doc.Exists(page.IDCartSummary) {
			c.recenter()
			return
		}
		c.logger.Warn().Err(ErrMissingElement).Msg("cart_summary_incomplete")
		return
	}
	if res, applied := c.discounts.Reapply(s.Undiscounted); applied {
		s = s.WithDiscount(res)
	}
	c.summary = s
	if obs.CartRecomputeTotal != nil {
		obs.CartRecomputeTotal.Inc()
	}

	c.doc.SetText(page.IDSubtotal, money.Format(s.Subtotal))
	c.doc.SetText(page.IDOrderTotal, money.Format(s.Total))
	c.fx.Notify(page.IDSubtotal)
	c.fx.Notify(page.IDOrderTotal)

	if len(c.items) == 0 {
		c.doc.Remove(page.IDCartSummary)
		c.recenter()
	}
}

func (c *Controller) recenter() {
	for _, id := range []string{page.IDCartContainer, page.IDGiftInfo} {
		if !c.doc.AddClass(id, page.ClassCenter) {
			c.logger.Warn().Str("element", id).Msg("cart_layout_element_missing")
		}
	}
	c.doc.AddClass(page.IDCartContainer, page.ClassSingleColumn)
}

func (c *Controller) updateBadge() {
	n := strconv.Itoa(len(c.items))
	if !c.doc.SetText(page.IDCartQuantity, n) || !c.doc.SetText(page.IDIconQuantity, n) {
		c.logger.Warn().Msg("cart_badge_missing")
	}
	c.fx.Notify(page.IDIconQuantity)
}

func (c *Controller) restore(ctx context.Context) {
	if c.snapshots == nil || c.snapshotKey == "" {
		return
	}
	records, err := c.snapshots.Load(ctx, c.snapshotKey)
	if err != nil {
		c.logger.Warn().Err(err).Str("snapshot", c.snapshotKey).Msg("snapshot_load_failed")
		countRestore("error")
		return
	}
	if len(records) == 0 {
		countRestore("empty")
		return
	}
	applied := 0
	for _, rec := range records {
		priceID := page.PriceID(rec.ProductIDName)
		if !c.doc.Exists(rec.SelectorID) || !c.doc.Exists(priceID) {
			continue
		}
		unit := money.Parse(rec.CurrentPrice)
		// The unit attribute moves with the line total so a later Rescan sees
		// the restored price.
		c.doc.SetAttr(priceID, page.AttrUnitPrice, money.Format(unit))
		c.doc.SetText(rec.SelectorID, strconv.Itoa(rec.CurrentQty))
		c.doc.SetText(priceID, money.Format(unit.MulInt(rec.CurrentQty)))
		applied++
	}
	c.logger.Debug().Int("records", len(records)).Int("applied", applied).Msg("snapshot_restored")
	countRestore("restored")
}

func countRestore(result string) {
	if obs.CartSnapshotRestoreTotal != nil {
		obs.CartSnapshotRestoreTotal.WithLabelValues(result).Inc()
	}
}

// productKey derives the line key from an increase/decrease target, whose
// product id or element id is "<key>-<suffix>".
func productKey(t Target) string {
	raw := t.data(page.AttrProductID)
	if raw == "" {
		raw = t.ID
	}
	if i := strings.LastIndex(raw, "-"); i > 0 {
		return raw[:i]
	}
	return raw
}

func (c *Controller) adjust(ctx context.Context, ev Event, dir Direction) Result {
	key := productKey(ev.Target)
	c.items = Rescan(c.doc)
	idx := FindByKey(c.items, key)
	if idx == NotFound {
		c.logger.Warn().Str("product", key).Msg("cart_item_not_found")
		return Result{}
	}
	updated, err := Adjust(c.doc, c.items[idx], dir)
	if err != nil {
		c.logger.Warn().Err(err).Str("product", key).Msg("cart_adjust_aborted")
		return Result{}
	}
	c.items[idx] = updated
	if obs.CartQuantityAdjustTotal != nil {
		obs.CartQuantityAdjustTotal.WithLabelValues(dir.String()).Inc()
	}
	c.updateBadge()
	c.recompute()

	if c.snapshots != nil && c.snapshotKey != "" {
		if err := c.snapshots.Upsert(ctx, c.snapshotKey, recordFor(updated)); err != nil {
			c.logger.Warn().Err(err).Str("product", key).Msg("snapshot_upsert_failed")
		}
	}
	return Result{OK: true, Value: strconv.Itoa(updated.Quantity)}
}

func (c *Controller) removeItem(_ context.Context, ev Event) Result {
	rowID := ev.Target.data(page.AttrRemoveDivID)
	if !c.doc.Exists(rowID) {
		c.logger.Warn().Str("element", rowID).Msg("cart_remove_target_missing")
		return Result{}
	}
	if !c.doc.Exists(page.IDSpinner) {
		c.logger.Warn().Str("element", page.IDSpinner).Msg("cart_spinner_missing")
		return Result{}
	}
	c.fx.Spinner(page.IDSpinner, true)
	c.after("remove:"+rowID, c.fx.Timings().SpinnerDelay, func() {
		key := strings.TrimSuffix(rowID, "-row")
		c.doc.Remove(rowID)
		c.items = Rescan(c.doc)
		c.recompute()
		c.updateBadge()
		c.fx.Spinner(page.IDSpinner, false)
		if c.snapshots != nil && c.snapshotKey != "" {
			if err := c.snapshots.Remove(c.life, c.snapshotKey, page.QtyID(key)); err != nil {
				c.logger.Warn().Err(err).Str("product", key).Msg("snapshot_remove_failed")
			}
		}
	})
	return Result{OK: true}
}

func (c *Controller) saveItem(_ context.Context, ev Event) Result {
	t := ev.Target
	key := productKey(t)
	if !c.doc.Exists(page.IDSavedProducts) {
		c.logger.Warn().Str("element", page.IDSavedProducts).Msg("cart_saved_products_missing")
		return Result{}
	}
	qtyText, ok := c.doc.Text(page.QtyID(key))
	if !ok {
		c.logger.Warn().Str("product", key).Msg("cart_item_not_found")
		return Result{}
	}
	name := t.data(page.AttrProductName)
	if name == "" {
		name = "Unknown"
	}
	descr := t.data(page.AttrProductDesc)
	if descr == "" {
		descr = "Not found"
	}
	price := t.data(page.AttrUnitPrice)

	card := "saved-" + key
	c.doc.Remove(card)
	c.doc.Append(page.IDSavedProducts, page.Element{ID: card, Tag: "div", Classes: []string{page.ClassCard}})
	fields := []struct{ id, label, value string }{
		{"name", "productName", name},
		{"descr", "productDescr", descr},
		{"qty", "currentQty", strconv.Itoa(money.ParseQuantity(qtyText))},
		{"price", "currentPrice", price},
		{"date", "date", c.now().Format("Mon Jan 02 2006 15:04:05")},
	}
	for _, f := range fields {
		c.doc.Append(card, page.Element{ID: card + "-" + f.id, Tag: "p", Text: f.label + ": " + f.value})
	}
	c.doc.Remove(page.IDSidebarMessage)
	return Result{OK: true, Value: card}
}

func (c *Controller) applyDiscount(_ context.Context, ev Event) Result {
	code := ev.Value
	if code == "" {
		code, _ = c.doc.Text(page.IDDiscountInput)
	}
	s, ok := c.freshSummary()
	if !ok {
		c.logger.Warn().Err(ErrMissingElement).Msg("cart_summary_incomplete")
		return Result{}
	}
	res, err := c.discounts.Apply(code, s.Undiscounted, false)
	switch {
	case errors.Is(err, discount.ErrUnknownCode):
		countDiscount("unknown")
		c.fx.Message(MsgInvalidDiscount)
		return Result{Message: MsgInvalidDiscount}
	case errors.Is(err, discount.ErrAlreadyApplied):
		countDiscount("already_applied")
		c.fx.Message(MsgAlreadyApplied)
		return Result{Message: MsgAlreadyApplied}
	case err != nil:
		c.logger.Error().Err(err).Msg("cart_discount_failed")
		return Result{}
	}
	countDiscount("applied")
	s = s.WithDiscount(res)
	c.summary = s
	c.doc.SetText(page.IDOrderTotal, money.Format(s.Total))
	c.fx.Notify(page.IDOrderTotal)
	msg := fmt.Sprintf("Discount applied: %d%% off", res.Discount.Percent)
	c.fx.Message(msg)
	return Result{OK: true, Message: msg, Value: money.Format(s.Total)}
}

func countDiscount(result string) {
	if obs.CartDiscountApplyTotal != nil {
		obs.CartDiscountApplyTotal.WithLabelValues(result).Inc()
	}
}

func (c *Controller) formatCode(_ context.Context, ev Event) Result {
	formatted := discount.FormatInput(ev.Value)
	c.doc.SetText(page.IDDiscountInput, formatted)
	return Result{OK: true, Value: formatted}
}

func (c *Controller) toggleSidebar(_ context.Context, _ Event) Result {
	if !c.doc.Exists(page.IDSaveSidebar) {
		c.logger.Warn().Str("element", page.IDSaveSidebar).Msg("cart_sidebar_missing")
		return Result{}
	}
	c.fx.Spinner(page.IDSpinner, true)
	c.after("sidebar", c.fx.Timings().SpinnerDelay, func() {
		if c.doc.HasClass(page.IDSaveSidebar, page.ClassShow) {
			c.doc.RemoveClass(page.IDSaveSidebar, page.ClassShow)
			c.doc.AddClass(page.IDWindowIcon, page.ClassHide)
			c.doc.SetVisible(page.IDSaveContainer, false)
		} else {
			c.doc.AddClass(page.IDSaveSidebar, page.ClassShow)
			c.doc.RemoveClass(page.IDWindowIcon, page.ClassHide)
			c.doc.SetVisible(page.IDSaveContainer, true)
		}
		c.fx.Spinner(page.IDSpinner, false)
	})
	return Result{OK: true}
}

func (c *Controller) addToBasket(_ context.Context, ev Event) Result {
	t := ev.Target
	spinnerID := t.data(page.AttrSpinner)
	imgID := t.data(page.AttrCartImage)
	if !c.doc.Exists(spinnerID) || !c.doc.Exists(imgID) {
		c.logger.Warn().Str("spinner", spinnerID).Str("image", imgID).Msg("cart_basket_elements_missing")
		return Result{}
	}
	id, _, _ := strings.Cut(imgID, "-")

	c.doc.SetVisible(imgID, false)
	c.fx.Spinner(spinnerID, true)

	if c.basket != nil {
		stock, _ := strconv.Atoi(t.data(page.AttrStock))
		product := basket.Product{
			ID:          id,
			Name:        t.data(page.AttrProductName),
			Price:       t.data(page.AttrPrice),
			Description: t.data(page.AttrProductDesc),
			Qty:         1,
			Stock:       stock,
		}
		c.inflight.Add(1)
		go c.sendToBasket(product)
	}

	c.after("basket:"+id, c.fx.Timings().SpinnerDelay, func() {
		c.doc.SetVisible(imgID, true)
		c.doc.AddClass(imgID, page.ClassCenter)
		c.fx.Spinner(spinnerID, false)
		c.fx.Message(fmt.Sprintf("Added product with id %s to cart", id))
	})
	return Result{OK: true}
}

// sendToBasket runs outside the controller lock. Failures are logged only;
// the badge changes on success alone.
func (c *Controller) sendToBasket(p basket.Product) {
	defer c.inflight.Done()
	res, err := c.basket.AddItem(c.life, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		countBasket("failed")
		c.logger.Warn().Err(err).Str("product", p.ID).Msg("basket_add_failed")
		return
	}
	countBasket("added")
	if c.closed {
		return
	}
	n := strconv.Itoa(res.CartItemCount)
	c.doc.SetText(page.IDIconQuantity, n)
	c.fx.Notify(page.IDIconQuantity)
}

func countBasket(result string) {
	if obs.CartBasketAddTotal != nil {
		obs.CartBasketAddTotal.WithLabelValues(result).Inc()
	}
}

func (c *Controller) closeMessage(_ context.Context, _ Event) Result {
	c.fx.CloseMessage()
	return Result{OK: true}
}
