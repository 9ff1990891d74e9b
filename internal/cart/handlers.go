package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/storefront-cart/internal/common"
	"github.com/noah-isme/storefront-cart/internal/money"
	"github.com/noah-isme/storefront-cart/internal/page"
	"github.com/noah-isme/storefront-cart/internal/pricing"
	"github.com/noah-isme/storefront-cart/internal/security"
)

// Handler wires cart sessions to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type itemRequest struct {
	Key         string `json:"key" validate:"required,alphanumunicode"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" validate:"gte=1"`
	UnitPrice   string `json:"unitPrice" validate:"required,min=2"`
}

type productRequest struct {
	ID          string `json:"id" validate:"required,alphanumunicode"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required,min=2"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

type createRequest struct {
	Items       []itemRequest    `json:"items" validate:"dive"`
	Products    []productRequest `json:"products" validate:"dive"`
	Tax         string           `json:"tax" validate:"required"`
	Shipping    string           `json:"shipping" validate:"required"`
	SnapshotKey string           `json:"snapshotKey" validate:"omitempty,uuid"`
}

type discountView struct {
	Code    string `json:"code"`
	Percent int    `json:"percent"`
	Amount  string `json:"amount"`
}

type summaryView struct {
	Subtotal  string        `json:"subtotal"`
	Tax       string        `json:"tax"`
	Shipping  string        `json:"shipping"`
	Total     string        `json:"total"`
	Discount  *discountView `json:"discount,omitempty"`
	ItemCount int           `json:"itemCount"`
}

type sessionView struct {
	Elements []page.Element `json:"elements"`
	Summary  summaryView    `json:"summary"`
}

var defaultValidate = validator.New()

var (
	errBadPayload  = common.BadRequest("BAD_REQUEST", "invalid payload")
	errInvalidSeed = common.BadRequest("VALIDATION_ERROR", "invalid cart seed")
	errMissingType = common.BadRequest("VALIDATION_ERROR", "event type is required")
)

func (h *Handler) validate() *validator.Validate {
	if h.Validate == nil {
		return defaultValidate
	}
	return h.Validate
}

// Create opens a cart session from the posted page content.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errBadPayload)
		return
	}
	if err := h.validate().Struct(req); err != nil {
		h.writeError(w, errInvalidSeed.WithDetails(validationDetails(err)))
		return
	}
	seed := Seed{SnapshotKey: strings.TrimSpace(req.SnapshotKey)}
	if cookie, err := r.Cookie(security.DefaultCSRFCookie); err == nil {
		seed.Owner = cookie.Value
	}
	seed.Layout.Tax = req.Tax
	seed.Layout.Shipping = req.Shipping
	for _, it := range req.Items {
		seed.Layout.Items = append(seed.Layout.Items, page.ItemSeed{
			Key: it.Key, Name: it.Name, Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice,
		})
	}
	for _, p := range req.Products {
		seed.Layout.Products = append(seed.Layout.Products, page.ProductSeed{
			ID: p.ID, Name: p.Name, Description: p.Description, Price: p.Price, Stock: p.Stock,
		})
	}

	sess, err := h.Svc.Open(r.Context(), seed)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, map[string]any{
		"sessionId":   sess.ID,
		"snapshotKey": sess.SnapshotKey,
		"view":        buildView(sess.Controller),
	})
}

// Get returns the current page of a session.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	common.Data(w, http.StatusOK, buildView(sess.Controller))
}

// Event dispatches one UI event to a session.
func (h *Handler) Event(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.writeError(w, errBadPayload)
		return
	}
	if strings.TrimSpace(ev.Type) == "" {
		h.writeError(w, errMissingType)
		return
	}
	res, err := sess.Controller.Dispatch(r.Context(), ev)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{
		"result": res,
		"view":   buildView(sess.Controller),
	})
}

// Unload persists the session snapshot and closes it.
func (h *Handler) Unload(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	if err := h.Svc.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return nil, false
	}
	sess, err := h.Svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrClosed) {
		err = common.NotFound("cart session not found", err)
	}
	if !common.WriteAppError(w, err) {
		if h.Svc != nil {
			h.Svc.Logger.Error().Err(err).Msg("cart_request_failed")
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to process cart request", nil)
	}
}

func validationDetails(err error) []map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, map[string]string{"field": fe.Namespace(), "rule": fe.Tag()})
	}
	return out
}

func buildView(c *Controller) sessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sessionView{Elements: c.doc.Elements(), Summary: summarize(c.summary, len(c.items))}
}

func summarize(s pricing.Summary, items int) summaryView {
	v := summaryView{
		Subtotal:  money.Format(s.Subtotal),
		Tax:       money.Format(s.Tax),
		Shipping:  money.Format(s.Shipping),
		Total:     money.Format(s.Total),
		ItemCount: items,
	}
	if s.Discount != nil {
		v.Discount = &discountView{
			Code:    s.Discount.Discount.Code,
			Percent: s.Discount.Discount.Percent,
			Amount:  money.Format(s.Discount.Amount),
		}
	}
	return v
}
