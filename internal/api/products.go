package api

import (
	"cmp"
	"database/sql"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/dispensa/internal/expiry"
	"github.com/erazemk/dispensa/internal/model"
	"github.com/erazemk/dispensa/internal/store"
)

// soonWindow is how many days ahead the "soon" list filter looks. Products
// expiring today are in no filtered list.
const soonWindow = 14

// statsSoonWindow is the narrower window the dashboard counts as "soon".
const statsSoonWindow = 3

// ProductsHandler handles product CRUD endpoints.
type ProductsHandler struct {
	DB      *sql.DB
	Checker ProductChecker
	Now     func() time.Time
}

type productRequest struct {
	Name       string `json:"name"`
	Barcode    string `json:"barcode"`
	Brand      string `json:"brand"`
	Category   string `json:"category"`
	ImageURL   string `json:"image_url"`
	Quantity   *int   `json:"quantity"`
	ExpiryDate string `json:"expiry_date"`
}

// productView is a product as the API returns it. DaysLeft is nil when the
// product has no usable expiry date.
type productView struct {
	model.Product
	DaysLeft *int `json:"days_left"`
}

// saveResponse is returned by create and update. Alert names the notification
// the save triggered, if any.
type saveResponse struct {
	productView
	Alert expiry.Tier `json:"alert,omitempty"`
}

type statsResponse struct {
	Total   int `json:"total"`
	Expired int `json:"expired"`
	Soon    int `json:"soon"`
	Fresh   int `json:"fresh"`
}

// List handles GET /api/products.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	switch filter {
	case "", model.FilterSoon, model.FilterExpired, model.FilterFresh:
	default:
		jsonError(w, http.StatusBadRequest, "invalid filter")
		return
	}

	products, err := store.ListProducts(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list products", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	now := h.Now()
	views := make([]productView, 0, len(products))
	for _, p := range products {
		v := newProductView(p, now)
		if matchesFilter(filter, v.DaysLeft) {
			views = append(views, v)
		}
	}

	// Dated products first, soonest expiry first. Undated ones keep name order.
	slices.SortStableFunc(views, func(a, b productView) int {
		switch {
		case a.DaysLeft == nil && b.DaysLeft == nil:
			return 0
		case a.DaysLeft == nil:
			return 1
		case b.DaysLeft == nil:
			return -1
		}
		return cmp.Compare(*a.DaysLeft, *b.DaysLeft)
	})

	jsonResponse(w, http.StatusOK, views)
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, rawExpiry, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	created, err := store.CreateProduct(r.Context(), h.DB, p)
	if err != nil {
		slog.Error("failed to create product", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	slog.Info("product created", "id", created.ID, "name", created.Name)
	h.respondSaved(w, r, http.StatusCreated, created, rawExpiry)
}

// Get handles GET /api/products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}

	jsonResponse(w, http.StatusOK, newProductView(*p, h.Now()))
}

// Update handles PUT /api/products/{id}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, rawExpiry, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	p.ID = id

	found, err := store.UpdateProduct(r.Context(), h.DB, p)
	if err != nil {
		slog.Error("failed to update product", "id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}

	updated, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	slog.Info("product updated", "id", id, "name", updated.Name)
	h.respondSaved(w, r, http.StatusOK, updated, rawExpiry)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := store.DeleteProduct(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete product", "id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	slog.Info("product deleted", "id", id, "name", p.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// Stats handles GET /api/stats.
func (h *ProductsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListProducts(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list products", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	now := h.Now()
	stats := statsResponse{Total: len(products)}
	for _, p := range products {
		days := daysLeft(p.ExpiryDate, now)
		switch {
		case days == nil:
			stats.Fresh++
		case *days < 0:
			stats.Expired++
		case *days <= statsSoonWindow:
			stats.Soon++
		default:
			stats.Fresh++
		}
	}

	jsonResponse(w, http.StatusOK, stats)
}

// respondSaved runs the on-save check against the expiry text exactly as it
// was submitted, then writes the saved product.
func (h *ProductsHandler) respondSaved(w http.ResponseWriter, r *http.Request, status int, p *model.Product, rawExpiry string) {
	tier := expiry.TierNone
	if h.Checker != nil {
		tier = h.Checker.CheckProduct(r.Context(), p.Name, rawExpiry, p.Quantity, p.ImageURL)
	}

	jsonResponse(w, status, saveResponse{
		productView: newProductView(*p, h.Now()),
		Alert:       tier,
	})
}

// decodeProduct reads a product from the request body. The expiry is
// normalized for storage; the raw text is returned alongside it.
func decodeProduct(w http.ResponseWriter, r *http.Request) (model.Product, string, bool) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return model.Product{}, "", false
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return model.Product{}, "", false
	}

	quantity := model.DefaultQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 0 {
		jsonError(w, http.StatusBadRequest, "quantity must not be negative")
		return model.Product{}, "", false
	}

	p := model.Product{
		Name:       req.Name,
		Barcode:    strings.TrimSpace(req.Barcode),
		Brand:      strings.TrimSpace(req.Brand),
		Category:   strings.TrimSpace(req.Category),
		ImageURL:   strings.TrimSpace(req.ImageURL),
		Quantity:   quantity,
		ExpiryDate: expiry.NormalizeForStorage(req.ExpiryDate),
	}
	return p, req.ExpiryDate, true
}

func newProductView(p model.Product, now time.Time) productView {
	return productView{Product: p, DaysLeft: daysLeft(p.ExpiryDate, now)}
}

func daysLeft(raw string, now time.Time) *int {
	d, ok := expiry.ParseDate(raw)
	if !ok {
		return nil
	}
	days := expiry.DaysUntil(d, now)
	return &days
}

func matchesFilter(filter string, days *int) bool {
	switch filter {
	case model.FilterSoon:
		return days != nil && *days > 0 && *days <= soonWindow
	case model.FilterExpired:
		return days != nil && *days < 0
	case model.FilterFresh:
		return days != nil && *days > soonWindow
	}
	return true
}
