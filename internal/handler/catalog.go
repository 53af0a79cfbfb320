package handler

import (
	"net/http"
)

func (b *Bridge) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := b.backend.ListCategories(r.Context())
	if err != nil {
		b.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (b *Bridge) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := b.backend.ListProducts(r.Context(), q.Get("categoryId"), q.Get("q"))
	if err != nil {
		b.writeDomainError(w, err)
		return
	}
	b.cacheProducts(products)
	writeJSON(w, http.StatusOK, products)
}

func (b *Bridge) listWindows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	storeID := q.Get("storeId")
	if storeID == "" {
		storeID = b.cfg.StoreID
	}
	date := q.Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	if err := b.planner.Load(r.Context(), storeID, date); err != nil {
		b.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b.planner.Windows())
}

func (b *Bridge) selectWindow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WindowID string `json:"windowId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := b.planner.Select(req.WindowID); err != nil {
		b.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Selected string `json:"selected"`
	}{Selected: req.WindowID})
}
