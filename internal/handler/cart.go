package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (b *Bridge) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	p, ok, err := b.lookupProduct(r.Context(), req.ProductID)
	if err != nil {
		b.writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "unknown product")
		return
	}

	b.cart.Add(p)
	writeJSON(w, http.StatusOK, b.ctrl.Snapshot())
}

func (b *Bridge) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Qty int `json:"qty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	b.cart.SetQuantity(chi.URLParam(r, "productID"), req.Qty)
	writeJSON(w, http.StatusOK, b.ctrl.Snapshot())
}

func (b *Bridge) clearCart(w http.ResponseWriter, _ *http.Request) {
	b.cart.Clear()
	writeJSON(w, http.StatusOK, b.ctrl.Snapshot())
}
