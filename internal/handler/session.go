package handler

import (
	"net/http"

	"github.com/andeanlabs/farmakiosk/internal/domain/checkout"
	"github.com/andeanlabs/farmakiosk/internal/domain/session"
)

// userEvents are the events the UI may fire. Order creation, payment
// confirmation, and the idle timeout are driven by the controller itself
// and are not reachable through the bridge.
var userEvents = map[session.Event]struct{}{
	session.EventGoCart:   {},
	session.EventBack:     {},
	session.EventCheckout: {},
	session.EventCancel:   {},
	session.EventNew:      {},
}

func (b *Bridge) getSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.ctrl.Snapshot())
}

func (b *Bridge) postEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event session.Event `json:"event"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, ok := userEvents[req.Event]; !ok {
		writeError(w, http.StatusBadRequest, "unknown event")
		return
	}
	if err := b.ctrl.Apply(req.Event); err != nil {
		b.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b.ctrl.Snapshot())
}

func (b *Bridge) submitCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customer    checkout.CustomerInfo `json:"customer"`
		Fulfillment checkout.Fulfillment  `json:"fulfillment"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := b.ctrl.Submit(r.Context(), req.Customer, req.Fulfillment); err != nil {
		b.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b.ctrl.Snapshot())
}

func (b *Bridge) getReceipt(w http.ResponseWriter, r *http.Request) {
	rec, err := b.ctrl.Receipt(r.Context())
	if err != nil {
		b.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
