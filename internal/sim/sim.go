// Package sim is an in-memory stand-in for the store backend. It serves
// the catalog, order, and payment endpoints the kiosk agent consumes, with
// a simulated payment provider that settles after a few status polls.
package sim

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andeanlabs/farmakiosk/internal/domain/catalog"
	"github.com/andeanlabs/farmakiosk/internal/domain/checkout"
	"github.com/andeanlabs/farmakiosk/pkg/money"
)

const (
	statusPending   = "PENDING"
	statusConfirmed = "CONFIRMED"

	providerSimulated = "SIMULATED"

	deliveryFeeCents = 199
)

// Config tunes simulator behavior.
type Config struct {
	// SettleAfter is how many status polls after payment confirmation the
	// order stays PENDING before flipping to CONFIRMED. Zero settles on
	// the first poll.
	SettleAfter int
}

type orderItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type orderDraft struct {
	CustomerName    string                 `json:"customerName"`
	CustomerPhone   string                 `json:"customerPhone"`
	Items           []orderItem            `json:"items"`
	FulfillmentType string                 `json:"fulfillmentType"`
	Delivery        *checkout.DeliveryInfo `json:"delivery"`
}

type orderRecord struct {
	id        string
	draft     orderDraft
	status    string
	createdAt time.Time
	paymentID string

	// pollsSincePaid counts status polls after payment confirmation.
	pollsSincePaid int
	paid           bool
}

type paymentRecord struct {
	id      string
	orderID string
	status  string
}

// Server is the in-memory backend. Safe for concurrent use.
type Server struct {
	cfg Config
	lg  *zap.Logger

	mu       sync.Mutex
	products []catalog.Product
	byID     map[string]catalog.Product
	cats     []catalog.Category
	orders   map[string]*orderRecord
	payments map[string]*paymentRecord
}

// NewServer returns a simulator seeded with the demo catalog.
func NewServer(cfg Config, lg *zap.Logger) *Server {
	if lg == nil {
		lg = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		lg:       lg,
		products: seedProducts(),
		cats:     seedCategories(),
		orders:   make(map[string]*orderRecord),
		payments: make(map[string]*paymentRecord),
	}
	s.byID = make(map[string]catalog.Product, len(s.products))
	for _, p := range s.products {
		s.byID[p.ID] = p
	}
	return s
}

// Routes builds the backend API router.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/catalog/categories", s.listCategories)
	r.Get("/catalog/products", s.listProducts)
	r.Get("/delivery/windows", s.listWindows)
	r.Post("/orders", s.createOrder)
	r.Get("/orders/{orderID}/status", s.orderStatus)
	r.Get("/orders/{orderID}/receipt", s.orderReceipt)
	r.Post("/payments/intent", s.createIntent)
	r.Post("/payments/confirm", s.confirmPayment)
	return r
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var draft orderDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(draft.Items) == 0 {
		writeMessage(w, http.StatusUnprocessableEntity, "order has no items")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range draft.Items {
		if _, ok := s.byID[it.ProductID]; !ok {
			writeMessage(w, http.StatusUnprocessableEntity, "unknown product: "+it.ProductID)
			return
		}
		if it.Qty < 1 {
			writeMessage(w, http.StatusUnprocessableEntity, "invalid quantity for "+it.ProductID)
			return
		}
	}

	o := &orderRecord{
		id:        uuid.New().String(),
		draft:     draft,
		status:    statusPending,
		createdAt: time.Now().UTC(),
	}
	s.orders[o.id] = o

	s.lg.Info("order created",
		zap.String("order_id", o.id),
		zap.Int("items", len(draft.Items)),
	)
	writeJSON(w, http.StatusCreated, map[string]string{"id": o.id})
}

func (s *Server) orderStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[chi.URLParam(r, "orderID")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "order not found")
		return
	}

	if o.paid && o.status != statusConfirmed {
		o.pollsSincePaid++
		if o.pollsSincePaid > s.cfg.SettleAfter {
			o.status = statusConfirmed
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"orderId": o.id,
		"status":  o.status,
	})
}

func (s *Server) createIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID  string `json:"orderId"`
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Provider != providerSimulated {
		writeMessage(w, http.StatusUnprocessableEntity, "unsupported provider: "+req.Provider)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[req.OrderID]
	if !ok {
		writeMessage(w, http.StatusNotFound, "order not found")
		return
	}

	p := &paymentRecord{
		id:      uuid.New().String(),
		orderID: o.id,
		status:  "REQUIRES_CONFIRMATION",
	}
	s.payments[p.id] = p
	o.paymentID = p.id

	writeJSON(w, http.StatusCreated, map[string]any{
		"orderId": o.id,
		"payment": map[string]string{"id": p.id, "status": p.status},
	})
}

func (s *Server) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID string `json:"paymentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[req.PaymentID]
	if !ok {
		writeMessage(w, http.StatusNotFound, "payment not found")
		return
	}
	p.status = statusConfirmed

	o := s.orders[p.orderID]
	o.paid = true
	if s.cfg.SettleAfter <= 0 {
		o.status = statusConfirmed
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payment": map[string]string{"id": p.id, "status": p.status},
		"order":   map[string]string{"id": o.id},
	})
}

func (s *Server) orderReceipt(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[chi.URLParam(r, "orderID")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "order not found")
		return
	}
	if o.status != statusConfirmed {
		writeMessage(w, http.StatusConflict, "order is not confirmed yet")
		return
	}

	writeJSON(w, http.StatusOK, s.buildReceipt(o))
}

// buildReceipt prices the order against the catalog. Caller holds the lock.
func (s *Server) buildReceipt(o *orderRecord) catalog.Receipt {
	var (
		items    []catalog.ReceiptItem
		subtotal int64
	)
	for _, it := range o.draft.Items {
		p := s.byID[it.ProductID]
		line := money.Line(p.PriceCents, it.Qty)
		subtotal += line
		items = append(items, catalog.ReceiptItem{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       it.Qty,
			UnitCents: p.PriceCents,
			LineCents: line,
		})
	}

	var delivery int64
	if o.draft.FulfillmentType == string(checkout.FulfillmentDelivery) {
		delivery = deliveryFeeCents
	}

	rec := catalog.Receipt{
		OrderID:       o.id,
		Status:        o.status,
		CreatedAt:     o.createdAt.Format(time.RFC3339),
		CustomerName:  o.draft.CustomerName,
		CustomerPhone: o.draft.CustomerPhone,
		Items:         items,
		SubtotalCents: subtotal,
		DeliveryCents: delivery,
		TotalCents:    subtotal + delivery,
		QRString:      "KIOSK:" + o.id,
	}
	if p, ok := s.payments[o.paymentID]; ok {
		rec.Payment = &catalog.ReceiptPayment{
			ID:          p.id,
			Provider:    providerSimulated,
			Status:      p.status,
			AmountCents: rec.TotalCents,
			Currency:    "USD",
		}
	}
	return rec
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}
