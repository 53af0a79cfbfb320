package sim

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/andeanlabs/farmakiosk/internal/domain/catalog"
)

func seedCategories() []catalog.Category {
	return []catalog.Category{
		{ID: "cat-analgesics", Name: "Analgesics", Active: true},
		{ID: "cat-vitamins", Name: "Vitamins", Active: true},
		{ID: "cat-first-aid", Name: "First Aid", Active: true},
	}
}

func seedProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "p-paracetamol-500", SKU: "PARA-500", Name: "Paracetamol 500mg x20", Brand: "Genfar", PriceCents: 150, Active: true, CategoryID: "cat-analgesics"},
		{ID: "p-ibuprofeno-400", SKU: "IBU-400", Name: "Ibuprofeno 400mg x10", Brand: "MK", PriceCents: 275, Active: true, CategoryID: "cat-analgesics"},
		{ID: "p-aspirina-100", SKU: "ASP-100", Name: "Aspirina 100mg x30", Brand: "Bayer", PriceCents: 320, Active: true, CategoryID: "cat-analgesics"},
		{ID: "p-vitamina-c", SKU: "VIT-C-1000", Name: "Vitamina C 1000mg x10", Brand: "Redoxon", PriceCents: 480, Active: true, CategoryID: "cat-vitamins"},
		{ID: "p-complejo-b", SKU: "VIT-B-CPX", Name: "Complejo B x30", Brand: "Genfar", PriceCents: 650, Active: true, CategoryID: "cat-vitamins"},
		{ID: "p-vendas", SKU: "FA-VEN-01", Name: "Vendas elasticas 5cm", Brand: "Curaplast", PriceCents: 210, Active: true, CategoryID: "cat-first-aid"},
		{ID: "p-alcohol", SKU: "FA-ALC-01", Name: "Alcohol antiseptico 250ml", Brand: "LIRA", PriceCents: 180, Active: true, CategoryID: "cat-first-aid"},
		{ID: "p-curitas", SKU: "FA-CUR-01", Name: "Curitas surtidas x40", Brand: "Band-Aid", PriceCents: 160, Active: true, CategoryID: "cat-first-aid"},
	}
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cats)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID := q.Get("categoryId")
	query := strings.ToLower(q.Get("q"))

	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

// listWindows generates deterministic slots per (store, date) so repeat
// fetches return stable window ids.
func (s *Server) listWindows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	storeID := q.Get("storeId")
	date := q.Get("date")
	if storeID == "" || date == "" {
		writeMessage(w, http.StatusBadRequest, "storeId and date are required")
		return
	}

	slots := [][2]string{
		{"09:00", "11:00"},
		{"11:00", "13:00"},
		{"14:00", "16:00"},
		{"16:00", "18:00"},
	}
	windows := make([]catalog.DeliveryWindow, len(slots))
	for i, slot := range slots {
		windows[i] = catalog.DeliveryWindow{
			ID:        fmt.Sprintf("%s-%s-w%d", storeID, date, i+1),
			Date:      date,
			StartTime: slot[0],
			EndTime:   slot[1],
			Capacity:  5,
		}
	}
	writeJSON(w, http.StatusOK, windows)
}
