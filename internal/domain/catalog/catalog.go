// Package catalog holds the read-only types served by the store backend:
// products, categories, delivery windows, and receipts. The kiosk never
// mutates any of them.
package catalog

import "context"

// Product represents a catalog item available for purchase. Prices are
// integer minor currency units (cents).
type Product struct {
	ID          string `json:"id"`
	SKU         string `json:"sku,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Brand       string `json:"brand,omitempty"`
	PriceCents  int64  `json:"priceCents"`
	Active      bool   `json:"isActive"`
	CategoryID  string `json:"categoryId,omitempty"`
}

// Category groups products for browsing.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"isActive"`
}

// DeliveryWindow is a bounded delivery time slot tied to a store and date.
type DeliveryWindow struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Capacity  int    `json:"capacity"`
}

// ReceiptItem is a priced line item on a receipt.
type ReceiptItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitCents int64  `json:"unitCents"`
	LineCents int64  `json:"lineCents"`
}

// ReceiptPayment summarizes the payment attached to an order.
type ReceiptPayment struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
	ExternalRef string `json:"externalRef,omitempty"`
}

// Receipt is the final order document, including the redeemable QR string.
type Receipt struct {
	OrderID       string          `json:"orderId"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"createdAt"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	Items         []ReceiptItem   `json:"items"`
	SubtotalCents int64           `json:"subtotalCents"`
	DeliveryCents int64           `json:"deliveryCents"`
	TotalCents    int64           `json:"totalCents"`
	QRString      string          `json:"qrString"`
	Payment       *ReceiptPayment `json:"payment,omitempty"`
}

// Client defines read operations against the catalog backend.
type Client interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListProducts(ctx context.Context, categoryID, query string) ([]Product, error)
}
