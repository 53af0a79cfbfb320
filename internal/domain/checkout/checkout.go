// Package checkout holds the customer and fulfillment model, the
// missing-field validator that gates order submission, and the delivery
// window planner.
package checkout

// CustomerInfo is the buyer data collected on the checkout screen.
type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Address is a delivery destination.
type Address struct {
	Line1      string   `json:"line1"`
	Reference  string   `json:"reference,omitempty"`
	City       string   `json:"city"`
	Zone       string   `json:"zone,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// FulfillmentType selects how the order reaches the customer.
type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "PICKUP"
	FulfillmentDelivery FulfillmentType = "DELIVERY"
)

// DeliveryInfo is the delivery half of a fulfillment selection. WindowID
// must come from the window list currently fetched for (StoreID, Date).
type DeliveryInfo struct {
	StoreID  string  `json:"storeId"`
	Date     string  `json:"date"`
	WindowID string  `json:"windowId"`
	Address  Address `json:"address"`
}

// Fulfillment is a tagged variant: pickup, or delivery with details.
// The zero value is pickup.
type Fulfillment struct {
	Type     FulfillmentType `json:"type"`
	Delivery *DeliveryInfo   `json:"delivery,omitempty"`
}

// IsDelivery reports whether delivery-specific validation applies.
func (f Fulfillment) IsDelivery() bool {
	return f.Type == FulfillmentDelivery
}
