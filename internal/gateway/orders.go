package gateway

import (
	"context"
	"net/url"

	"github.com/andeanlabs/farmakiosk/internal/domain/catalog"
	"github.com/andeanlabs/farmakiosk/internal/domain/checkout"
)

// OrderItem is a draft line on the wire.
type OrderItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// OrderDraft is the order-creation payload. It is produced once per
// submission and never reused.
type OrderDraft struct {
	CustomerName    string                   `json:"customerName"`
	CustomerPhone   string                   `json:"customerPhone"`
	Items           []OrderItem              `json:"items"`
	FulfillmentType checkout.FulfillmentType `json:"fulfillmentType,omitempty"`
	Delivery        *checkout.DeliveryInfo   `json:"delivery,omitempty"`
}

// OrderStatus is the polled order state.
type OrderStatus struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// createOrderResponse accepts both id spellings the backend has shipped.
type createOrderResponse struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId"`
}

// CreateOrder submits a draft and returns the new order id. A 2xx response
// without an id is a backend invariant violation and is reported as an
// APIError rather than a crash.
func (c *Client) CreateOrder(ctx context.Context, draft OrderDraft) (string, error) {
	var resp createOrderResponse
	if err := c.post(ctx, "/orders", draft, &resp); err != nil {
		return "", err
	}

	id := resp.ID
	if id == "" {
		id = resp.OrderID
	}
	if id == "" {
		return "", &APIError{Code: 502, Message: "order response missing id"}
	}
	return id, nil
}

// GetOrderStatus fetches the current order status. Idempotent; safe to
// retry and poll.
func (c *Client) GetOrderStatus(ctx context.Context, orderID string) (OrderStatus, error) {
	var resp OrderStatus
	err := c.get(ctx, "/orders/"+url.PathEscape(orderID)+"/status", &resp)
	return resp, err
}

// GetReceipt fetches the receipt document for a completed order.
// Idempotent; safe to retry.
func (c *Client) GetReceipt(ctx context.Context, orderID string) (catalog.Receipt, error) {
	var resp catalog.Receipt
	err := c.get(ctx, "/orders/"+url.PathEscape(orderID)+"/receipt", &resp)
	return resp, err
}
