package gateway

import "context"

// SimulatedProvider is the only payment provider in this deployment.
const SimulatedProvider = "SIMULATED"

// PaymentInfo is the payment record embedded in intent and confirm
// responses.
type PaymentInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PaymentIntent is the response to intent creation.
type PaymentIntent struct {
	OrderID string      `json:"orderId"`
	Payment PaymentInfo `json:"payment"`
}

// ConfirmResult is the response to payment confirmation.
type ConfirmResult struct {
	Payment PaymentInfo `json:"payment"`
	Order   struct {
		ID string `json:"id"`
	} `json:"order"`
}

type createIntentRequest struct {
	OrderID  string `json:"orderId"`
	Provider string `json:"provider"`
}

type confirmRequest struct {
	PaymentID string `json:"paymentId"`
}

// CreatePaymentIntent opens a provisional payment for the order.
func (c *Client) CreatePaymentIntent(ctx context.Context, orderID string) (PaymentIntent, error) {
	var resp PaymentIntent
	err := c.post(ctx, "/payments/intent", createIntentRequest{
		OrderID:  orderID,
		Provider: SimulatedProvider,
	}, &resp)
	return resp, err
}

// ConfirmPayment submits confirmation for a created intent.
func (c *Client) ConfirmPayment(ctx context.Context, paymentID string) (ConfirmResult, error) {
	var resp ConfirmResult
	err := c.post(ctx, "/payments/confirm", confirmRequest{PaymentID: paymentID}, &resp)
	return resp, err
}
