package gateway

import (
	"context"
	"net/url"

	"github.com/andeanlabs/farmakiosk/internal/domain/catalog"
)

// Compile-time check that the client serves the catalog consumer.
var _ catalog.Client = (*Client)(nil)

// ListCategories returns the active browsing categories.
func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var resp []catalog.Category
	err := c.get(ctx, "/catalog/categories", &resp)
	return resp, err
}

// ListProducts returns products, optionally filtered by category and a
// free-text query.
func (c *Client) ListProducts(ctx context.Context, categoryID, query string) ([]catalog.Product, error) {
	q := url.Values{}
	if categoryID != "" {
		q.Set("categoryId", categoryID)
	}
	if query != "" {
		q.Set("q", query)
	}
	path := "/catalog/products"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var resp []catalog.Product
	err := c.get(ctx, path, &resp)
	return resp, err
}

// ListDeliveryWindows returns the delivery slots for a store and date.
func (c *Client) ListDeliveryWindows(ctx context.Context, storeID, date string) ([]catalog.DeliveryWindow, error) {
	q := url.Values{}
	if storeID != "" {
		q.Set("storeId", storeID)
	}
	if date != "" {
		q.Set("date", date)
	}
	path := "/delivery/windows"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var resp []catalog.DeliveryWindow
	err := c.get(ctx, path, &resp)
	return resp, err
}
