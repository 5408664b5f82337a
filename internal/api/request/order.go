package request

// CreateOrderRequest represents the request body for recording an order.
// All fields are required.
type CreateOrderRequest struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Status   string  `json:"status"`
	Type     string  `json:"type"`
}

// UpdateOrderRequest represents the request body for a partial order update.
// All fields are optional (pointers); a nil field keeps the stored value, so
// "leave unchanged" is never conflated with a zero value.
type UpdateOrderRequest struct {
	Price    *float64 `json:"price,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Status   *string  `json:"status,omitempty"`
	Type     *string  `json:"type,omitempty"`
	Created  *string  `json:"created,omitempty"`
}

// Empty reports whether the update carries no recognized fields.
func (r UpdateOrderRequest) Empty() bool {
	return r.Price == nil && r.Quantity == nil && r.Status == nil && r.Type == nil && r.Created == nil
}

// PurgeOrdersRequest represents the request body for bulk-deleting orders by
// status. Ticker may name one stock or be empty/"all" for the whole
// portfolio. Status defaults to Cancelled when empty.
type PurgeOrdersRequest struct {
	Ticker string `json:"ticker,omitempty"`
	Status string `json:"status,omitempty"`
}
