package model

// OrderStatus is the lifecycle state of a buy/sell order. Only Filled orders
// contribute to position aggregates.
type OrderStatus string

const (
	OrderStatusFilled    OrderStatus = "Filled"
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is a recognized order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusFilled, OrderStatusPending, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderType is the direction of an order.
type OrderType string

const (
	OrderTypeBuy  OrderType = "Buy"
	OrderTypeSell OrderType = "Sell"
)

// Valid reports whether t is a recognized order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeBuy || t == OrderTypeSell
}

// Order represents an order row from the database.
//
// OrderID is dense per (portfolio_key, ticker); OrderKey is the immutable
// surrogate key that survives renumbering.
type Order struct {
	OrderKey     int64       `json:"-"`
	StockKey     int64       `json:"-"`
	PortfolioKey int64       `json:"-"`
	Ticker       string      `json:"ticker"`
	OrderID      int64       `json:"orderId"`
	Price        float64     `json:"price"`
	Quantity     float64     `json:"quantity"`
	Status       OrderStatus `json:"status"`
	Type         OrderType   `json:"type"`
	Created      string      `json:"created"`
}
