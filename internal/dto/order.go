package dto

import "time"

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID            int64     `json:"id"`
	OrderID       string    `json:"order_id"`
	CustomerName  string    `json:"customer_name"`
	ContactNumber string    `json:"contact_number"`
	Item          string    `json:"item"`
	Quantity      int       `json:"quantity"`
	OrderDate     string    `json:"order_date"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateOrderRequest is the POST /api/orders body.
type CreateOrderRequest struct {
	OrderID       string  `json:"order_id"`
	CustomerName  string  `json:"customer_name"`
	ContactNumber string  `json:"contact_number"`
	Item          string  `json:"item"`
	Quantity      *int    `json:"quantity"`
	OrderDate     string  `json:"order_date"`
	Status        *string `json:"status"`
}

// UpdateOrderRequest is the PUT /api/orders/:id body. Absent fields are left untouched.
type UpdateOrderRequest struct {
	CustomerName  *string `json:"customer_name"`
	ContactNumber *string `json:"contact_number"`
	Item          *string `json:"item"`
	Quantity      *int    `json:"quantity"`
	OrderDate     *string `json:"order_date"`
	Status        *string `json:"status"`
}

// CreateOrderResponse wraps a freshly created order.
type CreateOrderResponse struct {
	Message string        `json:"message"`
	Order   OrderResponse `json:"order"`
}

// UpdateOrderResponse confirms an update and carries the stored row.
type UpdateOrderResponse struct {
	Message string        `json:"message"`
	Order   OrderResponse `json:"order"`
}

// DeleteOrderResponse carries the field values the order had before removal.
type DeleteOrderResponse struct {
	Message      string        `json:"message"`
	DeletedOrder OrderResponse `json:"deletedOrder"`
}
