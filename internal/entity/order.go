package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Order is a single customer purchase tracked by the bakery.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID            int64     `bun:"id,pk,autoincrement"`
	OrderID       string    `bun:"order_id,notnull,unique"`
	CustomerName  string    `bun:"customer_name,notnull"`
	ContactNumber string    `bun:"contact_number,notnull"`
	Item          string    `bun:"item,notnull"`
	Quantity      int       `bun:"quantity,notnull"`
	OrderDate     string    `bun:"order_date,notnull"`
	Status        Status    `bun:"status,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}
