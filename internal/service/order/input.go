package order

import (
	"strings"

	"github.com/Additional-Code/bakery/internal/entity"
	repo "github.com/Additional-Code/bakery/internal/repository/order"
)

// CreateInput is a candidate order. OrderID, ContactNumber, OrderDate and
// Status are optional and receive defaults when blank.
type CreateInput struct {
	OrderID       string `json:"order_id" validate:"omitempty,max=64"`
	CustomerName  string `json:"customer_name" validate:"required,max=255"`
	ContactNumber string `json:"contact_number" validate:"max=64"`
	Item          string `json:"item" validate:"required,max=255"`
	Quantity      *int   `json:"quantity" validate:"required,gte=1"`
	OrderDate     string `json:"order_date" validate:"omitempty,isodate"`
	Status        string `json:"status" validate:"omitempty,oneof=Pending Completed"`
}

func (in *CreateInput) normalize() {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	in.Item = strings.TrimSpace(in.Item)
	in.OrderDate = strings.TrimSpace(in.OrderDate)
	in.Status = strings.TrimSpace(in.Status)
}

// UpdateInput carries the editable fields of an order; nil means unchanged.
type UpdateInput struct {
	CustomerName  *string `json:"customer_name" validate:"omitnil,notblank,max=255"`
	ContactNumber *string `json:"contact_number" validate:"omitnil,max=64"`
	Item          *string `json:"item" validate:"omitnil,notblank,max=255"`
	Quantity      *int    `json:"quantity" validate:"omitnil,gte=1"`
	OrderDate     *string `json:"order_date" validate:"omitnil,isodate"`
	Status        *string `json:"status" validate:"omitnil,oneof=Pending Completed"`
}

func (in *UpdateInput) normalize() {
	for _, field := range []*string{in.CustomerName, in.ContactNumber, in.Item, in.OrderDate, in.Status} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

func (in UpdateInput) patch() repo.Patch {
	p := repo.Patch{
		CustomerName:  in.CustomerName,
		ContactNumber: in.ContactNumber,
		Item:          in.Item,
		Quantity:      in.Quantity,
		OrderDate:     in.OrderDate,
	}
	if in.Status != nil {
		status := entity.Status(*in.Status)
		p.Status = &status
	}
	return p
}
