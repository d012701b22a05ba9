package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fruitstand-backend/pkg/db/models"
)

// OrderLineItemDTO is one frozen line of a placed order.
type OrderLineItemDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int       `json:"line_total_cents"`
}

// OrderDTO is the transport shape for a placed order.
type OrderDTO struct {
	ID         uuid.UUID          `json:"id"`
	UserID     uuid.UUID          `json:"user_id"`
	TotalCents int                `json:"total_cents"`
	Total      string             `json:"total"`
	Items      []OrderLineItemDTO `json:"items"`
	CreatedAt  time.Time          `json:"created_at"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	items := make([]OrderLineItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderLineItemDTO{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: item.LineTotalCents,
		})
	}

	return &OrderDTO{
		ID:         o.ID,
		UserID:     o.UserID,
		TotalCents: o.TotalCents,
		Total:      decimal.NewFromInt(int64(o.TotalCents)).Shift(-2).StringFixed(2),
		Items:      items,
		CreatedAt:  o.CreatedAt,
	}
}

func FromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// OrderListResult bundles a page of orders with the next cursor.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}
