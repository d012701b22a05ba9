package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fruitstand-backend/pkg/db/models"
)

// CartItemDTO is one line of the user's cart joined with its product.
type CartItemDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int       `json:"line_total_cents"`
	ImageURL       *string   `json:"image_url,omitempty"`
	AddedAt        time.Time `json:"added_at"`
}

// CartDTO is the full cart view including the running subtotal.
type CartDTO struct {
	Items         []CartItemDTO `json:"items"`
	SubtotalCents int           `json:"subtotal_cents"`
	Subtotal      string        `json:"subtotal"`
}

// FromModels maps cart rows (with preloaded products) into the transport shape.
func FromModels(items []models.CartItem) *CartDTO {
	dto := &CartDTO{Items: make([]CartItemDTO, 0, len(items))}
	for i := range items {
		item := &items[i]
		line := CartItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   item.CreatedAt,
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.UnitPriceCents = item.Product.PriceCents
			line.LineTotalCents = item.Product.PriceCents * item.Quantity
			line.ImageURL = item.Product.ImageURL
		}
		dto.Items = append(dto.Items, line)
		dto.SubtotalCents += line.LineTotalCents
	}
	dto.Subtotal = decimal.NewFromInt(int64(dto.SubtotalCents)).Shift(-2).StringFixed(2)
	return dto
}
