package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is the immutable snapshot produced by checkout. It is never
// updated or deleted by the normal flow.
type Order struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	TotalCents int             `gorm:"column:total_cents;not null"`
	Items      []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
