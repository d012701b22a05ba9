package cart

import (
	"context"

	"github.com/angelmondragon/fruitstand-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes cart persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListByUser returns the cart rows with their products preloaded, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListByUserForUpdate locks the user's cart rows for the duration of the
// surrounding transaction so concurrent checkouts serialize.
func (r *Repository) ListByUserForUpdate(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	query := forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at ASC")

	var items []models.CartItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// forUpdate adds a row lock on postgres. sqlite has no row locks; its
// single writer serializes transactions.
func forUpdate(query *gorm.DB) *gorm.DB {
	if query.Dialector.Name() == "postgres" {
		return query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

// Upsert adds quantity to an existing (user, product) row or inserts a new one.
func (r *Repository) Upsert(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	item := models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			}),
		}).
		Create(&item).Error
}

// Remove deletes a single product line from the user's cart.
func (r *Repository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearItems drops the listed rows from the user's cart. Rows inserted
// after the caller took its snapshot are left alone.
func (r *Repository) ClearItems(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, itemIDs).
		Delete(&models.CartItem{}).Error
}
