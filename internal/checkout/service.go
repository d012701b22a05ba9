package checkout

import (
	"context"
	"fmt"

	"github.com/angelmondragon/fruitstand-backend/internal/cart"
	"github.com/angelmondragon/fruitstand-backend/internal/orders"
	"github.com/angelmondragon/fruitstand-backend/internal/products"
	"github.com/angelmondragon/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fruitstand-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a user's cart into a placed order.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error)
}

// ServiceParams bundles the dependencies for the checkout flow.
type ServiceParams struct {
	DB       txRunner
	Cart     *cart.Repository
	Products *products.Repository
	Orders   *orders.Repository
}

type service struct {
	db       txRunner
	cart     *cart.Repository
	products *products.Repository
	orders   *orders.Repository
}

// NewService constructs a checkout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{
		db:       params.DB,
		cart:     params.Cart,
		products: params.Products,
		orders:   params.Orders,
	}, nil
}

// CreateOrder snapshots the cart into an immutable order and clears the
// cart, all inside one transaction. The cart rows are locked first so two
// concurrent checkouts for the same user cannot both produce an order from
// the same lines; the loser observes an empty cart.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error) {
	var placed *models.Order

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cart.WithTx(tx)
		productRepo := s.products.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		items, err := cartRepo.ListByUserForUpdate(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		productIDs := make([]uuid.UUID, 0, len(items))
		itemIDs := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			productIDs = append(productIDs, item.ProductID)
			itemIDs = append(itemIDs, item.ID)
		}
		catalog, err := productRepo.FindByIDs(ctx, productIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
		}
		priceByID := make(map[uuid.UUID]*models.Product, len(catalog))
		for i := range catalog {
			priceByID[catalog[i].ID] = &catalog[i]
		}

		total := 0
		lines := make([]models.OrderLineItem, 0, len(items))
		for _, item := range items {
			product, ok := priceByID[item.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "product no longer available")
			}
			lineTotal := product.PriceCents * item.Quantity
			lines = append(lines, models.OrderLineItem{
				ProductID:      product.ID,
				Name:           product.Name,
				UnitPriceCents: product.PriceCents,
				Quantity:       item.Quantity,
				LineTotalCents: lineTotal,
			})
			total += lineTotal
		}
		if total <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
		}

		order, err := orderRepo.Create(ctx, &models.Order{
			UserID:     userID,
			TotalCents: total,
			Items:      lines,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		// delete only the snapshotted rows; a line added by a concurrent
		// request after the lock was taken stays in the cart
		if err := cartRepo.ClearItems(ctx, userID, itemIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return orders.FromModel(placed), nil
}
