package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/fruitstand-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/fruitstand-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MinimumChargeCents is Stripe's floor for a card charge.
const MinimumChargeCents = 50

// PaymentIntentDTO carries what the browser needs to confirm the charge.
type PaymentIntentDTO struct {
	ClientSecret string `json:"client_secret"`
	AmountCents  int    `json:"amount_cents"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
}

// Service creates payment intents priced from the server-side cart.
type Service interface {
	CreateIntent(ctx context.Context, userID uuid.UUID) (*PaymentIntentDTO, error)
}

type intentCreator interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string) (string, error)
	Currency() string
}

type cartReader interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error)
}

// ServiceParams bundles the dependencies for the payments flow.
type ServiceParams struct {
	Cart   cartReader
	Stripe intentCreator
}

type service struct {
	cart   cartReader
	stripe intentCreator
}

// NewService constructs a payments service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	return &service{cart: params.Cart, stripe: params.Stripe}, nil
}

// CreateIntent prices the user's current cart server side and asks Stripe
// for a matching payment intent. Client-supplied amounts are never trusted.
func (s *service) CreateIntent(ctx context.Context, userID uuid.UUID) (*PaymentIntentDTO, error) {
	current, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if current.SubtotalCents < MinimumChargeCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart total is below the minimum charge amount")
	}

	metadata := map[string]string{
		"user_id":    userID.String(),
		"cart_items": summarize(current.Items),
	}

	clientSecret, err := s.stripe.CreatePaymentIntent(ctx, int64(current.SubtotalCents), metadata)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	return &PaymentIntentDTO{
		ClientSecret: clientSecret,
		AmountCents:  current.SubtotalCents,
		Amount:       decimal.NewFromInt(int64(current.SubtotalCents)).Shift(-2).StringFixed(2),
		Currency:     s.stripe.Currency(),
	}, nil
}

func summarize(items []cart.CartItemDTO) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}
	return strings.Join(parts, ", ")
}
