package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"carton-service/internal/domain"
)

type CreateCartInput struct {
	UserID       *string
	CurrencyCode *string
	Additional   map[string]any
}

type CreateLineInput struct {
	CartID       string
	Title        string
	Quantity     int
	VatRate      decimal.Decimal
	Price        decimal.Decimal
	PriceWithVat decimal.Decimal
	Total        decimal.Decimal
	TotalWithVat decimal.Decimal
	Additional   map[string]any
}

// Aggregates carries the derived cart-level fields written by recalculation.
type Aggregates struct {
	Count             int
	SubTotal          decimal.Decimal
	SubTotalWithVat   decimal.Decimal
	GrandTotal        decimal.Decimal
	GrandTotalWithVat decimal.Decimal
	VatTotal          decimal.Decimal
}

// Repository is the durable store for carts and their lines. Deleting a cart
// cascades to its lines.
type Repository interface {
	Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, in CreateLineInput) (*domain.CartLine, error)
	GetLineByID(ctx context.Context, lineID string) (*domain.CartLine, error)
	UpdateLineQuantity(ctx context.Context, lineID string, quantity int, total, totalWithVat decimal.Decimal) error
	UpdateAggregates(ctx context.Context, cartID string, agg Aggregates) error
	ReassignOwner(ctx context.Context, cartID, userID string) error
	Delete(ctx context.Context, cartID string) error
}
