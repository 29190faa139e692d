package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"carton-service/internal/domain"
	cartrepo "carton-service/internal/repository/cart"
)

type lineSeed struct {
	Title   string
	Price   string
	VatRate string
	Qty     int
}

// Apply inserts a demo user with a small cart for manual testing. Idempotent:
// a second run finds the user's cart and leaves it alone.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	userID, err := ensureUser(ctx, pool, "demo@example.com", "Demo User", "DemoPass1")
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	repo := cartrepo.NewPostgres(pool)
	if _, err := repo.GetActiveByUser(ctx, userID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup cart: %w", err)
	}

	currency := "EUR"
	cart, err := repo.Create(ctx, cartrepo.CreateCartInput{
		UserID:       &userID,
		CurrencyCode: &currency,
	})
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}

	lines := []lineSeed{
		{Title: "Demo T-Shirt", Price: "19.99", VatRate: "21", Qty: 1},
		{Title: "Demo Mug", Price: "12.50", VatRate: "21", Qty: 2},
	}

	agg := cartrepo.Aggregates{}
	for _, l := range lines {
		net := decimal.RequireFromString(l.Price)
		rate := decimal.RequireFromString(l.VatRate)
		gross := net.Mul(decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100))))
		qty := decimal.NewFromInt(int64(l.Qty))
		total := net.Mul(qty)
		totalWithVat := gross.Mul(qty)

		if _, err := repo.AddLine(ctx, cartrepo.CreateLineInput{
			CartID:       cart.ID,
			Title:        l.Title,
			Quantity:     l.Qty,
			VatRate:      rate,
			Price:        net,
			PriceWithVat: gross,
			Total:        total,
			TotalWithVat: totalWithVat,
		}); err != nil {
			return fmt.Errorf("add line %s: %w", l.Title, err)
		}

		agg.Count += l.Qty
		agg.SubTotal = agg.SubTotal.Add(total)
		agg.SubTotalWithVat = agg.SubTotalWithVat.Add(totalWithVat)
		agg.VatTotal = agg.VatTotal.Add(totalWithVat.Sub(total))
	}
	agg.GrandTotal = agg.SubTotalWithVat
	agg.GrandTotalWithVat = agg.SubTotalWithVat

	if err := repo.UpdateAggregates(ctx, cart.ID, agg); err != nil {
		return fmt.Errorf("update aggregates: %w", err)
	}
	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, name, password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	const q = `
INSERT INTO users (email, name, password_hash)
VALUES (lower($1), $2, $3)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, email, name, string(hashed)).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
