package cart

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"carton-service/internal/domain"
	"carton-service/internal/migrate"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE cart_lines, carts, users CASCADE`); err != nil {
		t.Fatalf("reset tables: %v", err)
	}
}

func insertUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, email string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, 'x') RETURNING id::text`, email,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func strPtr(v string) *string { return &v }

func TestPostgres_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	created, err := repo.Create(ctx, CreateCartInput{CurrencyCode: strPtr("EUR")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.IsActive || created.UserID != nil || *created.CurrencyCode != "EUR" {
		t.Fatalf("unexpected cart %+v", created)
	}

	fetched, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.ID != created.ID || len(fetched.Lines) != 0 {
		t.Fatalf("fetched mismatch %+v", fetched)
	}
}

func TestPostgres_LinesAndAggregates(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	cart, err := repo.Create(ctx, CreateCartInput{CurrencyCode: strPtr("EUR")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	line, err := repo.AddLine(ctx, CreateLineInput{
		CartID:       cart.ID,
		Title:        "Test",
		Quantity:     3,
		VatRate:      decimal.RequireFromString("21"),
		Price:        decimal.RequireFromString("50"),
		PriceWithVat: decimal.RequireFromString("60.5"),
		Total:        decimal.RequireFromString("150"),
		TotalWithVat: decimal.RequireFromString("181.5"),
		Additional:   map[string]any{"sku": "TEST-001"},
	})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if line.Quantity != 3 || !line.Total.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("unexpected line %+v", line)
	}
	if line.Additional["sku"] != "TEST-001" {
		t.Fatalf("additional payload lost: %+v", line.Additional)
	}

	if err := repo.UpdateAggregates(ctx, cart.ID, Aggregates{
		Count:             3,
		SubTotal:          decimal.RequireFromString("150"),
		SubTotalWithVat:   decimal.RequireFromString("181.5"),
		GrandTotal:        decimal.RequireFromString("181.5"),
		GrandTotalWithVat: decimal.RequireFromString("181.5"),
		VatTotal:          decimal.RequireFromString("31.5"),
	}); err != nil {
		t.Fatalf("UpdateAggregates: %v", err)
	}

	fetched, err := repo.GetByID(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Count != 3 || !fetched.VatTotal.Equal(decimal.RequireFromString("31.5")) {
		t.Fatalf("aggregates not persisted %+v", fetched)
	}

	if err := repo.UpdateLineQuantity(ctx, line.ID, 2,
		decimal.RequireFromString("100"), decimal.RequireFromString("121")); err != nil {
		t.Fatalf("UpdateLineQuantity: %v", err)
	}
	updated, err := repo.GetLineByID(ctx, line.ID)
	if err != nil {
		t.Fatalf("GetLineByID: %v", err)
	}
	if updated.Quantity != 2 || !updated.Total.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("line not updated %+v", updated)
	}
}

func TestPostgres_ReassignOwner(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	userID := insertUser(ctx, t, pool, "owner@example.com")
	cart, err := repo.Create(ctx, CreateCartInput{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.ReassignOwner(ctx, cart.ID, userID); err != nil {
		t.Fatalf("ReassignOwner: %v", err)
	}

	owned, err := repo.GetActiveByUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetActiveByUser: %v", err)
	}
	if owned.ID != cart.ID || owned.UserID == nil || *owned.UserID != userID {
		t.Fatalf("unexpected owner %+v", owned)
	}

	// Already user-owned: must not reassign again.
	other := insertUser(ctx, t, pool, "other@example.com")
	if err := repo.ReassignOwner(ctx, cart.ID, other); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_GetActiveByUserConsistency(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	userID := insertUser(ctx, t, pool, "dupe@example.com")

	if _, err := repo.GetActiveByUser(ctx, userID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := repo.Create(ctx, CreateCartInput{UserID: &userID}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := repo.GetActiveByUser(ctx, userID); !errors.Is(err, domain.ErrConsistency) {
		t.Fatalf("expected consistency error, got %v", err)
	}
}

func TestPostgres_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	cart, err := repo.Create(ctx, CreateCartInput{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	line, err := repo.AddLine(ctx, CreateLineInput{CartID: cart.ID, Title: "Doomed", Quantity: 1})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	if err := repo.Delete(ctx, cart.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, cart.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.GetLineByID(ctx, line.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected cascaded line delete, got %v", err)
	}
}
