package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"carton-service/internal/domain"
)

const cartColumns = `id::text, user_id::text, is_active, currency_code, exchange_rate,
count, sub_total, sub_total_with_vat, grand_total, grand_total_with_vat,
discount_total, vat_total, additional, created_at`

const lineColumns = `id::text, cart_id::text, title, quantity, vat_rate,
price, price_with_vat, total, total_with_vat, additional, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id, is_active, currency_code, additional)
VALUES ($1, TRUE, $2, $3)
RETURNING ` + cartColumns + `
`
	row := r.pool.QueryRow(ctx, q, in.UserID, in.CurrencyCode, in.Additional)
	cart, err := scanCart(row)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE id = $1
`
	return r.fetchCart(ctx, q, id)
}

// GetActiveByUser returns the single active cart owned by the user. Finding
// more than one breaks the at-most-one-active invariant and surfaces as
// domain.ErrConsistency instead of silently picking a cart.
func (r *postgresRepo) GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
SELECT id::text
FROM carts
WHERE user_id = $1 AND is_active
ORDER BY created_at DESC
LIMIT 2
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(ids) {
	case 0:
		return nil, domain.ErrNotFound
	case 1:
		return r.GetByID(ctx, ids[0])
	default:
		return nil, domain.ErrConsistency
	}
}

func (r *postgresRepo) AddLine(ctx context.Context, in CreateLineInput) (*domain.CartLine, error) {
	const q = `
INSERT INTO cart_lines (cart_id, title, quantity, vat_rate, price, price_with_vat, total, total_with_vat, additional)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + lineColumns + `
`
	row := r.pool.QueryRow(ctx, q,
		in.CartID, in.Title, in.Quantity, in.VatRate,
		in.Price, in.PriceWithVat, in.Total, in.TotalWithVat, in.Additional,
	)
	line, err := scanLine(row)
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (r *postgresRepo) GetLineByID(ctx context.Context, lineID string) (*domain.CartLine, error) {
	const q = `
SELECT ` + lineColumns + `
FROM cart_lines
WHERE id = $1
`
	line, err := scanLine(r.pool.QueryRow(ctx, q, lineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return line, nil
}

func (r *postgresRepo) UpdateLineQuantity(ctx context.Context, lineID string, quantity int, total, totalWithVat decimal.Decimal) error {
	const q = `
UPDATE cart_lines
SET quantity = $1, total = $2, total_with_vat = $3
WHERE id = $4
`
	cmd, err := r.pool.Exec(ctx, q, quantity, total, totalWithVat, lineID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateAggregates writes all derived cart fields in a single statement so a
// concurrent recalculation resolves to last-write-wins at the record level.
func (r *postgresRepo) UpdateAggregates(ctx context.Context, cartID string, agg Aggregates) error {
	const q = `
UPDATE carts
SET count = $1,
    sub_total = $2,
    sub_total_with_vat = $3,
    grand_total = $4,
    grand_total_with_vat = $5,
    vat_total = $6
WHERE id = $7
`
	cmd, err := r.pool.Exec(ctx, q,
		agg.Count, agg.SubTotal, agg.SubTotalWithVat,
		agg.GrandTotal, agg.GrandTotalWithVat, agg.VatTotal, cartID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReassignOwner hands an anonymous cart to a user in place. A cart that
// already belongs to a user is never reassigned.
func (r *postgresRepo) ReassignOwner(ctx context.Context, cartID, userID string) error {
	const q = `
UPDATE carts
SET user_id = $1
WHERE id = $2 AND user_id IS NULL AND is_active
`
	cmd, err := r.pool.Exec(ctx, q, userID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, cartID string) error {
	// Lines go with the cart via ON DELETE CASCADE.
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	cart, err := scanCart(r.pool.QueryRow(ctx, cartQuery, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT ` + lineColumns + `
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cart, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	if err := row.Scan(
		&cart.ID,
		&cart.UserID,
		&cart.IsActive,
		&cart.CurrencyCode,
		&cart.ExchangeRate,
		&cart.Count,
		&cart.SubTotal,
		&cart.SubTotalWithVat,
		&cart.GrandTotal,
		&cart.GrandTotalWithVat,
		&cart.DiscountTotal,
		&cart.VatTotal,
		&cart.Additional,
		&cart.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &cart, nil
}

func scanLine(row pgx.Row) (*domain.CartLine, error) {
	var line domain.CartLine
	if err := row.Scan(
		&line.ID,
		&line.CartID,
		&line.Title,
		&line.Quantity,
		&line.VatRate,
		&line.Price,
		&line.PriceWithVat,
		&line.Total,
		&line.TotalWithVat,
		&line.Additional,
		&line.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &line, nil
}
