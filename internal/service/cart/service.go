package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"carton-service/internal/domain"
	"carton-service/internal/pricing"
	cartrepo "carton-service/internal/repository/cart"
	"carton-service/internal/service/session"
)

type Service struct {
	repo            cartRepo
	sessions        sessionStore
	logger          *log.Logger
	defaultCurrency string
}

type cartRepo interface {
	Create(ctx context.Context, in cartrepo.CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, in cartrepo.CreateLineInput) (*domain.CartLine, error)
	GetLineByID(ctx context.Context, lineID string) (*domain.CartLine, error)
	UpdateLineQuantity(ctx context.Context, lineID string, quantity int, total, totalWithVat decimal.Decimal) error
	UpdateAggregates(ctx context.Context, cartID string, agg cartrepo.Aggregates) error
	ReassignOwner(ctx context.Context, cartID, userID string) error
	Delete(ctx context.Context, cartID string) error
}

type sessionStore interface {
	BoundCart(token string) (string, bool)
	BindCart(token, cartID string)
	ClearCart(token string)
}

func New(repo cartrepo.Repository, sessions *session.Manager, logger *log.Logger, defaultCurrency string) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:            repo,
		sessions:        sessions,
		logger:          logger,
		defaultCurrency: defaultCurrency,
	}
}

// LineInput carries the caller-supplied fields of a new line. Price is the
// unit price; WithVat says whether it already includes VAT.
type LineInput struct {
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	VatRate    decimal.Decimal `json:"vatRate"`
	WithVat    bool            `json:"withVat"`
	Additional map[string]any  `json:"additional,omitempty"`
}

// Resolve finds the active cart owned by the actor, or nil when there is
// none. An authenticated actor is looked up by user id; an anonymous actor by
// the cart bound to their session. A session binding that points at a missing
// or inactive cart resolves to nil without error. Resolve never creates a
// cart.
func (s *Service) Resolve(ctx context.Context, actor session.Actor) (*domain.Cart, error) {
	if actor.Authenticated() {
		cart, err := s.repo.GetActiveByUser(ctx, *actor.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return cart, nil
	}

	cartID, ok := s.sessions.BoundCart(actor.Token)
	if !ok {
		return nil, nil
	}
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !cart.IsActive {
		return nil, nil
	}
	return cart, nil
}

// CreateCart creates a new active cart owned by the actor. Anonymous actors
// get the cart bound to their session. Calling this while an active cart
// already exists creates a second cart; callers resolve first.
func (s *Service) CreateCart(ctx context.Context, actor session.Actor, currencyCode string) (*domain.Cart, error) {
	currencyCode = strings.TrimSpace(currencyCode)
	if currencyCode == "" {
		currencyCode = s.defaultCurrency
	}

	cart, err := s.repo.Create(ctx, cartrepo.CreateCartInput{
		UserID:       actor.UserID,
		CurrencyCode: &currencyCode,
	})
	if err != nil {
		return nil, err
	}
	if !actor.Authenticated() {
		s.sessions.BindCart(actor.Token, cart.ID)
	}
	return cart, nil
}

// AddLine appends a priced line to the cart, creating a cart for the actor
// first when none is bound. The supplied price is normalized into a net/gross
// pair and cart aggregates are recalculated afterwards. Zero quantity is
// allowed and contributes nothing to the totals.
func (s *Service) AddLine(ctx context.Context, actor session.Actor, cart *domain.Cart, in LineInput, quantity int) (*domain.CartLine, error) {
	if quantity < 0 {
		return nil, errors.New("quantity must not be negative")
	}

	if cart == nil {
		var err error
		cart, err = s.CreateCart(ctx, actor, "")
		if err != nil {
			return nil, err
		}
	}

	net, gross, err := pricing.Normalize(in.Price, in.VatRate, in.WithVat)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(int64(quantity))
	line, err := s.repo.AddLine(ctx, cartrepo.CreateLineInput{
		CartID:       cart.ID,
		Title:        in.Title,
		Quantity:     quantity,
		VatRate:      in.VatRate,
		Price:        net,
		PriceWithVat: gross,
		Total:        net.Mul(qty),
		TotalWithVat: gross.Mul(qty),
		Additional:   in.Additional,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.Recalculate(ctx, cart.ID); err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateLineQuantity rewrites the line's totals from its stored unit prices
// and the new quantity. It does not touch cart aggregates: callers invoke
// Recalculate when they are done mutating lines.
func (s *Service) UpdateLineQuantity(ctx context.Context, line *domain.CartLine, quantity int) error {
	if quantity < 0 {
		return errors.New("quantity must not be negative")
	}

	qty := decimal.NewFromInt(int64(quantity))
	total := line.Price.Mul(qty)
	totalWithVat := line.PriceWithVat.Mul(qty)

	if err := s.repo.UpdateLineQuantity(ctx, line.ID, quantity, total, totalWithVat); err != nil {
		return err
	}

	line.Quantity = quantity
	line.Total = total
	line.TotalWithVat = totalWithVat
	return nil
}

// Recalculate recomputes the cart's aggregate fields from its current lines
// and persists them. Idempotent given unchanged lines.
func (s *Service) Recalculate(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	var agg cartrepo.Aggregates
	for _, line := range cart.Lines {
		agg.Count += line.Quantity
		agg.SubTotal = agg.SubTotal.Add(line.Total)
		agg.SubTotalWithVat = agg.SubTotalWithVat.Add(line.TotalWithVat)
		agg.VatTotal = agg.VatTotal.Add(line.TotalWithVat.Sub(line.Total))
	}
	// Grand totals mirror the VAT-inclusive subtotal until discounts apply;
	// DiscountTotal is carried but never subtracted.
	agg.GrandTotal = agg.SubTotalWithVat
	agg.GrandTotalWithVat = agg.SubTotalWithVat

	if err := s.repo.UpdateAggregates(ctx, cartID, agg); err != nil {
		return nil, err
	}

	cart.Count = agg.Count
	cart.SubTotal = agg.SubTotal
	cart.SubTotalWithVat = agg.SubTotalWithVat
	cart.GrandTotal = agg.GrandTotal
	cart.GrandTotalWithVat = agg.GrandTotalWithVat
	cart.VatTotal = agg.VatTotal
	return cart, nil
}

// Line fetches a single cart line by id.
func (s *Service) Line(ctx context.Context, lineID string) (*domain.CartLine, error) {
	return s.repo.GetLineByID(ctx, lineID)
}

// DestroyCart deletes the cart and its lines and drops any session binding
// pointing at it.
func (s *Service) DestroyCart(ctx context.Context, actor session.Actor, cart *domain.Cart) error {
	if err := s.repo.Delete(ctx, cart.ID); err != nil {
		return err
	}
	s.sessions.ClearCart(actor.Token)
	return nil
}

// Subtotal returns the cart's subtotal, zero when no cart is bound.
func (s *Service) Subtotal(cart *domain.Cart, withVat bool) decimal.Decimal {
	if cart == nil {
		return decimal.Zero
	}
	if withVat {
		return cart.SubTotalWithVat
	}
	return cart.SubTotal
}

// Total returns the cart's grand total, zero when no cart is bound.
func (s *Service) Total(cart *domain.Cart, withVat bool) decimal.Decimal {
	if cart == nil {
		return decimal.Zero
	}
	if withVat {
		return cart.GrandTotalWithVat
	}
	return cart.GrandTotal
}

// CurrencyCode returns the cart's currency code, empty when no cart is bound.
func (s *Service) CurrencyCode(cart *domain.Cart) string {
	if cart == nil || cart.CurrencyCode == nil {
		return ""
	}
	return *cart.CurrencyCode
}

// Lines returns the cart's lines, empty when no cart is bound.
func (s *Service) Lines(cart *domain.Cart) []domain.CartLine {
	if cart == nil {
		return nil
	}
	return cart.Lines
}
