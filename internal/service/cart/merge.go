package cart

import (
	"context"
	"errors"

	"carton-service/internal/domain"
	"carton-service/internal/service/session"
)

// LineTransferResult records the outcome of moving one anonymous-cart line
// into the user's cart during a merge.
type LineTransferResult struct {
	Title string
	Err   error
}

// MergeUserCart consolidates the anonymous cart bound to the session into the
// freshly authenticated user's cart. Invoked once per login.
//
// When the user has no active cart the anonymous cart is reassigned to them
// in place and no lines are copied. When they do, every anonymous line is
// re-added to the user's cart in insertion order; a line that fails to
// transfer is logged and reported in the results without aborting the rest,
// then the anonymous cart is destroyed.
//
// With no bound cart (or a stale binding) the merge is a no-op, so a repeated
// invocation after a completed merge does nothing.
func (s *Service) MergeUserCart(ctx context.Context, token, userID string) ([]LineTransferResult, error) {
	guestCartID, ok := s.sessions.BoundCart(token)
	if !ok {
		return nil, nil
	}

	guestCart, err := s.repo.GetByID(ctx, guestCartID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !guestCart.IsActive || guestCart.UserID != nil {
		// Stale binding; nothing to merge.
		s.sessions.ClearCart(token)
		return nil, nil
	}

	userCart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if userCart == nil {
		if err := s.repo.ReassignOwner(ctx, guestCart.ID, userID); err != nil {
			return nil, err
		}
		s.sessions.ClearCart(token)
		return nil, nil
	}

	actor := session.Actor{UserID: &userID, Token: token}

	results := make([]LineTransferResult, 0, len(guestCart.Lines))
	for _, guestLine := range guestCart.Lines {
		_, err := s.AddLine(ctx, actor, userCart, LineInput{
			Title:      guestLine.Title,
			Price:      guestLine.Price,
			VatRate:    guestLine.VatRate,
			Additional: guestLine.Additional,
		}, guestLine.Quantity)
		if err != nil {
			s.logger.Printf("merge: transfer line %q: %v", guestLine.Title, err)
		}
		results = append(results, LineTransferResult{Title: guestLine.Title, Err: err})
	}

	if _, err := s.Recalculate(ctx, userCart.ID); err != nil {
		return results, err
	}
	if err := s.DestroyCart(ctx, actor, guestCart); err != nil {
		return results, err
	}
	return results, nil
}
