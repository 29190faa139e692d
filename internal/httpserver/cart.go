package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"carton-service/internal/domain"
	cartsvc "carton-service/internal/service/cart"
)

type createCartRequest struct {
	CurrencyCode string `json:"currencyCode"`
}

type addLineRequest struct {
	Title      string          `json:"title" binding:"required"`
	Price      decimal.Decimal `json:"price"`
	VatRate    decimal.Decimal `json:"vatRate"`
	WithVat    bool            `json:"withVat"`
	Quantity   *int            `json:"quantity"`
	Additional map[string]any  `json:"additional"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// cartSummary is the read shape for the current cart. The accessor defaults
// apply when no cart is bound: zero totals, empty currency, no lines.
type cartSummary struct {
	Cart            *domain.Cart      `json:"cart"`
	SubTotal        decimal.Decimal   `json:"subTotal"`
	SubTotalWithVat decimal.Decimal   `json:"subTotalWithVat"`
	Total           decimal.Decimal   `json:"total"`
	TotalWithVat    decimal.Decimal   `json:"totalWithVat"`
	CurrencyCode    string            `json:"currencyCode"`
	Lines           []domain.CartLine `json:"lines"`
}

func summarize(svc *cartsvc.Service, cart *domain.Cart) cartSummary {
	lines := svc.Lines(cart)
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartSummary{
		Cart:            cart,
		SubTotal:        svc.Subtotal(cart, false),
		SubTotalWithVat: svc.Subtotal(cart, true),
		Total:           svc.Total(cart, false),
		TotalWithVat:    svc.Total(cart, true),
		CurrencyCode:    svc.CurrencyCode(cart),
		Lines:           lines,
	}
}

func createCartHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createCartRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
		}
		actor := actorFrom(c)

		// At most one active cart per identity: return the existing cart
		// instead of stacking a second one.
		existing, err := svc.Resolve(c.Request.Context(), actor)
		if err != nil {
			respondCartError(c, err)
			return
		}
		if existing != nil {
			c.JSON(http.StatusOK, gin.H{"cart": existing})
			return
		}

		cart, err := svc.CreateCart(c.Request.Context(), actor, req.CurrencyCode)
		if err != nil {
			respondCartError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"cart": cart})
	}
}

func getCartHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Resolve(c.Request.Context(), actorFrom(c))
		if err != nil {
			respondCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, summarize(svc, cart))
	}
}

func addLineHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		actor := actorFrom(c)

		cart, err := svc.Resolve(c.Request.Context(), actor)
		if err != nil {
			respondCartError(c, err)
			return
		}

		line, err := svc.AddLine(c.Request.Context(), actor, cart, cartsvc.LineInput{
			Title:      req.Title,
			Price:      req.Price,
			VatRate:    req.VatRate,
			WithVat:    req.WithVat,
			Additional: req.Additional,
		}, quantity)
		if err != nil {
			respondCartError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"line": line})
	}
}

func updateLineQuantityHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		actor := actorFrom(c)

		cart, err := svc.Resolve(c.Request.Context(), actor)
		if err != nil {
			respondCartError(c, err)
			return
		}
		if cart == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "no cart"})
			return
		}

		line, err := svc.Line(c.Request.Context(), c.Param("lineID"))
		if err != nil {
			respondCartError(c, err)
			return
		}
		if line.CartID != cart.ID {
			c.JSON(http.StatusNotFound, gin.H{"message": "line not in cart"})
			return
		}

		if err := svc.UpdateLineQuantity(c.Request.Context(), line, req.Quantity); err != nil {
			respondCartError(c, err)
			return
		}
		// UpdateLineQuantity leaves the aggregates to the caller.
		cart, err = svc.Recalculate(c.Request.Context(), cart.ID)
		if err != nil {
			respondCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"line": line, "cart": cart})
	}
}

func destroyCartHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		cart, err := svc.Resolve(c.Request.Context(), actor)
		if err != nil {
			respondCartError(c, err)
			return
		}
		if cart == nil {
			c.Status(http.StatusNoContent)
			return
		}
		if err := svc.DestroyCart(c.Request.Context(), actor, cart); err != nil {
			respondCartError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, domain.ErrInvalidVatRate):
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid vat rate"})
	case errors.Is(err, domain.ErrConsistency):
		c.JSON(http.StatusInternalServerError, gin.H{"message": "cart state inconsistent"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	}
}
