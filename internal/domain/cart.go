package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is owned by exactly one identity: an authenticated user (UserID set)
// or an anonymous session, in which case UserID is nil and the session holds
// the cart id.
type Cart struct {
	ID                string           `json:"id"`
	UserID            *string          `json:"userId,omitempty"`
	IsActive          bool             `json:"isActive"`
	CurrencyCode      *string          `json:"currencyCode,omitempty"`
	ExchangeRate      *decimal.Decimal `json:"exchangeRate,omitempty"`
	Count             int              `json:"count"`
	SubTotal          decimal.Decimal  `json:"subTotal"`
	SubTotalWithVat   decimal.Decimal  `json:"subTotalWithVat"`
	GrandTotal        decimal.Decimal  `json:"grandTotal"`
	GrandTotalWithVat decimal.Decimal  `json:"grandTotalWithVat"`
	DiscountTotal     decimal.Decimal  `json:"discountTotal"`
	VatTotal          decimal.Decimal  `json:"vatTotal"`
	Additional        map[string]any   `json:"additional,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	Lines             []CartLine       `json:"lines,omitempty"`
}

// CartLine belongs to exactly one cart and is removed with it.
// Price is the net unit price, PriceWithVat the gross unit price.
type CartLine struct {
	ID           string          `json:"id"`
	CartID       string          `json:"cartId"`
	Title        string          `json:"title"`
	Quantity     int             `json:"quantity"`
	VatRate      decimal.Decimal `json:"vatRate"`
	Price        decimal.Decimal `json:"price"`
	PriceWithVat decimal.Decimal `json:"priceWithVat"`
	Total        decimal.Decimal `json:"total"`
	TotalWithVat decimal.Decimal `json:"totalWithVat"`
	Additional   map[string]any  `json:"additional,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
