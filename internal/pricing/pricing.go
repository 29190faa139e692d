// Package pricing turns user-supplied prices into canonical net/gross pairs.
package pricing

import (
	"github.com/shopspring/decimal"

	"carton-service/internal/domain"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Normalize derives the net (VAT-exclusive) and gross (VAT-inclusive) unit
// prices from a single supplied price. When priceIncludesVat is true the
// supplied price is taken as gross and the net is derived by division,
// otherwise the price is taken as net and the gross is derived.
//
// vatRate is a percentage (21.0 means 21%). A rate of -100 would divide by
// zero and is rejected with domain.ErrInvalidVatRate. No other validation is
// performed; negative prices and rates pass through arithmetically.
func Normalize(price, vatRate decimal.Decimal, priceIncludesVat bool) (net, gross decimal.Decimal, err error) {
	factor := one.Add(vatRate.Div(hundred))

	if priceIncludesVat {
		if factor.IsZero() {
			return decimal.Zero, decimal.Zero, domain.ErrInvalidVatRate
		}
		gross = price
		net = gross.Div(factor)
		return net, gross, nil
	}

	net = price
	gross = net.Mul(factor)
	return net, gross, nil
}
