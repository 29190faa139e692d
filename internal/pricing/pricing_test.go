package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carton-service/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNormalizeNetInput(t *testing.T) {
	net, gross, err := Normalize(dec("100.00"), dec("21.0"), false)
	require.NoError(t, err)
	assert.True(t, net.Equal(dec("100.00")), "net = %s", net)
	assert.True(t, gross.Equal(dec("121.00")), "gross = %s", gross)
}

func TestNormalizeGrossInput(t *testing.T) {
	net, gross, err := Normalize(dec("121.00"), dec("21.0"), true)
	require.NoError(t, err)
	assert.True(t, net.Equal(dec("100.00")), "net = %s", net)
	assert.True(t, gross.Equal(dec("121.00")), "gross = %s", gross)
}

func TestNormalizeZeroVatRate(t *testing.T) {
	net, gross, err := Normalize(dec("49.99"), decimal.Zero, false)
	require.NoError(t, err)
	assert.True(t, net.Equal(gross))

	net, gross, err = Normalize(dec("49.99"), decimal.Zero, true)
	require.NoError(t, err)
	assert.True(t, net.Equal(gross))
}

func TestNormalizeMinusHundredVatRate(t *testing.T) {
	_, _, err := Normalize(dec("10.00"), dec("-100"), true)
	assert.True(t, errors.Is(err, domain.ErrInvalidVatRate))
}

func TestNormalizeNegativeValuesPassThrough(t *testing.T) {
	net, gross, err := Normalize(dec("-100.00"), dec("21.0"), false)
	require.NoError(t, err)
	assert.True(t, net.Equal(dec("-100.00")))
	assert.True(t, gross.Equal(dec("-121.00")))
}

func TestNormalizeRoundTrip(t *testing.T) {
	tolerance := dec("0.000001")
	prices := []string{"0", "0.01", "1", "19.99", "100.00", "12345.678901"}
	rates := []string{"0", "5", "9.5", "21", "25", "-50"}

	for _, p := range prices {
		for _, r := range rates {
			price, rate := dec(p), dec(r)
			_, gross, err := Normalize(price, rate, false)
			require.NoError(t, err)
			net, _, err := Normalize(gross, rate, true)
			require.NoError(t, err)
			diff := net.Sub(price).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance),
				"price=%s rate=%s round-tripped to %s", p, r, net)
		}
	}
}
