package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/solana-price-report/internal/pool"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDerive(t *testing.T) {
	snapshot := pool.Snapshot{
		TokenBalance:  dec("1000.0"),
		TokenDecimals: 6,
		QuoteBalance:  dec("50.0"),
		QuoteDecimals: 9,
	}

	v, err := Derive(snapshot, Inputs{
		QuoteUSD: dec("150.00"),
		Cross: []Asset{
			{Name: "BTC", USD: dec("60000")},
			{Name: "ETH", USD: dec("3000")},
		},
	})
	require.NoError(t, err)

	assert.True(t, v.TokenInQuote.Equal(dec("0.05")), v.TokenInQuote.String())
	assert.True(t, v.TokenUSD.Equal(dec("7.50")), v.TokenUSD.String())
	require.Len(t, v.CrossRates, 2)
	assert.Equal(t, "BTC", v.CrossRates[0].Asset)
	assert.True(t, v.CrossRates[0].Rate.Equal(dec("0.000125")), v.CrossRates[0].Rate.String())
	assert.Equal(t, "ETH", v.CrossRates[1].Asset)
	assert.True(t, v.CrossRates[1].Rate.Equal(dec("0.0025")), v.CrossRates[1].Rate.String())
}

func TestDeriveZeroVaultBalance(t *testing.T) {
	_, err := Derive(pool.Snapshot{TokenBalance: decimal.Zero, QuoteBalance: dec("50")}, Inputs{QuoteUSD: dec("150")})
	assert.ErrorIs(t, err, ErrZeroVaultBalance)
}

func TestDeriveZeroAssetPrice(t *testing.T) {
	_, err := Derive(pool.Snapshot{TokenBalance: dec("1000"), QuoteBalance: dec("50")}, Inputs{
		QuoteUSD: dec("150"),
		Cross: []Asset{
			{Name: "BTC", USD: dec("60000")},
			{Name: "ETH", USD: decimal.Zero},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrZeroAssetPrice)
	assert.Contains(t, err.Error(), "ETH")
}

func TestDivKeepsSignificantDigits(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"thirds", "1", "3"},
		{"tiny quotient", "1", "300000000000000"},
		{"huge quotient", "90000000000000000000", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Div(dec(tt.a), dec(tt.b))
			assert.GreaterOrEqual(t, q.NumDigits(), WorkingPrecision, q.String())
		})
	}
}

func TestDivZeroNumerator(t *testing.T) {
	assert.True(t, Div(decimal.Zero, dec("7")).IsZero())
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		value    string
		places   int32
		expected string
	}{
		{"2.5", 0, "3"},
		{"-2.5", 0, "-3"},
		{"0.0000125", 6, "0.000013"},
		{"7.5", 6, "7.500000"},
		{"0.05", 2, "0.05"},
		{"123.456", -1, "123"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDecimal(dec(tt.value), tt.places))
		})
	}
}
