// Package pricing derives the custom token valuation from pool balances and
// oracle USD prices.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/solana-price-report/internal/pool"
)

// WorkingPrecision is the minimum number of significant digits kept by every division.
const WorkingPrecision = 28

var (
	ErrZeroVaultBalance = errors.New("token vault balance is zero")
	ErrZeroAssetPrice   = errors.New("asset price is zero")
)

// Asset is a cross-rate target with its USD price.
type Asset struct {
	Name string
	USD  decimal.Decimal
}

// Inputs carries the oracle prices needed for a valuation.
type Inputs struct {
	QuoteUSD decimal.Decimal // USD price of the pool's quote asset (WSOL)
	Cross    []Asset
}

// CrossRate is the token price expressed in another asset.
type CrossRate struct {
	Asset string
	Rate  decimal.Decimal
}

// Valuation is the derived token price. Values are unrounded.
type Valuation struct {
	TokenInQuote decimal.Decimal
	TokenUSD     decimal.Decimal
	CrossRates   []CrossRate
}

// Derive computes token/quote from the pool, converts it to USD and then into
// every cross asset, in the order given.
func Derive(snapshot pool.Snapshot, in Inputs) (Valuation, error) {
	if snapshot.TokenBalance.IsZero() {
		return Valuation{}, ErrZeroVaultBalance
	}

	tokenInQuote := Div(snapshot.QuoteBalance, snapshot.TokenBalance)
	tokenUSD := tokenInQuote.Mul(in.QuoteUSD)

	rates := make([]CrossRate, 0, len(in.Cross))
	for _, asset := range in.Cross {
		if asset.USD.IsZero() {
			return Valuation{}, fmt.Errorf("%w: %s", ErrZeroAssetPrice, asset.Name)
		}
		rates = append(rates, CrossRate{Asset: asset.Name, Rate: Div(tokenUSD, asset.USD)})
	}

	return Valuation{
		TokenInQuote: tokenInQuote,
		TokenUSD:     tokenUSD,
		CrossRates:   rates,
	}, nil
}

// Div divides keeping at least WorkingPrecision significant digits in the
// quotient, independent of the operands' magnitude. d2 must be non-zero.
func Div(d1, d2 decimal.Decimal) decimal.Decimal {
	if d1.IsZero() {
		return decimal.Zero
	}
	// leading digit position of the quotient is within one of m1 - m2
	m1 := int64(d1.NumDigits()) + int64(d1.Exponent())
	m2 := int64(d2.NumDigits()) + int64(d2.Exponent())
	places := int64(WorkingPrecision) - (m1 - m2) + 1
	if places < WorkingPrecision {
		places = WorkingPrecision
	}
	return d1.DivRound(d2, int32(places))
}
