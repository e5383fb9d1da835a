// internal/pool/snapshot.go
package pool

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-price-report/internal/blockchain"
)

// Snapshot хранит UI-балансы двух vault'ов пула на момент чтения.
type Snapshot struct {
	TokenBalance  decimal.Decimal
	TokenDecimals uint8
	QuoteBalance  decimal.Decimal
	QuoteDecimals uint8
}

// TokenAmountToDecimal переводит сырое количество токенов в UI-единицы: amount / 10^decimals.
// Сдвиг экспоненты точен, деления с округлением нет.
func TokenAmountToDecimal(amount uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
}

// Reader читает балансы vault'ов пула.
type Reader struct {
	client blockchain.BalanceFetcher
	logger *zap.Logger
}

// NewReader создаёт Reader.
func NewReader(client blockchain.BalanceFetcher, logger *zap.Logger) *Reader {
	return &Reader{
		client: client,
		logger: logger.Named("pool-reader"),
	}
}

// ReadSnapshot последовательно читает vault кастомного токена и vault WSOL.
func (r *Reader) ReadSnapshot(ctx context.Context, info SwapInfo) (Snapshot, error) {
	token, err := r.readVault(ctx, "token", info.TokenVault)
	if err != nil {
		return Snapshot{}, err
	}
	quote, err := r.readVault(ctx, "quote", info.QuoteVault)
	if err != nil {
		return Snapshot{}, err
	}

	if token.Decimals != info.CustomTokenDecimals {
		r.logger.Warn("Vault decimals differ from swap info, using vault value",
			zap.String("vault", info.TokenVault.String()),
			zap.Uint8("vault_decimals", token.Decimals),
			zap.Uint8("declared_decimals", info.CustomTokenDecimals))
	}

	snapshot := Snapshot{
		TokenBalance:  TokenAmountToDecimal(token.Amount, token.Decimals),
		TokenDecimals: token.Decimals,
		QuoteBalance:  TokenAmountToDecimal(quote.Amount, quote.Decimals),
		QuoteDecimals: quote.Decimals,
	}

	r.logger.Debug("Pool snapshot read",
		zap.String("token_balance", snapshot.TokenBalance.String()),
		zap.String("quote_balance", snapshot.QuoteBalance.String()))
	return snapshot, nil
}

func (r *Reader) readVault(ctx context.Context, side string, vault solana.PublicKey) (blockchain.TokenBalance, error) {
	balance, err := r.client.FetchTokenBalance(ctx, vault)
	if err != nil {
		return blockchain.TokenBalance{}, fmt.Errorf("%s vault %s: %w", side, vault, err)
	}
	return balance, nil
}
