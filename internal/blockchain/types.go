// internal/blockchain/types.go
package blockchain

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrAccountUnavailable сигнализирует, что аккаунт не существует или не отдаёт баланс.
var ErrAccountUnavailable = errors.New("account unavailable")

// TokenBalance содержит сырой баланс токен-аккаунта и заявленное количество знаков.
type TokenBalance struct {
	Amount   uint64
	Decimals uint8
}

// AccountFetcher читает сырые данные аккаунта.
type AccountFetcher interface {
	// FetchAccount возвращает данные аккаунта без base64-обёртки RPC.
	FetchAccount(ctx context.Context, address solana.PublicKey) ([]byte, error)
}

// BalanceFetcher читает баланс токен-аккаунта (vault).
type BalanceFetcher interface {
	FetchTokenBalance(ctx context.Context, vault solana.PublicKey) (TokenBalance, error)
}

// LedgerClient определяет всё, что ядру нужно от блокчейна: только чтение.
type LedgerClient interface {
	AccountFetcher
	BalanceFetcher
}
