// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-price-report/internal/blockchain"
	"github.com/rovshanmuradov/solana-price-report/internal/blockchain/solbc/rpc"
	"github.com/rovshanmuradov/solana-price-report/internal/utils/metrics"
)

// Client – тонкий адаптер чтения аккаунтов Solana через solana-go.
type Client struct {
	rpc        *rpc.RPCClient
	commitment solanarpc.CommitmentType
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// Options настраивает клиент.
type Options struct {
	Commitment solanarpc.CommitmentType
	RPC        rpc.Options
	Metrics    *metrics.Collector
}

// NewClient создаёт новый клиент, принимая список RPC URL и логгер через dependency injection.
func NewClient(rpcURLs []string, logger *zap.Logger, opts Options) (*Client, error) {
	rpcClient, err := rpc.NewClient(rpcURLs, logger, opts.RPC)
	if err != nil {
		return nil, err
	}

	commitment := opts.Commitment
	if commitment == "" {
		commitment = solanarpc.CommitmentFinalized
	}

	return &Client{
		rpc:        rpcClient,
		commitment: commitment,
		metrics:    opts.Metrics,
		logger:     logger.Named("solbc-client"),
	}, nil
}

// FetchAccount получает данные аккаунта и снимает base64-обёртку ответа.
func (c *Client) FetchAccount(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	start := time.Now()
	result, err := c.rpc.GetAccountInfo(ctx, address, c.commitment)
	c.metrics.RecordRPC("getAccountInfo", time.Since(start), err)

	if err != nil {
		if rpc.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountUnavailable, address)
		}
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", address.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get account info for %s: %w", address, err)
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountUnavailable, address)
	}
	if result.Value.Data == nil {
		return []byte{}, nil
	}

	return result.Value.Data.GetBinary(), nil
}

// FetchTokenBalance получает сырой баланс и количество знаков токен-аккаунта.
func (c *Client) FetchTokenBalance(ctx context.Context, vault solana.PublicKey) (blockchain.TokenBalance, error) {
	start := time.Now()
	result, err := c.rpc.GetTokenAccountBalance(ctx, vault, c.commitment)
	c.metrics.RecordRPC("getTokenAccountBalance", time.Since(start), err)

	if err != nil {
		if rpc.IsNotFound(err) {
			return blockchain.TokenBalance{}, fmt.Errorf("%w: vault %s", blockchain.ErrAccountUnavailable, vault)
		}
		c.logger.Debug("GetTokenAccountBalance error",
			zap.String("vault", vault.String()),
			zap.Error(err))
		return blockchain.TokenBalance{}, fmt.Errorf("failed to get token balance for %s: %w", vault, err)
	}
	if result == nil || result.Value == nil || result.Value.Amount == "" {
		return blockchain.TokenBalance{}, fmt.Errorf("%w: vault %s reports no balance", blockchain.ErrAccountUnavailable, vault)
	}

	amount, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return blockchain.TokenBalance{}, fmt.Errorf("invalid token amount %q for vault %s: %w", result.Value.Amount, vault, err)
	}

	return blockchain.TokenBalance{
		Amount:   amount,
		Decimals: result.Value.Decimals,
	}, nil
}

// Close освобождает соединения с узлами.
func (c *Client) Close() {
	c.rpc.Close()
}

// Гарантируем, что Client реализует интерфейс blockchain.LedgerClient.
var _ blockchain.LedgerClient = (*Client)(nil)
