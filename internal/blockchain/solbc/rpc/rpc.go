// internal/blockchain/solbc/rpc/rpc.go
package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Основные константы
const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 200 * time.Millisecond
	defaultReqTimeout    = 10 * time.Second
)

// Options задаёт политику повторов и таймаут одного запроса.
type Options struct {
	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

// DefaultOptions возвращает настройки по умолчанию.
func DefaultOptions() Options {
	return Options{
		MaxRetries:     defaultRetryAttempts,
		RetryDelay:     defaultRetryDelay,
		RequestTimeout: defaultReqTimeout,
	}
}

// RPCClient распределяет запросы по нескольким узлам и повторяет их при сбоях.
type RPCClient struct {
	nodes   []*solanarpc.Client
	urls    []string
	current int
	mu      sync.Mutex
	opts    Options
	logger  *zap.Logger
}

// NewClient создает новый RPC клиент
func NewClient(urls []string, logger *zap.Logger, opts ...Options) (*RPCClient, error) {
	if len(urls) == 0 {
		return nil, ErrNoRPCNodes
	}

	options := DefaultOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.MaxRetries <= 0 {
		options.MaxRetries = 1
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = defaultReqTimeout
	}

	nodes := make([]*solanarpc.Client, len(urls))
	for i, url := range urls {
		nodes[i] = solanarpc.New(url)
	}

	return &RPCClient{
		nodes:  nodes,
		urls:   urls,
		opts:   options,
		logger: logger.Named("rpc-client"),
	}, nil
}

// IsNotFound сообщает, что узел ответил "аккаунт не найден". Такие ошибки не повторяются.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, solanarpc.ErrNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "could not find account")
}

// nextNode возвращает текущий узел и сдвигает указатель на следующий.
func (c *RPCClient) nextNode() (*solanarpc.Client, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	node := c.nodes[c.current]
	url := c.urls[c.current]
	c.current = (c.current + 1) % len(c.nodes)
	return node, url
}

// ExecuteWithRetry выполняет RPC-запрос, переключая узлы и повторяя с экспоненциальной задержкой.
func (c *RPCClient) ExecuteWithRetry(ctx context.Context, method string, operation func(context.Context, *solanarpc.Client) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.RetryDelay
	policy.MaxInterval = c.opts.RetryDelay * 10

	attempt := 0
	op := func() (struct{}, error) {
		attempt++
		node, url := c.nextNode()

		reqCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
		defer cancel()

		err := operation(reqCtx, node)
		if err == nil {
			return struct{}{}, nil
		}
		err = NewError(err, url, method)
		if IsNotFound(err) {
			return struct{}{}, backoff.Permanent(err)
		}

		c.logger.Debug("RPC request failed, trying next node",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.opts.MaxRetries)))
	if err != nil {
		if IsNotFound(err) {
			return err
		}
		return fmt.Errorf("%s failed after %d attempt(s): %w", method, attempt, err)
	}
	return nil
}

// GetAccountInfo получает информацию об аккаунте в кодировке base64.
func (c *RPCClient) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey, commitment solanarpc.CommitmentType) (*solanarpc.GetAccountInfoResult, error) {
	var result *solanarpc.GetAccountInfoResult
	err := c.ExecuteWithRetry(ctx, "getAccountInfo", func(ctx context.Context, client *solanarpc.Client) error {
		var err error
		result, err = client.GetAccountInfoWithOpts(ctx, pubkey, &solanarpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: commitment,
		})
		return err
	})
	return result, err
}

// GetTokenAccountBalance получает баланс токен-аккаунта.
func (c *RPCClient) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment solanarpc.CommitmentType) (*solanarpc.GetTokenAccountBalanceResult, error) {
	var result *solanarpc.GetTokenAccountBalanceResult
	err := c.ExecuteWithRetry(ctx, "getTokenAccountBalance", func(ctx context.Context, client *solanarpc.Client) error {
		var err error
		result, err = client.GetTokenAccountBalance(ctx, account, commitment)
		return err
	})
	return result, err
}

// Close закрывает клиент
func (c *RPCClient) Close() {
	for _, node := range c.nodes {
		_ = node.Close()
	}
}
