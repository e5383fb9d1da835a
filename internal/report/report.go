// Package report assembles the token price report from oracle prices and the
// pool snapshot, and renders it.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-price-report/internal/pool"
	"github.com/rovshanmuradov/solana-price-report/internal/pricing"
	"github.com/rovshanmuradov/solana-price-report/internal/pyth"
)

// PriceResolver is satisfied by *pyth.Resolver.
type PriceResolver interface {
	Resolve(ctx context.Context, mapping solana.PublicKey, symbols []string) (pyth.PriceTable, error)
}

// SnapshotReader is satisfied by *pool.Reader.
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context, info pool.SwapInfo) (pool.Snapshot, error)
}

// PriceLine is one oracle price as shown in the report.
type PriceLine struct {
	Alias       string
	Symbol      string
	Price       decimal.Decimal
	Confidence  decimal.Decimal
	Status      pyth.PriceStatus
	PublishSlot uint64
}

// Report is a complete, internally consistent price report.
type Report struct {
	GeneratedAt time.Time
	QuoteAlias  string
	Prices      []PriceLine
	Snapshot    pool.Snapshot
	Valuation   pricing.Valuation
}

// Options describes what a report covers.
type Options struct {
	Mapping     solana.PublicKey
	Symbols     map[string]string // alias -> Pyth product symbol
	Aliases     []string          // report order of Symbols keys
	QuoteAlias  string
	CrossAssets []string
	SwapInfo    pool.SwapInfo
}

// Service builds reports.
type Service struct {
	resolver PriceResolver
	reader   SnapshotReader
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(resolver PriceResolver, reader SnapshotReader, opts Options, logger *zap.Logger) *Service {
	return &Service{
		resolver: resolver,
		reader:   reader,
		opts:     opts,
		logger:   logger.Named("report"),
		now:      time.Now,
	}
}

// Build resolves the configured symbols, reads the pool and derives the
// valuation. Any failure aborts the whole report.
func (s *Service) Build(ctx context.Context) (*Report, error) {
	symbols, err := s.productSymbols()
	if err != nil {
		return nil, err
	}

	table, err := s.resolver.Resolve(ctx, s.opts.Mapping, symbols)
	if err != nil {
		return nil, fmt.Errorf("resolve oracle prices: %w", err)
	}

	snapshot, err := s.reader.ReadSnapshot(ctx, s.opts.SwapInfo)
	if err != nil {
		return nil, fmt.Errorf("read pool snapshot: %w", err)
	}

	inputs := pricing.Inputs{QuoteUSD: table[s.opts.Symbols[s.opts.QuoteAlias]].Price}
	for _, alias := range s.opts.CrossAssets {
		inputs.Cross = append(inputs.Cross, pricing.Asset{
			Name: alias,
			USD:  table[s.opts.Symbols[alias]].Price,
		})
	}

	valuation, err := pricing.Derive(snapshot, inputs)
	if err != nil {
		return nil, fmt.Errorf("derive token price: %w", err)
	}

	lines := make([]PriceLine, 0, len(s.opts.Aliases))
	for _, alias := range s.opts.Aliases {
		symbol := s.opts.Symbols[alias]
		record := table[symbol]
		lines = append(lines, PriceLine{
			Alias:       alias,
			Symbol:      symbol,
			Price:       record.Price,
			Confidence:  record.Confidence,
			Status:      record.Status,
			PublishSlot: record.PublishSlot,
		})
	}

	s.logger.Debug("Report built",
		zap.Int("prices", len(lines)),
		zap.String("token_usd", valuation.TokenUSD.String()))

	return &Report{
		GeneratedAt: s.now().UTC(),
		QuoteAlias:  s.opts.QuoteAlias,
		Prices:      lines,
		Snapshot:    snapshot,
		Valuation:   valuation,
	}, nil
}

// productSymbols lists the distinct Pyth symbols behind every alias the report needs.
func (s *Service) productSymbols() ([]string, error) {
	needed := append([]string{s.opts.QuoteAlias}, s.opts.CrossAssets...)
	needed = append(needed, s.opts.Aliases...)

	seen := make(map[string]struct{}, len(needed))
	symbols := make([]string, 0, len(needed))
	for _, alias := range needed {
		symbol, ok := s.opts.Symbols[alias]
		if !ok {
			return nil, fmt.Errorf("alias %q has no product symbol", alias)
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
	}
	return symbols, nil
}
