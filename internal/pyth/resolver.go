package pyth

import (
	"context"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-price-report/internal/blockchain"
	"github.com/rovshanmuradov/solana-price-report/internal/utils/metrics"
)

// PriceTable maps a product symbol to its decoded price record.
type PriceTable map[string]PriceRecord

// Resolver looks up price records for product symbols by walking the mapping chain.
type Resolver struct {
	fetcher blockchain.AccountFetcher
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewResolver creates a resolver. A nil collector disables metrics.
func NewResolver(fetcher blockchain.AccountFetcher, collector *metrics.Collector, logger *zap.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		metrics: collector,
		logger:  logger.Named("pyth-resolver"),
	}
}

// Resolve returns a price record for every requested symbol, or a
// *MissingSymbolsError naming those not found once the chain is exhausted.
// Each symbol is resolved at most once and the walk stops as soon as nothing
// is left to find.
func (r *Resolver) Resolve(ctx context.Context, mapping solana.PublicKey, symbols []string) (PriceTable, error) {
	wanted := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		wanted[s] = struct{}{}
	}
	table := make(PriceTable, len(wanted))

	pages := NewMappingIterator(r.fetcher, mapping)
	pages.onPage = func(page MappingPage) {
		r.metrics.RecordMappingPage()
		r.metrics.RecordDecoded(AccountKindMapping.String())
		r.logger.Debug("Mapping page decoded",
			zap.String("mapping", page.Address.String()),
			zap.Int("products", len(page.Products)),
			zap.Bool("has_next", page.Next != nil))
	}

	for len(wanted) > 0 && pages.Next(ctx) {
		for _, productKey := range pages.Page().Products {
			record, symbol, ok, err := r.resolveProduct(ctx, productKey, wanted)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			table[symbol] = record
			delete(wanted, symbol)
			if len(wanted) == 0 {
				break
			}
		}
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}

	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for s := range wanted {
			missing = append(missing, s)
		}
		sort.Strings(missing)
		return nil, &MissingSymbolsError{Symbols: missing}
	}
	return table, nil
}

// resolveProduct decodes one product and, when it carries a wanted symbol and a
// price pointer, its price account. ok is false for products that are skipped.
func (r *Resolver) resolveProduct(ctx context.Context, productKey solana.PublicKey, wanted map[string]struct{}) (PriceRecord, string, bool, error) {
	product, err := r.fetchAccount(ctx, productKey)
	if err != nil {
		return PriceRecord{}, "", false, err
	}
	if product.Header.Kind != AccountKindProduct {
		r.logger.Debug("Skipping non-product account listed in mapping",
			zap.String("account", productKey.String()),
			zap.Stringer("kind", product.Header.Kind))
		return PriceRecord{}, "", false, nil
	}

	record, err := ParseProduct(product)
	if err != nil {
		return PriceRecord{}, "", false, fmt.Errorf("product %s: %w", productKey, err)
	}
	r.metrics.RecordDecoded(AccountKindProduct.String())

	symbol := record.Symbol()
	if _, ok := wanted[symbol]; !ok || record.FirstPrice == nil {
		return PriceRecord{}, "", false, nil
	}

	priceKey := *record.FirstPrice
	priceAcc, err := r.fetchAccount(ctx, priceKey)
	if err != nil {
		return PriceRecord{}, "", false, err
	}
	if priceAcc.Header.Kind != AccountKindPrice {
		r.logger.Debug("Product price pointer is not a price account",
			zap.String("symbol", symbol),
			zap.String("account", priceKey.String()),
			zap.Stringer("kind", priceAcc.Header.Kind))
		return PriceRecord{}, "", false, nil
	}

	price, err := ParsePrice(priceAcc)
	if err != nil {
		return PriceRecord{}, "", false, fmt.Errorf("price %s (%s): %w", priceKey, symbol, err)
	}
	r.metrics.RecordDecoded(AccountKindPrice.String())

	r.logger.Debug("Symbol resolved",
		zap.String("symbol", symbol),
		zap.String("price_account", priceKey.String()),
		zap.String("price", price.Price.String()),
		zap.Stringer("status", price.Status))
	return price, symbol, true, nil
}

func (r *Resolver) fetchAccount(ctx context.Context, address solana.PublicKey) (Account, error) {
	raw, err := r.fetcher.FetchAccount(ctx, address)
	if err != nil {
		return Account{}, fmt.Errorf("account %s: %w", address, err)
	}
	acc, err := DecodeAccount(raw)
	if err != nil {
		return Account{}, fmt.Errorf("account %s: %w", address, err)
	}
	return acc, nil
}
