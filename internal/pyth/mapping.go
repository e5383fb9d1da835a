package pyth

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-price-report/internal/blockchain"
)

// mappingFixedSize covers num, unused and the next-page key.
const mappingFixedSize = 4 + 4 + solana.PublicKeyLength

type mappingLayout struct {
	Num    uint32
	Unused uint32
	Next   solana.PublicKey
}

// MappingPage is one page of the singly linked list of products.
type MappingPage struct {
	Address  solana.PublicKey
	Products []solana.PublicKey
	Next     *solana.PublicKey // nil on the last page
}

// ParseMapping decodes the product table and next-page pointer of a mapping account.
func ParseMapping(acc Account) (MappingPage, error) {
	if err := acc.expectKind(AccountKindMapping); err != nil {
		return MappingPage{}, err
	}

	body := acc.body()
	if len(body) < mappingFixedSize {
		return MappingPage{}, fmt.Errorf("%w: mapping body is %d bytes", ErrTruncatedRecord, len(body))
	}

	dec := bin.NewBinDecoder(body)
	var layout mappingLayout
	if err := dec.Decode(&layout); err != nil {
		return MappingPage{}, fmt.Errorf("%w: mapping: %v", ErrTruncatedRecord, err)
	}

	need := uint64(layout.Num) * solana.PublicKeyLength
	if uint64(dec.Remaining()) < need {
		return MappingPage{}, fmt.Errorf("%w: mapping lists %d products, only %d bytes remain",
			ErrTruncatedRecord, layout.Num, dec.Remaining())
	}

	page := MappingPage{Products: make([]solana.PublicKey, 0, layout.Num)}
	for i := uint32(0); i < layout.Num; i++ {
		raw, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return MappingPage{}, fmt.Errorf("%w: mapping slot %d: %v", ErrTruncatedRecord, i, err)
		}
		key := solana.PublicKeyFromBytes(raw)
		if key.IsZero() {
			continue
		}
		page.Products = append(page.Products, key)
	}
	if !layout.Next.IsZero() {
		next := layout.Next
		page.Next = &next
	}
	return page, nil
}

// MappingIterator walks the mapping chain lazily, fetching a page only when
// Next is called. It cannot be restarted.
//
//	it := NewMappingIterator(fetcher, first)
//	for it.Next(ctx) {
//		page := it.Page()
//	}
//	if err := it.Err(); err != nil { ... }
type MappingIterator struct {
	fetcher blockchain.AccountFetcher
	next    *solana.PublicKey
	page    MappingPage
	err     error
	onPage  func(MappingPage)
	visited map[solana.PublicKey]struct{}
}

// NewMappingIterator starts the walk at the given mapping account.
func NewMappingIterator(fetcher blockchain.AccountFetcher, first solana.PublicKey) *MappingIterator {
	start := first
	return &MappingIterator{
		fetcher: fetcher,
		next:    &start,
		visited: make(map[solana.PublicKey]struct{}),
	}
}

// Next fetches and decodes the following page. It returns false when the chain
// is exhausted or an error occurred.
func (it *MappingIterator) Next(ctx context.Context) bool {
	if it.err != nil || it.next == nil {
		return false
	}
	address := *it.next
	it.next = nil
	if _, seen := it.visited[address]; seen {
		it.err = fmt.Errorf("%w: %s", ErrMappingCycle, address)
		return false
	}
	it.visited[address] = struct{}{}

	raw, err := it.fetcher.FetchAccount(ctx, address)
	if err != nil {
		it.err = fmt.Errorf("mapping %s: %w", address, err)
		return false
	}
	acc, err := DecodeAccount(raw)
	if err != nil {
		it.err = fmt.Errorf("mapping %s: %w", address, err)
		return false
	}
	page, err := ParseMapping(acc)
	if err != nil {
		it.err = fmt.Errorf("mapping %s: %w", address, err)
		return false
	}

	page.Address = address
	it.page = page
	it.next = page.Next
	if it.onPage != nil {
		it.onPage(page)
	}
	return true
}

// Page returns the page decoded by the last successful Next.
func (it *MappingIterator) Page() MappingPage {
	return it.page
}

// Err returns the error that stopped the iteration, if any.
func (it *MappingIterator) Err() error {
	return it.err
}
