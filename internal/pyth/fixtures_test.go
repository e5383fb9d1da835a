package pyth

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-price-report/internal/blockchain"
)

// testKey returns a deterministic non-zero key filled with b.
func testKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

func buildAccount(version uint32, kind AccountKind, body []byte) []byte {
	h := Header{Magic: Magic, Version: version, Kind: kind, Size: uint32(HeaderSize + len(body))}
	return append(h.Bytes(), body...)
}

// mappingBody lays out num, unused, next and the product slots.
func mappingBody(next solana.PublicKey, products ...solana.PublicKey) []byte {
	body := make([]byte, 8, 8+32+32*len(products))
	binary.LittleEndian.PutUint32(body[0:4], uint32(len(products)))
	body = append(body, next[:]...)
	for _, p := range products {
		body = append(body, p[:]...)
	}
	return body
}

func productBody(firstPrice solana.PublicKey, attrs ...string) []byte {
	body := append([]byte{}, firstPrice[:]...)
	for _, s := range attrs {
		body = append(body, byte(len(s)))
		body = append(body, s...)
	}
	return body
}

type rawAggregate struct {
	price   int64
	conf    uint64
	status  uint32
	pubSlot uint64
}

func putAggregate(data []byte, off int, agg rawAggregate) {
	binary.LittleEndian.PutUint64(data[off:], uint64(agg.price))
	binary.LittleEndian.PutUint64(data[off+8:], agg.conf)
	binary.LittleEndian.PutUint32(data[off+16:], agg.status)
	binary.LittleEndian.PutUint64(data[off+24:], agg.pubSlot)
}

// priceAccountV1 builds a full v1 price account (header included).
func priceAccountV1(exponent int32, product solana.PublicKey, agg rawAggregate) []byte {
	data := make([]byte, aggregateOffsetV1+aggregateSize)
	copy(data, Header{Magic: Magic, Version: V1, Kind: AccountKindPrice, Size: uint32(len(data))}.Bytes())
	binary.LittleEndian.PutUint32(data[16:], 1)
	binary.LittleEndian.PutUint32(data[20:], uint32(exponent))
	binary.LittleEndian.PutUint64(data[40:], 77) // valid slot
	copy(data[48:80], product[:])
	putAggregate(data, aggregateOffsetV1, agg)
	return data
}

// priceAccountV2 builds a full v2 price account (header included).
func priceAccountV2(exponent int32, product solana.PublicKey, agg rawAggregate) []byte {
	data := make([]byte, aggregateOffsetV2+aggregateSize+64)
	copy(data, Header{Magic: Magic, Version: V2, Kind: AccountKindPrice, Size: uint32(len(data))}.Bytes())
	binary.LittleEndian.PutUint32(data[16:], 1)
	binary.LittleEndian.PutUint32(data[20:], uint32(exponent))
	binary.LittleEndian.PutUint64(data[40:], 88) // valid slot
	copy(data[112:144], product[:])
	putAggregate(data, aggregateOffsetV2, agg)
	return data
}

// fakeLedger serves accounts from memory and counts fetches per address.
type fakeLedger struct {
	accounts map[solana.PublicKey][]byte
	calls    map[solana.PublicKey]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		accounts: make(map[solana.PublicKey][]byte),
		calls:    make(map[solana.PublicKey]int),
	}
}

func (f *fakeLedger) put(key solana.PublicKey, data []byte) {
	f.accounts[key] = data
}

func (f *fakeLedger) FetchAccount(_ context.Context, address solana.PublicKey) ([]byte, error) {
	f.calls[address]++
	data, ok := f.accounts[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountUnavailable, address)
	}
	return data, nil
}

var _ blockchain.AccountFetcher = (*fakeLedger)(nil)
