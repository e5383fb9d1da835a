package pyth

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// SymbolAttr is the attribute joining a product to a ticker such as "Crypto.SOL/USD".
const SymbolAttr = "symbol"

// ProductRecord describes one priced instrument.
type ProductRecord struct {
	FirstPrice *solana.PublicKey // nil when the product has no price account
	Attrs      map[string]string
}

// Symbol returns the product's ticker, or "" when absent.
func (p ProductRecord) Symbol() string {
	return p.Attrs[SymbolAttr]
}

// ParseProduct decodes the first-price pointer and the key/value attribute table.
func ParseProduct(acc Account) (ProductRecord, error) {
	if err := acc.expectKind(AccountKindProduct); err != nil {
		return ProductRecord{}, err
	}

	dec := bin.NewBinDecoder(acc.body())
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return ProductRecord{}, fmt.Errorf("%w: product price pointer: %v", ErrTruncatedRecord, err)
	}

	record := ProductRecord{Attrs: make(map[string]string)}
	if first := solana.PublicKeyFromBytes(raw); !first.IsZero() {
		record.FirstPrice = &first
	}

	for dec.HasRemaining() {
		key, err := readShortString(dec)
		if err != nil {
			return ProductRecord{}, fmt.Errorf("%w: product attribute key: %v", ErrTruncatedRecord, err)
		}
		if key == "" {
			break
		}
		value, err := readShortString(dec)
		if err != nil {
			return ProductRecord{}, fmt.Errorf("%w: product attribute %q: %v", ErrTruncatedRecord, key, err)
		}
		record.Attrs[key] = value
	}
	return record, nil
}

// readShortString reads a string prefixed with a single length byte.
func readShortString(dec *bin.Decoder) (string, error) {
	n, err := dec.ReadByte()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	if dec.Remaining() < int(n) {
		return "", fmt.Errorf("length %d, only %d bytes remain", n, dec.Remaining())
	}
	b, err := dec.ReadNBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
