// Package pyth decodes Pyth oracle accounts (mapping, product, price) from their
// on-chain binary layout and resolves ticker symbols to price records.
package pyth

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// Magic is the 32-bit number prefixed on each account.
const Magic = uint32(0xa1b2c3d4)

// HeaderSize is the size of the header common to every account kind.
const HeaderSize = 16

// AccountKind identifies what an account stores after its header.
type AccountKind uint32

const (
	AccountKindUnknown AccountKind = iota
	AccountKindMapping
	AccountKindProduct
	AccountKindPrice
)

func (k AccountKind) String() string {
	switch k {
	case AccountKindMapping:
		return "mapping"
	case AccountKindProduct:
		return "product"
	case AccountKindPrice:
		return "price"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(k))
	}
}

// Header is the 16-byte prefix of every oracle account.
type Header struct {
	Magic   uint32
	Version uint32
	Kind    AccountKind
	Size    uint32 // size of the account including the header
}

// ParseHeader validates and decodes the account header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, need %d", ErrMalformedHeader, len(data), HeaderSize)
	}

	var h Header
	if err := bin.NewBinDecoder(data[:HeaderSize]).Decode(&h); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("%w: magic 0x%08x", ErrMalformedHeader, h.Magic)
	}
	if int64(h.Size) > int64(len(data)) {
		return Header{}, fmt.Errorf("%w: declared size %d exceeds buffer of %d bytes", ErrMalformedHeader, h.Size, len(data))
	}
	return h, nil
}

// Bytes encodes the header in its on-chain form.
func (h Header) Bytes() []byte {
	var buf bytes.Buffer
	// Encoding four fixed-width integers into a bytes.Buffer cannot fail.
	_ = bin.NewBinEncoder(&buf).Encode(h)
	return buf.Bytes()
}

// Account is a header-validated account whose data is cut to the declared size.
type Account struct {
	Header Header
	Data   []byte // full account bytes including the header
}

// DecodeAccount validates the header and trims trailing bytes past Header.Size.
func DecodeAccount(raw []byte) (Account, error) {
	h, err := ParseHeader(raw)
	if err != nil {
		return Account{}, err
	}
	size := int(h.Size)
	if size < HeaderSize {
		size = HeaderSize
	}
	return Account{Header: h, Data: raw[:size]}, nil
}

func (a Account) expectKind(kind AccountKind) error {
	if a.Header.Kind != kind {
		return fmt.Errorf("%w: expected %s, got %s", ErrWrongAccountKind, kind, a.Header.Kind)
	}
	return nil
}

// body returns the bytes following the header.
func (a Account) body() []byte {
	return a.Data[HeaderSize:]
}
