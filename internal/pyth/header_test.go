package pyth

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		version uint32
		kind    AccountKind
		size    uint32
	}{
		{"mapping v2", V2, AccountKindMapping, 16},
		{"product v1", V1, AccountKindProduct, 48},
		{"price v2", V2, AccountKindPrice, 240},
		{"future version", 7, AccountKindPrice, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Header{Magic: Magic, Version: tt.version, Kind: tt.kind, Size: tt.size}
			buf := make([]byte, tt.size)
			copy(buf, h.Bytes())

			got, err := ParseHeader(buf)
			require.NoError(t, err)
			assert.Equal(t, tt.version, got.Version)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.size, got.Size)
		})
	}
}

func TestHeaderBytesLayout(t *testing.T) {
	b := Header{Magic: Magic, Version: V2, Kind: AccountKindPrice, Size: 3312}.Bytes()
	require.Len(t, b, HeaderSize)
	assert.Equal(t, []byte{0xd4, 0xc3, 0xb2, 0xa1}, b[:4])
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(b[4:8]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(b[8:12]))
	assert.Equal(t, uint32(3312), binary.LittleEndian.Uint32(b[12:16]))
}

func TestHeaderMagicBitFlip(t *testing.T) {
	valid := Header{Magic: Magic, Version: V2, Kind: AccountKindMapping, Size: HeaderSize}.Bytes()

	for bit := 0; bit < 32; bit++ {
		buf := append([]byte{}, valid...)
		buf[bit/8] ^= 1 << (bit % 8)

		_, err := ParseHeader(buf)
		assert.ErrorIs(t, err, ErrMalformedHeader, "bit %d", bit)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	t.Run("short buffer", func(t *testing.T) {
		_, err := ParseHeader(make([]byte, HeaderSize-1))
		assert.ErrorIs(t, err, ErrMalformedHeader)
	})

	t.Run("size exceeds buffer", func(t *testing.T) {
		buf := Header{Magic: Magic, Version: V2, Kind: AccountKindProduct, Size: 100}.Bytes()
		_, err := ParseHeader(buf)
		assert.ErrorIs(t, err, ErrMalformedHeader)
	})
}

func TestDecodeAccountTrimsToDeclaredSize(t *testing.T) {
	raw := buildAccount(V2, AccountKindProduct, []byte{1, 2, 3})
	raw = append(raw, 0xff, 0xff, 0xff)

	acc, err := DecodeAccount(raw)
	require.NoError(t, err)
	assert.Len(t, acc.Data, HeaderSize+3)
	assert.Equal(t, []byte{1, 2, 3}, acc.body())
}

func TestAccountKindString(t *testing.T) {
	assert.Equal(t, "mapping", AccountKindMapping.String())
	assert.Equal(t, "price", AccountKindPrice.String())
	assert.Equal(t, "unknown(9)", AccountKind(9).String())
}
