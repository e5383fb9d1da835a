package pyth

import (
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Supported price account layouts.
const (
	V1 = uint32(1)
	V2 = uint32(2)
)

// Offsets of the aggregate price info from the start of the account.
const (
	aggregateOffsetV1 = 144
	aggregateOffsetV2 = 208
	aggregateSize     = 32
)

// PriceStatus is the aggregate price state reported by the oracle.
type PriceStatus uint32

const (
	PriceStatusUnknown PriceStatus = iota
	PriceStatusTrading
	PriceStatusHalted
	PriceStatusAuction
	PriceStatusIgnored
)

func (s PriceStatus) String() string {
	switch s {
	case PriceStatusUnknown:
		return "UNKNOWN"
	case PriceStatusTrading:
		return "TRADING"
	case PriceStatusHalted:
		return "HALTED"
	case PriceStatusAuction:
		return "AUCTION"
	case PriceStatusIgnored:
		return "IGNORED"
	default:
		return fmt.Sprintf("STATUS(%d)", uint32(s))
	}
}

func parseStatus(raw uint32) (PriceStatus, error) {
	if raw > uint32(PriceStatusIgnored) {
		return 0, fmt.Errorf("%w: tag %d", ErrUnknownStatus, raw)
	}
	return PriceStatus(raw), nil
}

// PriceRecord is a decoded price account scaled by its exponent.
type PriceRecord struct {
	Version     uint32
	PriceType   uint32
	Exponent    int32
	Price       decimal.Decimal
	Confidence  decimal.Decimal
	Status      PriceStatus
	ValidSlot   uint64
	PublishSlot uint64
	Product     solana.PublicKey
	NextPrice   *solana.PublicKey // exposed for diagnostics, never followed
}

// priceV1Layout follows the header of a version 1 price account.
type priceV1Layout struct {
	PriceType     uint32
	Exponent      int32
	NumComponents uint32
	Unused        uint32
	LastSlot      uint64
	ValidSlot     uint64
	Product       solana.PublicKey
	NextPrice     solana.PublicKey
	Aggregator    solana.PublicKey
}

type emaLayout struct {
	Value       int64
	Numerator   int64
	Denominator int64
}

// priceV2Layout follows the header of a version 2 price account.
type priceV2Layout struct {
	PriceType     uint32
	Exponent      int32
	NumComponents uint32
	NumQuoters    uint32
	LastSlot      uint64
	ValidSlot     uint64
	Twap          emaLayout
	Twac          emaLayout
	Timestamp     int64
	MinPublishers uint8
	MessageSent   int8
	MaxLatency    uint8
	Reserved      [5]byte
	Product       solana.PublicKey
	NextPrice     solana.PublicKey
	PrevSlot      uint64
	PrevPrice     int64
	PrevConf      uint64
	PrevTimestamp int64
}

type aggregateLayout struct {
	Price           int64
	Confidence      uint64
	Status          uint32
	CorporateAction uint32
	PublishSlot     uint64
}

// ParsePrice decodes a price account using the layout of its header version.
func ParsePrice(acc Account) (PriceRecord, error) {
	if err := acc.expectKind(AccountKindPrice); err != nil {
		return PriceRecord{}, err
	}

	switch acc.Header.Version {
	case V1:
		return parsePriceV1(acc.Data)
	case V2:
		return parsePriceV2(acc.Data)
	default:
		return PriceRecord{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, acc.Header.Version)
	}
}

func parsePriceV1(data []byte) (PriceRecord, error) {
	if len(data) < aggregateOffsetV1+aggregateSize {
		return PriceRecord{}, fmt.Errorf("%w: v1 price account is %d bytes, need %d",
			ErrTruncatedRecord, len(data), aggregateOffsetV1+aggregateSize)
	}

	var layout priceV1Layout
	if err := bin.NewBinDecoder(data[HeaderSize:aggregateOffsetV1]).Decode(&layout); err != nil {
		return PriceRecord{}, fmt.Errorf("%w: v1 price fields: %v", ErrTruncatedRecord, err)
	}
	var agg aggregateLayout
	if err := bin.NewBinDecoder(data[aggregateOffsetV1 : aggregateOffsetV1+aggregateSize]).Decode(&agg); err != nil {
		return PriceRecord{}, fmt.Errorf("%w: v1 aggregate: %v", ErrTruncatedRecord, err)
	}

	record := PriceRecord{
		Version:   V1,
		PriceType: layout.PriceType,
		Exponent:  layout.Exponent,
		ValidSlot: layout.ValidSlot,
		Product:   layout.Product,
	}
	if !layout.NextPrice.IsZero() {
		next := layout.NextPrice
		record.NextPrice = &next
	}
	return withAggregate(record, agg)
}

func parsePriceV2(data []byte) (PriceRecord, error) {
	if len(data) < aggregateOffsetV2+aggregateSize {
		return PriceRecord{}, fmt.Errorf("%w: v2 price account is %d bytes, need %d",
			ErrTruncatedRecord, len(data), aggregateOffsetV2+aggregateSize)
	}

	var layout priceV2Layout
	if err := bin.NewBinDecoder(data[HeaderSize:aggregateOffsetV2]).Decode(&layout); err != nil {
		return PriceRecord{}, fmt.Errorf("%w: v2 price fields: %v", ErrTruncatedRecord, err)
	}
	var agg aggregateLayout
	if err := bin.NewBinDecoder(data[aggregateOffsetV2 : aggregateOffsetV2+aggregateSize]).Decode(&agg); err != nil {
		return PriceRecord{}, fmt.Errorf("%w: v2 aggregate: %v", ErrTruncatedRecord, err)
	}

	record := PriceRecord{
		Version:   V2,
		PriceType: layout.PriceType,
		Exponent:  layout.Exponent,
		ValidSlot: layout.ValidSlot,
		Product:   layout.Product,
	}
	if !layout.NextPrice.IsZero() {
		next := layout.NextPrice
		record.NextPrice = &next
	}
	return withAggregate(record, agg)
}

// withAggregate scales the raw aggregate by 10^exponent and maps its status.
func withAggregate(record PriceRecord, agg aggregateLayout) (PriceRecord, error) {
	status, err := parseStatus(agg.Status)
	if err != nil {
		return PriceRecord{}, err
	}
	record.Status = status
	record.PublishSlot = agg.PublishSlot
	record.Price = decimal.New(agg.Price, record.Exponent)
	record.Confidence = decimal.NewFromBigInt(new(big.Int).SetUint64(agg.Confidence), record.Exponent)
	return record, nil
}
