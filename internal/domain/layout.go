package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

const DiscriminatorSize = 8

// Bottle record layout. Integers are little-endian; the message is a u32
// length prefix followed by its bytes, zero padded to BottleSpace.
const (
	BottleIDOffset              = 8
	BottleSenderOffset          = 16
	BottleTimestampOffset       = 48
	BottleStateOffset           = 56
	BottleAssetOffset           = 57
	BottleAssetAccountOffset    = 65
	BottleDerivationNonceOffset = 97
	BottleMessageLenOffset      = 98
	BottleMessageOffset         = 102

	BottleSpace = BottleMessageOffset + MaxMessageSize
)

// Bag record layout.
const (
	BagLastTimeOffset = 8
	BagCounterOffset  = 16

	BagSpace = 17
)

var (
	BottleDiscriminator = discriminator("account:Bottle")
	BagDiscriminator    = discriminator("account:Bag")
)

func discriminator(name string) [DiscriminatorSize]byte {
	sum := sha256.Sum256([]byte(name))

	var out [DiscriminatorSize]byte
	copy(out[:], sum[:DiscriminatorSize])
	return out
}

// Memcmp matches records whose bytes at Offset equal Bytes.
type Memcmp struct {
	Offset int
	Bytes  []byte
}

func (m Memcmp) Match(data []byte) bool {
	end := m.Offset + len(m.Bytes)
	if m.Offset < 0 || end > len(data) {
		return false
	}

	return bytes.Equal(data[m.Offset:end], m.Bytes)
}

// DataSlice restricts a scan to Length bytes starting at Offset.
type DataSlice struct {
	Offset int
	Length int
}

func (s DataSlice) Apply(data []byte) []byte {
	if s.Offset >= len(data) {
		return []byte{}
	}

	end := s.Offset + s.Length
	if end > len(data) {
		end = len(data)
	}

	out := make([]byte, end-s.Offset)
	copy(out, data[s.Offset:end])
	return out
}

// KeyedRecord is a raw record, possibly sliced, together with its address.
type KeyedRecord struct {
	Address Address
	Data    []byte
}

func EncodeBottle(b Bottle) ([]byte, error) {
	if err := ValidateMessage(b.Message); err != nil {
		return nil, err
	}
	if !b.State.Valid() {
		return nil, fmt.Errorf("encode bottle: invalid state %d", b.State)
	}

	buf := make([]byte, BottleSpace)
	copy(buf, BottleDiscriminator[:])
	binary.LittleEndian.PutUint64(buf[BottleIDOffset:], uint64(b.ID))
	copy(buf[BottleSenderOffset:], b.Sender[:])
	binary.LittleEndian.PutUint64(buf[BottleTimestampOffset:], uint64(b.Timestamp))
	buf[BottleStateOffset] = byte(b.State)
	binary.LittleEndian.PutUint64(buf[BottleAssetOffset:], b.Asset)
	copy(buf[BottleAssetAccountOffset:], b.AssetAccount[:])
	buf[BottleDerivationNonceOffset] = b.DerivationNonce
	binary.LittleEndian.PutUint32(buf[BottleMessageLenOffset:], uint32(len(b.Message)))
	copy(buf[BottleMessageOffset:], b.Message)

	return buf, nil
}

func DecodeBottle(data []byte) (Bottle, error) {
	if len(data) < BottleMessageOffset {
		return Bottle{}, fmt.Errorf("%w: bottle is %d bytes", ErrCorruptRecord, len(data))
	}
	if !bytes.Equal(data[:DiscriminatorSize], BottleDiscriminator[:]) {
		return Bottle{}, fmt.Errorf("%w: not a bottle", ErrDiscriminator)
	}

	state := BottleState(data[BottleStateOffset])
	if !state.Valid() {
		return Bottle{}, fmt.Errorf("%w: bottle state %d", ErrCorruptRecord, state)
	}

	msgLen := int(binary.LittleEndian.Uint32(data[BottleMessageLenOffset:]))
	if msgLen > MaxMessageSize || BottleMessageOffset+msgLen > len(data) {
		return Bottle{}, fmt.Errorf("%w: message length %d", ErrCorruptRecord, msgLen)
	}

	b := Bottle{
		ID:              BottleID(binary.LittleEndian.Uint64(data[BottleIDOffset:])),
		Timestamp:       int64(binary.LittleEndian.Uint64(data[BottleTimestampOffset:])),
		State:           state,
		Asset:           binary.LittleEndian.Uint64(data[BottleAssetOffset:]),
		DerivationNonce: data[BottleDerivationNonceOffset],
		Message:         string(data[BottleMessageOffset : BottleMessageOffset+msgLen]),
	}
	copy(b.Sender[:], data[BottleSenderOffset:BottleTimestampOffset])
	copy(b.AssetAccount[:], data[BottleAssetAccountOffset:BottleDerivationNonceOffset])

	return b, nil
}

// DecodeBottleID reads an id from a record sliced to the id field.
func DecodeBottleID(slice []byte) (BottleID, error) {
	if len(slice) != 8 {
		return 0, fmt.Errorf("%w: id slice is %d bytes", ErrCorruptRecord, len(slice))
	}

	return BottleID(binary.LittleEndian.Uint64(slice)), nil
}

func EncodeBag(b Bag) []byte {
	buf := make([]byte, BagSpace)
	copy(buf, BagDiscriminator[:])
	binary.LittleEndian.PutUint64(buf[BagLastTimeOffset:], uint64(b.LastOperationTime))
	buf[BagCounterOffset] = b.Counter
	return buf
}

func DecodeBag(data []byte) (Bag, error) {
	if len(data) < BagSpace {
		return Bag{}, fmt.Errorf("%w: bag is %d bytes", ErrCorruptRecord, len(data))
	}
	if !bytes.Equal(data[:DiscriminatorSize], BagDiscriminator[:]) {
		return Bag{}, fmt.Errorf("%w: not a bag", ErrDiscriminator)
	}

	return Bag{
		LastOperationTime: int64(binary.LittleEndian.Uint64(data[BagLastTimeOffset:])),
		Counter:           data[BagCounterOffset],
	}, nil
}

// DriftingBottleFilters selects bottle records still in the Drifting state.
func DriftingBottleFilters() []Memcmp {
	return []Memcmp{
		{Offset: 0, Bytes: BottleDiscriminator[:]},
		{Offset: BottleStateOffset, Bytes: []byte{byte(BottleStateDrifting)}},
	}
}

// BottleIDSlice projects a bottle record onto its id.
func BottleIDSlice() DataSlice {
	return DataSlice{Offset: BottleIDOffset, Length: 8}
}
