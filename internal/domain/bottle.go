package domain

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

const (
	MaxMessageSize = 400

	// UnitsPerCoin converts whole coins into the smallest native unit.
	UnitsPerCoin uint64 = 1_000_000_000

	BottleSeed      = "bottle"
	BottleAssetSeed = "bottle_asset"
)

// BottleID is the depositor-supplied nonce. It is unique only together with
// the sender.
type BottleID uint64

func (id BottleID) Bytes() []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(id))
	return buf[:]
}

type BottleState uint8

const (
	BottleStateDrifting BottleState = iota
	BottleStateRetrieved
)

func (s BottleState) String() string {
	switch s {
	case BottleStateDrifting:
		return "drifting"
	case BottleStateRetrieved:
		return "retrieved"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

func (s BottleState) Valid() bool {
	return s == BottleStateDrifting || s == BottleStateRetrieved
}

type Bottle struct {
	ID        BottleID
	Sender    Address
	Timestamp int64
	State     BottleState
	// Asset is held in smallest units by AssetAccount while the bottle drifts.
	Asset        uint64
	AssetAccount Address
	// DerivationNonce is the bump that re-derives signing authority over
	// AssetAccount.
	DerivationNonce uint8
	Message         string
}

func ValidateMessage(message string) error {
	if len(message) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrMessageTooLong, len(message), MaxMessageSize)
	}

	return nil
}

// Retrieve moves the bottle from Drifting to Retrieved. Any other transition
// is rejected, including a repeated Retrieve.
func (b *Bottle) Retrieve() error {
	if b.State != BottleStateDrifting {
		return ErrBottleAlreadyRetrieved
	}

	b.State = BottleStateRetrieved
	return nil
}

func (b Bottle) Drifting() bool {
	return b.State == BottleStateDrifting
}

// Coins returns the escrowed amount in whole units, truncated.
func (b Bottle) Coins() uint64 {
	return b.Asset / UnitsPerCoin
}

// CoinsToUnits converts whole coins to smallest units.
func CoinsToUnits(coins uint64) (uint64, error) {
	hi, lo := bits.Mul64(coins, UnitsPerCoin)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d coins", ErrAmountOverflow, coins)
	}

	return lo, nil
}

func BottleSeeds(sender Address, id BottleID) [][]byte {
	return [][]byte{[]byte(BottleSeed), sender[:], id.Bytes()}
}

func BottleAssetSeeds(sender Address, id BottleID) [][]byte {
	return [][]byte{[]byte(BottleAssetSeed), sender[:], id.Bytes()}
}
