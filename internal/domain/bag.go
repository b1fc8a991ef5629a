package domain

import "fmt"

const (
	MaxBottlesPerDay uint8 = 3
	SecondsPerDay    int64 = 86_400

	BagSeed = "bag"
)

// OperationKind selects which Bag of an actor is charged.
type OperationKind string

const (
	OperationThrow    OperationKind = "throw"
	OperationRetrieve OperationKind = "retrieve"
)

func (k OperationKind) Valid() bool {
	switch k {
	case OperationThrow, OperationRetrieve:
		return true
	default:
		return false
	}
}

// Bag is the per-actor, per-kind daily counter. The zero value is a fresh bag.
type Bag struct {
	LastOperationTime int64
	Counter           uint8
}

// Admit applies the daily limit at ledger time now and returns the updated
// bag. The window only resets once the counter has reached the cap, so an
// actor below the cap keeps its first reference time.
func (b Bag) Admit(now int64) (Bag, error) {
	if b.Counter >= MaxBottlesPerDay {
		if now-b.LastOperationTime <= SecondsPerDay {
			return b, ErrMaxDailyBottleExceeded
		}
		b.Counter = 0
	}

	b.Counter++
	b.LastOperationTime = now
	return b, nil
}

// Remaining reports how many operations the bag would still admit at now.
func (b Bag) Remaining(now int64) uint8 {
	if b.Counter >= MaxBottlesPerDay && now-b.LastOperationTime > SecondsPerDay {
		return MaxBottlesPerDay
	}
	if b.Counter >= MaxBottlesPerDay {
		return 0
	}

	return MaxBottlesPerDay - b.Counter
}

func BagSeeds(actor Address, kind OperationKind) [][]byte {
	return [][]byte{[]byte(BagSeed), actor[:], []byte(kind)}
}

func (b Bag) String() string {
	return fmt.Sprintf("%d/%d since %d", b.Counter, MaxBottlesPerDay, b.LastOperationTime)
}
