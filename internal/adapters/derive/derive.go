// Package derive computes program-derived addresses: sha256 over the seeds,
// a bump byte, the program id and a fixed marker, accepted only when the
// result is not a valid ed25519 point. No private key exists for such an
// address, so only the program holding the seeds can move value out of it.
package derive

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/ports"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrOnCurve       = errors.New("derived address lies on the ed25519 curve")
	ErrNoViableBump  = errors.New("unable to find a viable bump seed")
	ErrInvalidSeeds  = errors.New("invalid seeds")
	errZeroProgramID = errors.New("program id is zero")
)

type Deriver struct {
	program domain.Address
}

var _ ports.AddressDeriver = (*Deriver)(nil)

func New(program domain.Address) (*Deriver, error) {
	if program.IsZero() {
		return nil, errZeroProgramID
	}

	return &Deriver{program: program}, nil
}

func (d *Deriver) Program() domain.Address {
	return d.program
}

func (d *Deriver) CreateProgramAddress(seeds [][]byte, bump uint8) (domain.Address, error) {
	if err := validateSeeds(seeds); err != nil {
		return domain.Address{}, err
	}

	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte{bump})
	h.Write(d.program[:])
	h.Write([]byte(pdaMarker))

	var addr domain.Address
	copy(addr[:], h.Sum(nil))

	if onCurve(addr) {
		return domain.Address{}, ErrOnCurve
	}

	return addr, nil
}

func (d *Deriver) FindProgramAddress(seeds [][]byte) (domain.Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := d.CreateProgramAddress(seeds, uint8(bump))
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return domain.Address{}, 0, err
		}
	}

	return domain.Address{}, 0, ErrNoViableBump
}

func validateSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds-1 {
		return fmt.Errorf("%w: %d seeds (max %d)", ErrInvalidSeeds, len(seeds), MaxSeeds-1)
	}
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return fmt.Errorf("%w: seed %d is %d bytes (max %d)", ErrInvalidSeeds, i, len(seed), MaxSeedLength)
		}
	}

	return nil
}

func onCurve(addr domain.Address) bool {
	_, err := new(edwards25519.Point).SetBytes(addr[:])
	return err == nil
}
