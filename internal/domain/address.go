package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const AddressSize = 32

// Address identifies an actor, a program or a record on the ledger. Actor
// addresses are ed25519 public keys; record addresses are derived.
type Address [AddressSize]byte

func ParseAddress(raw string) (Address, error) {
	var addr Address

	decoded, err := hex.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return addr, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, raw, err)
	}
	if len(decoded) != AddressSize {
		return addr, fmt.Errorf("%w: %q: want %d bytes, got %d", ErrInvalidAddress, raw, AddressSize, len(decoded))
	}

	copy(addr[:], decoded)
	return addr, nil
}

func AddressFromBytes(raw []byte) (Address, error) {
	var addr Address
	if len(raw) != AddressSize {
		return addr, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidAddress, AddressSize, len(raw))
	}

	copy(addr[:], raw)
	return addr, nil
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Short is a display form for terminal output.
func (a Address) Short() string {
	s := a.String()
	return s[:6] + ".." + s[len(s)-4:]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}
