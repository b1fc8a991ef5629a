package ports

import "github.com/bnema/driftbottle/internal/domain"

type AddressDeriver interface {
	Program() domain.Address
	// FindProgramAddress returns the first derived address and its bump.
	FindProgramAddress(seeds [][]byte) (domain.Address, uint8, error)
	CreateProgramAddress(seeds [][]byte, bump uint8) (domain.Address, error)
}
