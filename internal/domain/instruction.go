package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gowebpki/jcs"
)

const (
	InstructionThrowABottle    = "throw_a_bottle"
	InstructionRetrieveABottle = "retrieve_a_bottle"
)

// Instruction is the signed request an actor submits to the ledger.
type Instruction struct {
	Program  Address           `json:"program"`
	Name     string            `json:"name"`
	Signer   Address           `json:"signer"`
	Accounts []Address         `json:"accounts"`
	Args     map[string]string `json:"args,omitempty"`
	Nonce    string            `json:"nonce"`
}

// SigningBytes returns the RFC 8785 canonical JSON form that is signed.
func (i Instruction) SigningBytes() ([]byte, error) {
	raw, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("encode instruction: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize instruction: %w", err)
	}

	return canonical, nil
}

func (i Instruction) Uint64Arg(name string) (uint64, error) {
	raw, ok := i.Args[name]
	if !ok {
		return 0, fmt.Errorf("instruction %s: missing argument %q", i.Name, name)
	}

	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("instruction %s: argument %q: %w", i.Name, name, err)
	}

	return value, nil
}

type SignedInstruction struct {
	Instruction Instruction
	Signature   []byte
}

// Receipt is returned once the ledger has committed an instruction.
type Receipt struct {
	ID          string
	Instruction string
	Signer      Address
	Signature   string
	Time        int64
}
