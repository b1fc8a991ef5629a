package domain

import (
	"fmt"
	"strings"
	"time"
)

type WalletName string

// Wallet is a named actor identity. The private key lives in a key store
// under SecretRef.
type Wallet struct {
	Name      WalletName
	Address   Address
	SecretRef string
	CreatedAt time.Time
}

func (w Wallet) Validate() error {
	name := strings.TrimSpace(string(w.Name))
	if name == "" {
		return fmt.Errorf("wallet name is required")
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid wallet name %q", w.Name)
	}
	if w.Address.IsZero() {
		return fmt.Errorf("wallet address is required")
	}
	if strings.TrimSpace(w.SecretRef) == "" {
		return fmt.Errorf("wallet secret ref is required")
	}

	return nil
}
