// Package entity defines core data structures shared across the ledger.
package entity

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Account identifies a balance holder. The ledger treats it as an opaque,
// comparable 20-byte address and never interprets its contents.
type Account = common.Address

// ParseAccount parses a hex address string into an Account.
func ParseAccount(s string) (Account, error) {
	if !common.IsHexAddress(s) {
		return Account{}, errors.Errorf("invalid account address %q", s)
	}
	return common.HexToAddress(s), nil
}
