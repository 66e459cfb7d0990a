package entity

import "github.com/shopspring/decimal"

// Asset is one class of fungible units within the shared ledger.
type Asset struct {
	// ID ledger-assigned sequential identifier, never reused.
	ID uint64 `json:"id"`
	// Metadata opaque metadata reference (usually a URI) set at creation.
	Metadata string `json:"metadata"`
	// TotalSupply sum of all account balances for this asset.
	TotalSupply decimal.Decimal `json:"total_supply"`
}

// ValidAmount reports whether d is usable as a ledger amount:
// a non-negative whole number.
func ValidAmount(d decimal.Decimal) bool {
	return d.Sign() >= 0 && d.IsInteger()
}
