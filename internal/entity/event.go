package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// EventKind discriminates ledger event payloads.
type EventKind string

const (
	// EventCreated a new asset class was allocated and its initial supply minted.
	EventCreated EventKind = "created"
	// EventBurned units were destroyed, voluntarily or by an administrator.
	EventBurned EventKind = "burned"
	// EventFreezeStatusChanged an account freeze flag was set.
	EventFreezeStatusChanged EventKind = "account_freeze_status_changed"
)

// Event is an immutable record of a state-changing ledger operation.
// Events are append-only, ordered by emission, and never influence
// subsequent ledger state.
type Event struct {
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"ts"`

	// AssetID is set for created and burned events.
	AssetID uint64 `json:"asset_id"`
	// Account is the recipient for created events, the debited holder for
	// burned events and the target for freeze status changes.
	Account Account `json:"account"`
	// Amount uses string form to survive JSON round-trips exactly.
	Amount string `json:"amount,omitempty"`
	// Proof is opaque audit evidence attached to administrative burns.
	// Empty for voluntary burns.
	Proof hexutil.Bytes `json:"proof,omitempty"`
	// Frozen is the new flag value for freeze status changes. Always
	// serialized, so an unfreeze is explicit on the wire.
	Frozen bool `json:"frozen"`
}

// NewCreatedEvent builds the event emitted by asset creation.
func NewCreatedEvent(assetID uint64, recipient Account, amount decimal.Decimal) Event {
	return Event{
		Kind:      EventCreated,
		Timestamp: time.Now().UTC(),
		AssetID:   assetID,
		Account:   recipient,
		Amount:    amount.String(),
	}
}

// NewBurnedEvent builds the event emitted by both burn paths. A nil or empty
// proof marks a voluntary self-burn.
func NewBurnedEvent(assetID uint64, account Account, amount decimal.Decimal, proof []byte) Event {
	return Event{
		Kind:      EventBurned,
		Timestamp: time.Now().UTC(),
		AssetID:   assetID,
		Account:   account,
		Amount:    amount.String(),
		Proof:     proof,
	}
}

// NewFreezeStatusEvent builds the event emitted by every successful freeze
// status set, including redundant ones.
func NewFreezeStatusEvent(account Account, frozen bool) Event {
	return Event{
		Kind:      EventFreezeStatusChanged,
		Timestamp: time.Now().UTC(),
		Account:   account,
		Frozen:    frozen,
	}
}

// EventRecord bundles an event with its position in the durable log.
type EventRecord struct {
	Index uint64
	Event Event
}
