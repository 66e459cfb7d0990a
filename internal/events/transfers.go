// Package events carries ledger notifications to in-process subscribers.
package events

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vadiminshakov/assetbook/internal/entity"
)

// TransferNotice describes a completed transfer. Transfers do not enter the
// durable event log; the notice is the standard notification handed to the
// surrounding token-standard layer. Amounts use string fields to avoid
// precision issues when consumed by web/UI layers.
type TransferNotice struct {
	Timestamp time.Time      `json:"ts"`
	From      entity.Account `json:"from"`
	To        entity.Account `json:"to"`
	AssetIDs  []uint64       `json:"asset_ids"`
	Amounts   []string       `json:"amounts"`
	// Data is the opaque payload supplied by the caller, forwarded untouched.
	Data hexutil.Bytes `json:"data,omitempty"`
}

// TransferBroadcaster fans out notices to all subscribers via buffered
// channels. It keeps the API intentionally small so call sites can stay
// straightforward.
type TransferBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan TransferNotice]struct{}
	buffer int
}

// NewTransferBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewTransferBroadcaster(buffer int) *TransferBroadcaster {
	if buffer < 1 {
		buffer = 64
	}
	return &TransferBroadcaster{
		subs:   make(map[chan TransferNotice]struct{}),
		buffer: buffer,
	}
}

// Publish sends the notice to all subscribers, dropping if a reader is slow.
func (b *TransferBroadcaster) Publish(n TransferNotice) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- n:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives notices until Unsubscribe is called.
func (b *TransferBroadcaster) Subscribe() chan TransferNotice {
	ch := make(chan TransferNotice, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *TransferBroadcaster) Unsubscribe(ch chan TransferNotice) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
