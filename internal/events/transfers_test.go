package events

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferBroadcasterFanOut(t *testing.T) {
	b := NewTransferBroadcaster(4)

	first := b.Subscribe()
	second := b.Subscribe()
	defer b.Unsubscribe(first)
	defer b.Unsubscribe(second)

	notice := TransferNotice{
		Timestamp: time.Now().UTC(),
		From:      common.BytesToAddress([]byte{0xB}),
		To:        common.BytesToAddress([]byte{0xC}),
		AssetIDs:  []uint64{0},
		Amounts:   []string{"10"},
	}
	b.Publish(notice)

	got := <-first
	assert.Equal(t, notice.From, got.From)
	assert.Equal(t, notice.Amounts, got.Amounts)

	got = <-second
	assert.Equal(t, notice.To, got.To)
}

func TestTransferBroadcasterDropsSlowConsumer(t *testing.T) {
	b := NewTransferBroadcaster(1)

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(TransferNotice{AssetIDs: []uint64{1}})
	b.Publish(TransferNotice{AssetIDs: []uint64{2}})

	got := <-ch
	assert.Equal(t, []uint64{1}, got.AssetIDs)

	select {
	case extra := <-ch:
		t.Fatalf("expected overflow notice to be dropped, got %v", extra)
	default:
	}
}

func TestTransferBroadcasterUnsubscribeCloses(t *testing.T) {
	b := NewTransferBroadcaster(1)

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	_, open := <-ch
	require.False(t, open)

	// unsubscribing twice must not panic
	b.Unsubscribe(ch)

	// publishing after unsubscribe reaches nobody
	b.Publish(TransferNotice{AssetIDs: []uint64{3}})
}
