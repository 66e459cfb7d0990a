package eventlog

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/assetbook/internal/entity"
)

func TestWALStoreAppendAndRead(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	recipient := common.BytesToAddress([]byte{0xB})
	require.NoError(t, store.Append(entity.NewCreatedEvent(0, recipient, decimal.NewFromInt(20))))
	require.NoError(t, store.Append(entity.NewBurnedEvent(0, recipient, decimal.NewFromInt(5), []byte("proof"))))
	require.NoError(t, store.Append(entity.NewFreezeStatusEvent(recipient, true)))

	records, err := store.EventsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, entity.EventCreated, records[0].Event.Kind)
	assert.Equal(t, "20", records[0].Event.Amount)
	assert.Equal(t, recipient, records[0].Event.Account)

	assert.Equal(t, entity.EventBurned, records[1].Event.Kind)
	assert.Equal(t, []byte("proof"), []byte(records[1].Event.Proof))

	assert.Equal(t, entity.EventFreezeStatusChanged, records[2].Event.Kind)
	assert.True(t, records[2].Event.Frozen)

	// indexes are strictly increasing
	assert.Less(t, records[0].Index, records[1].Index)
	assert.Less(t, records[1].Index, records[2].Index)
}

func TestWALStoreEventsAfterTail(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	recipient := common.BytesToAddress([]byte{0xB})
	require.NoError(t, store.Append(entity.NewCreatedEvent(0, recipient, decimal.NewFromInt(1))))
	first := store.CurrentIndex()

	require.NoError(t, store.Append(entity.NewCreatedEvent(1, recipient, decimal.NewFromInt(2))))

	records, err := store.EventsAfter(first)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint64(1), records[0].Event.AssetID)

	records, err = store.EventsAfter(store.CurrentIndex())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWALStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewWALStore(dir)
	require.NoError(t, err)

	recipient := common.BytesToAddress([]byte{0xB})
	require.NoError(t, store.Append(entity.NewCreatedEvent(0, recipient, decimal.NewFromInt(7))))
	require.NoError(t, store.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.EventsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "7", records[0].Event.Amount)
}

func TestWALStoreUninitialized(t *testing.T) {
	var store *WALStore

	err := store.Append(entity.Event{Kind: entity.EventCreated})
	require.Error(t, err)

	_, err = store.EventsAfter(0)
	require.Error(t, err)

	assert.Equal(t, uint64(0), store.CurrentIndex())
}
