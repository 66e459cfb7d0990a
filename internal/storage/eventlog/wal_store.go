// Package eventlog persists ledger events in an append-only WAL so observers
// can replay or tail them. The ledger writes here and never reads back.
package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/assetbook/internal/entity"
	"github.com/vadiminshakov/assetbook/pkg/retrier"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultEventDir   = "./wal/events"
	eventSegmentLimit = 1000
	eventMaxSegments  = 100
	eventKeyPrefix    = "ledger_event_"

	appendTimeout = 5 * time.Second
)

// WALStore is an append-only, WAL-backed event log.
type WALStore struct {
	wal *gowal.Wal
	r   *retrier.Retrier
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed event log under the provided directory.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultEventDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "event_",
		SegmentThreshold: eventSegmentLimit,
		MaxSegments:      eventMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init event WAL")
	}

	r := retrier.New(
		retrier.WithInitialInterval(50*time.Millisecond),
		retrier.WithMaxInterval(time.Second),
		retrier.WithMaxRetries(3),
	)

	return &WALStore{wal: wal, r: r}, nil
}

// Append writes the event to the WAL. Transient write failures are retried
// with backoff before the error is surfaced.
func (s *WALStore) Append(ev entity.Event) error {
	if s == nil || s.wal == nil {
		return errors.New("event log is not initialized")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal ledger event")
	}

	key := fmt.Sprintf("%s%s", eventKeyPrefix, ev.Kind)

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	return s.r.Do(ctx, func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		nextIndex := s.wal.CurrentIndex() + 1
		return s.wal.Write(nextIndex, key, payload)
	})
}

// EventsAfter returns all events written after the provided WAL index.
func (s *WALStore) EventsAfter(index uint64) ([]entity.EventRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("event log is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]entity.EventRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, eventKeyPrefix) {
			continue
		}
		var ev entity.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, errors.Wrap(err, "decode ledger event")
		}
		records = append(records, entity.EventRecord{Index: idx, Event: ev})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("event log is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
