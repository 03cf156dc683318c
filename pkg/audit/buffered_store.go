/*
Copyright 2025 Jordi Gil.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package audit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// BufferedStore batches Events in memory and flushes them to a Sink either
// when the buffer reaches batchSize or flushInterval elapses, whichever
// comes first. Record never blocks the caller on sink I/O: a full buffer
// drops the oldest pending event and counts it in Dropped rather than
// stalling business logic.
type BufferedStore struct {
	sink          Sink
	batchSize     int
	flushInterval time.Duration
	logger        *zap.Logger

	mu      sync.Mutex
	pending []Event
	dropped int64

	flushCh chan struct{}
	closeCh chan struct{}
	doneCh  chan struct{}
}

// NewBufferedStore builds a store that flushes to sink every flushInterval
// or once batchSize events have accumulated, and starts its background
// flush loop.
func NewBufferedStore(sink Sink, batchSize int, flushInterval time.Duration, logger *zap.Logger) *BufferedStore {
	s := &BufferedStore{
		sink:          sink,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		flushCh:       make(chan struct{}, 1),
		closeCh:       make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	go s.run()
	return s
}

// Record appends event to the pending buffer. It never blocks on sink I/O.
func (s *BufferedStore) Record(event Event) {
	s.mu.Lock()
	if s.batchSize > 0 && len(s.pending) >= s.batchSize*4 {
		// Buffer badly backed up (sink stalled): drop the oldest event
		// rather than grow unbounded or block the caller.
		s.pending = s.pending[1:]
		s.dropped++
	}
	s.pending = append(s.pending, event)
	shouldFlush := s.batchSize > 0 && len(s.pending) >= s.batchSize
	s.mu.Unlock()

	if shouldFlush {
		select {
		case s.flushCh <- struct{}{}:
		default:
		}
	}
}

// Dropped returns the number of events dropped due to sink back-pressure.
func (s *BufferedStore) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Flush synchronously drains the current buffer to the sink. A sink
// failure is logged and swallowed: audit write failures never fail the
// business operation that triggered them.
func (s *BufferedStore) Flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if err := s.sink.WriteEvents(batch); err != nil {
		s.logger.Error("failed to flush audit events", zap.Error(err), zap.Int("count", len(batch)))
	}
}

func (s *BufferedStore) run() {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-s.flushCh:
			s.Flush()
		case <-s.closeCh:
			s.Flush()
			return
		}
	}
}

// Close stops the background flush loop after draining any pending
// events.
func (s *BufferedStore) Close() {
	close(s.closeCh)
	<-s.doneCh
}
