// Package store keeps the append-only measurement history, one ordered
// stream per sensor.
//
// Concurrency policy for the clear/append race: Clear and Append contend on
// the same per-stream write lock, so a clear issued while an append is in
// flight waits for the append to land and then erases everything, that
// record included. No record for a sensor survives its clear.
package store

import (
	"sort"
	"sync"

	"github.com/floodwatch/water-level-service/internal/domain"
)

// stream is one sensor's history, ordered by strictly increasing timestamp.
type stream struct {
	mu      sync.RWMutex
	records []domain.Measurement
}

// Store is an in-memory MeasurementStore. The outer lock only guards the
// id → stream map; appends to different sensors never contend.
type Store struct {
	mu      sync.RWMutex
	streams map[int]*stream
}

// New creates an empty store.
func New() *Store {
	return &Store{streams: make(map[int]*stream)}
}

// Append adds a measurement to its sensor's stream. The timestamp must
// strictly exceed the stream's last recorded timestamp; a violation fails
// with OrderingError and leaves the stream unchanged. Amortized O(1).
func (s *Store) Append(m domain.Measurement) error {
	st := s.stream(m.SensorID)

	st.mu.Lock()
	defer st.mu.Unlock()

	if n := len(st.records); n > 0 {
		last := st.records[n-1].Timestamp
		if !m.Timestamp.After(last) {
			return &domain.OrderingError{SensorID: m.SensorID, Timestamp: m.Timestamp, Last: last}
		}
	}
	st.records = append(st.records, m)
	return nil
}

// Latest returns the most recent measurement for the sensor, or nil if the
// sensor has no history (fresh or cleared).
func (s *Store) Latest(sensorID int) *domain.Measurement {
	st := s.peek(sensorID)
	if st == nil {
		return nil
	}

	st.mu.RLock()
	defer st.mu.RUnlock()

	n := len(st.records)
	if n == 0 {
		return nil
	}
	m := st.records[n-1]
	return &m
}

// Recent returns up to limit measurements most-recent-first, across all
// sensors or filtered to one. limit <= 0 means no limit. Read-only; takes
// no write locks.
func (s *Store) Recent(limit int, sensorID *int) []domain.Measurement {
	var all []domain.Measurement

	if sensorID != nil {
		if st := s.peek(*sensorID); st != nil {
			all = st.snapshot()
		}
	} else {
		s.mu.RLock()
		streams := make([]*stream, 0, len(s.streams))
		for _, st := range s.streams {
			streams = append(streams, st)
		}
		s.mu.RUnlock()

		for _, st := range streams {
			all = append(all, st.snapshot()...)
		}
	}

	// Streams are ascending per sensor; order the merged view newest first.
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Clear atomically deletes the sensor's entire history. Irreversible. An
// in-flight Append for the same sensor finishes first (see the package
// policy); appends to other sensors are unaffected.
func (s *Store) Clear(sensorID int) {
	st := s.peek(sensorID)
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.records = nil
}

func (st *stream) snapshot() []domain.Measurement {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]domain.Measurement(nil), st.records...)
}

// stream returns the sensor's stream, creating it on first use.
func (s *Store) stream(sensorID int) *stream {
	s.mu.RLock()
	st, ok := s.streams[sensorID]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.streams[sensorID]; ok {
		return st
	}
	st = &stream{}
	s.streams[sensorID] = st
	return st
}

// peek returns the sensor's stream without creating one.
func (s *Store) peek(sensorID int) *stream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streams[sensorID]
}
