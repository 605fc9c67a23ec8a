package ledger

import (
	"sync"
	"time"
)

// IDSource hands out record ids. Ids must be strictly increasing.
type IDSource interface {
	Next() int64
	// Observe tells the source an id is already in use, so it never
	// returns a value at or below it.
	Observe(id int64)
}

// ClockIDs produces millisecond-timestamp ids that never repeat.
// Two calls inside the same millisecond get consecutive values.
type ClockIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewClockIDs() *ClockIDs {
	return &ClockIDs{now: time.Now}
}

func (c *ClockIDs) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}

func (c *ClockIDs) Observe(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id > c.last {
		c.last = id
	}
}

// SequenceIDs counts up from 1. Useful where deterministic ids matter.
type SequenceIDs struct {
	mu   sync.Mutex
	last int64
}

func (s *SequenceIDs) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

func (s *SequenceIDs) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last {
		s.last = id
	}
}
