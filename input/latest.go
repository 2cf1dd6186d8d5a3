package input

import (
	"sync"
	"time"
)

// Stamp identifies one delivery into a mailbox.
type Stamp struct {
	Seq uint64    // 1 for the first delivery
	At  time.Time // when the value was stored
}

// Latest is a single-slot mailbox holding the most recent value. Producers
// overwrite it, readers never block on it and never see a backlog.
//
// Store takes ownership of v. Reference values (slices) must not be
// modified by the producer after they are stored.
type Latest[T any] struct {
	mu    sync.Mutex
	val   T
	stamp Stamp
}

// Store replaces the held value and returns its stamp.
func (l *Latest[T]) Store(v T, at time.Time) Stamp {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.val = v
	l.stamp = Stamp{Seq: l.stamp.Seq + 1, At: at}

	return l.stamp
}

// Load returns the held value and its stamp. ok is false until the first
// Store.
func (l *Latest[T]) Load() (v T, stamp Stamp, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.val, l.stamp, l.stamp.Seq > 0
}

// Stamp returns the stamp of the held value.
func (l *Latest[T]) Stamp() Stamp {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.stamp
}
