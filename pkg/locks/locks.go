// Package locks provides per-key mutual exclusion with bounded acquisition,
// used to serialize state transitions per ticket and balance updates per
// stockpile.
package locks

import (
	"errors"
	"sync"
	"time"
)

// ErrAcquireTimeout is returned when a lock is not acquired within the
// configured bound. It is retryable: no side effects have occurred.
var ErrAcquireTimeout = errors.New("lock not acquired within timeout")

// KeyedMutex hands out one mutex per key. Keys with no waiters are evicted
// so the map does not grow with entity count.
type KeyedMutex struct {
	mu      sync.Mutex
	timeout time.Duration
	entries map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates a lock manager with the given acquisition timeout.
func NewKeyedMutex(timeout time.Duration) *KeyedMutex {
	return &KeyedMutex{
		timeout: timeout,
		entries: make(map[string]*entry),
	}
}

// Acquire blocks until the key's lock is held or the timeout elapses.
// On success it returns a release function; the caller must invoke it
// exactly once.
func (k *KeyedMutex) Acquire(key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		e.ch <- struct{}{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	timer := time.NewTimer(k.timeout)
	defer timer.Stop()

	select {
	case <-e.ch:
		return func() { k.release(key, e) }, nil
	case <-timer.C:
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
		return nil, ErrAcquireTimeout
	}
}

func (k *KeyedMutex) release(key string, e *entry) {
	e.ch <- struct{}{}
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()
}
