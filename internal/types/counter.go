package types

import "sync/atomic"

// Counter - thread-safe incremental counter
type Counter struct {
	value int64
}

// NewCounter -
func NewCounter(initial int64) *Counter {
	return &Counter{value: initial}
}

// Increment - increases counter and returns the new value
func (c *Counter) Increment() int64 {
	return atomic.AddInt64(&c.value, 1)
}

// Set -
func (c *Counter) Set(value int64) {
	atomic.StoreInt64(&c.value, value)
}

// Current -
func (c *Counter) Current() int64 {
	return atomic.LoadInt64(&c.value)
}
