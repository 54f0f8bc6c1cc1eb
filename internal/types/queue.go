package types

import "sync"

// Queue - set of in-flight task ids guarding against double enqueue
type Queue struct {
	items map[uint64]struct{}
	mx    sync.RWMutex
}

// NewQueue -
func NewQueue() *Queue {
	return &Queue{
		items: make(map[uint64]struct{}),
	}
}

// Add -
func (q *Queue) Add(id uint64) {
	q.mx.Lock()
	q.items[id] = struct{}{}
	q.mx.Unlock()
}

// Contains -
func (q *Queue) Contains(id uint64) bool {
	q.mx.RLock()
	_, ok := q.items[id]
	q.mx.RUnlock()
	return ok
}

// Delete -
func (q *Queue) Delete(id uint64) {
	q.mx.Lock()
	delete(q.items, id)
	q.mx.Unlock()
}

// Size -
func (q *Queue) Size() int {
	q.mx.RLock()
	defer q.mx.RUnlock()
	return len(q.items)
}
