package task

import (
	"container/heap"
	"sync"
	"time"
)

// heapStore implements heap.Interface ordering by (Instant, ID) ascending,
// the "earliest instant then lowest id" rule from spec.md §4.10.
type heapStore []*Task

func (h heapStore) Len() int { return len(h) }
func (h heapStore) Less(i, j int) bool {
	if !h[i].Instant.Equal(h[j].Instant) {
		return h[i].Instant.Before(h[j].Instant)
	}
	return h[i].ID < h[j].ID
}
func (h heapStore) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *heapStore) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *heapStore) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Queue is the binary min-heap task scheduler of spec.md §4.10. It is
// main-thread only per spec.md §5 ("The task queue is main-thread
// only"); the mutex exists only to guard against accidental concurrent
// use, not to make the queue a cross-thread handoff point.
type Queue struct {
	mu      sync.Mutex
	store   heapStore
	nextID  uint64
	nowFunc func() time.Time
}

// NewQueue returns an empty queue. nowFunc lets tests and callers supply
// a deterministic clock; pass nil to use time.Now.
func NewQueue(nowFunc func() time.Time) *Queue {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &Queue{nowFunc: nowFunc}
}

func (q *Queue) now() time.Time { return q.nowFunc() }

// Enqueue schedules t to run as soon as possible (instant = now). Returns
// the assigned id.
func (q *Queue) Enqueue(t *Task) uint64 {
	return q.EnqueueAt(t, q.now())
}

// EnqueueAt schedules t to become due at instant. Returns the assigned id.
func (q *Queue) EnqueueAt(t *Task, instant time.Time) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	t.ID = q.nextID
	t.Instant = instant
	heap.Push(&q.store, t)
	return t.ID
}

// RetrieveDue pops all entries whose instant ≤ now, in (instant, id)
// order, appending them to buf and returning the result. buf may be nil.
func (q *Queue) RetrieveDue(buf []*Task) []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	for q.store.Len() > 0 && !q.store[0].Instant.After(now) {
		t := heap.Pop(&q.store).(*Task)
		buf = append(buf, t)
	}
	return buf
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Len()
}

// Cancel removes a pending task by id, if still present. Returns whether
// it was found and removed.
func (q *Queue) Cancel(id uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.store {
		if t.ID == id {
			heap.Remove(&q.store, i)
			return true
		}
	}
	return false
}
