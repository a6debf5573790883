package engine

import (
	"container/heap"
	"sync"
	"time"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// caseHeap orders Cases by (priority asc, seq asc).
// Lower priority values are served first; the enqueue stamp breaks ties
// so equal-priority Cases are served FIFO.
type caseHeap []*work.Case

func (h caseHeap) Len() int { return len(h) }

func (h caseHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].Seq < h[j].Seq
}

func (h caseHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *caseHeap) Push(x any) { *h = append(*h, x.(*work.Case)) }

func (h *caseHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil // release the Case for GC
	*h = old[:n-1]
	return c
}

// workQueue is the thread-safe priority queue of Cases, and the single
// source of truth for idle detection.
//
// Workers park inside Dequeue when the heap is empty; the queue counts
// parked workers so that "heap empty AND every live worker parked" can be
// read under one lock. That snapshot is what Join observes - there is no
// window where a Case pushed between the two checks escapes notice,
// because Enqueue takes the same lock.
type workQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond // signaled on Enqueue and Close
	idleCond *sync.Cond // broadcast whenever the idle snapshot may change
	heap     caseHeap
	closed   bool
	waiting  int // workers parked in Dequeue
	workers  int // live workers (exited workers are subtracted)
}

func newWorkQueue() *workQueue {
	q := &workQueue{}
	q.notEmpty = sync.NewCond(&q.mu)
	q.idleCond = sync.NewCond(&q.mu)
	return q
}

// setWorkers records the pool size. Called once at Start, before any
// worker runs.
func (q *workQueue) setWorkers(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.workers = n
}

// workerExited removes an exited worker from the live count.
// A drained pool (zero live workers, empty heap) counts as idle.
func (q *workQueue) workerExited() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.workers--
	q.idleCond.Broadcast()
}

// Enqueue adds a Case. Returns false if the queue is closed; the Case is
// discarded in that case.
// Thread-safe: may be called from any goroutine.
func (q *workQueue) Enqueue(c *work.Case) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	heap.Push(&q.heap, c)
	q.notEmpty.Signal()
	return true
}

// Dequeue removes and returns the highest-priority Case, blocking while
// the queue is empty. Returns (nil, false) once the queue is closed -
// the worker-exit sentinel. Cases still on the heap at close time are
// discarded, never returned.
func (q *workQueue) Dequeue() (*work.Case, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.closed {
			return nil, false
		}
		if len(q.heap) > 0 {
			return heap.Pop(&q.heap).(*work.Case), true
		}

		// Park: the waiting count is part of the idle snapshot, so
		// joiners must be woken when it rises.
		q.waiting++
		q.idleCond.Broadcast()
		q.notEmpty.Wait()
		q.waiting--
	}
}

// Size returns the number of queued Cases.
func (q *workQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// Waiting returns the number of workers currently parked.
func (q *workQueue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waiting
}

// idleLocked is the global-idle predicate. Caller must hold mu.
//
// Idle holds when no Case is queued and no live worker is mid-evaluation
// (every live worker is parked). A closed queue with no live workers is
// also idle: the pool has drained.
func (q *workQueue) idleLocked() bool {
	return len(q.heap) == 0 && q.waiting == q.workers
}

// Idle reports whether the engine is globally idle right now.
func (q *workQueue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.idleLocked()
}

// WaitIdle blocks until global idle holds or timeout elapses, and
// reports whether idle was reached.
//
// timeout == 0 checks once without blocking. timeout < 0 waits without
// bound. The predicate is re-checked after every wake, so a Case pushed
// concurrently with a wake cannot produce a false idle report.
func (q *workQueue) WaitIdle(timeout time.Duration) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.idleLocked() {
		return true
	}
	if timeout == 0 {
		return false
	}

	var expired bool
	if timeout > 0 {
		// sync.Cond has no timed wait; a timer that broadcasts under the
		// lock gives the waiter a wake to observe expiry on.
		t := time.AfterFunc(timeout, func() {
			q.mu.Lock()
			expired = true
			q.mu.Unlock()
			q.idleCond.Broadcast()
		})
		defer t.Stop()
	}

	for !q.idleLocked() {
		if expired {
			return false
		}
		q.idleCond.Wait()
	}
	return true
}

// Close shuts the queue down: pending Cases are discarded, parked
// workers wake and receive the exit sentinel, future Enqueues fail.
// Idempotent.
func (q *workQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.heap = nil
	q.notEmpty.Broadcast()
	q.idleCond.Broadcast()
}
