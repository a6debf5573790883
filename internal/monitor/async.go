package monitor

import (
	"sync"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// event is one queued monitor callback.
type event struct {
	kind eventKind
	c    *work.Case
	data []byte
	flag string
	err  error
}

type eventKind int

const (
	eventResult eventKind = iota + 1
	eventFlag
	eventException
)

// Async decouples the wrapped monitor from the worker pool: callbacks
// are appended to an internal queue and delivered in order by a single
// consumer goroutine. Workers never block on the wrapped monitor, which
// keeps slow consumers (terminal UIs, remote submitters) off the
// dispatch path.
//
// The internal queue is unbounded so a burst of results cannot stall a
// worker; Close drains whatever is queued before returning.
type Async struct {
	next Monitor

	mu     sync.Mutex
	queue  []event
	wake   chan struct{}
	closed bool
	done   chan struct{}
}

// NewAsync starts the consumer goroutine for next.
func NewAsync(next Monitor) *Async {
	a := &Async{
		next: next,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go a.consume()
	return a
}

func (a *Async) OnResult(c *work.Case, data []byte) {
	a.push(event{kind: eventResult, c: c, data: data})
}

func (a *Async) OnFlag(c *work.Case, flag string) {
	a.push(event{kind: eventFlag, c: c, flag: flag})
}

func (a *Async) OnException(c *work.Case, err error) {
	a.push(event{kind: eventException, c: c, err: err})
}

// Close stops accepting events, waits for queued events to be delivered,
// and returns. Events pushed after Close are dropped.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
	<-a.done
}

func (a *Async) push(ev event) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.queue = append(a.queue, ev)
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *Async) consume() {
	defer close(a.done)

	for {
		a.mu.Lock()
		batch := a.queue
		a.queue = nil
		closed := a.closed
		a.mu.Unlock()

		for _, ev := range batch {
			switch ev.kind {
			case eventResult:
				a.next.OnResult(ev.c, ev.data)
			case eventFlag:
				a.next.OnFlag(ev.c, ev.flag)
			case eventException:
				a.next.OnException(ev.c, ev.err)
			}
		}

		if closed {
			// One final drain pass happened above; anything pushed after
			// the closed flag was set is dropped by push.
			return
		}
		<-a.wake
	}
}
