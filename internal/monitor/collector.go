package monitor

import (
	"sync"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// FlagEvent pairs a discovered flag value with the Case that produced
// it, for later solution reconstruction.
type FlagEvent struct {
	Case *work.Case
	Flag string
}

// Collector is a Monitor that accumulates events in memory, in arrival
// order. The CLI uses it to render flags and solutions after a run;
// tests use it to assert on engine behavior.
type Collector struct {
	mu         sync.Mutex
	results    []work.Result
	flags      []FlagEvent
	exceptions []error
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (col *Collector) OnResult(c *work.Case, data []byte) {
	col.mu.Lock()
	defer col.mu.Unlock()
	col.results = append(col.results, work.Result{Case: c, Data: data})
}

func (col *Collector) OnFlag(c *work.Case, flag string) {
	col.mu.Lock()
	defer col.mu.Unlock()
	col.flags = append(col.flags, FlagEvent{Case: c, Flag: flag})
}

func (col *Collector) OnException(c *work.Case, err error) {
	col.mu.Lock()
	defer col.mu.Unlock()
	col.exceptions = append(col.exceptions, err)
}

// Results returns a copy of the collected results.
func (col *Collector) Results() []work.Result {
	col.mu.Lock()
	defer col.mu.Unlock()
	out := make([]work.Result, len(col.results))
	copy(out, col.results)
	return out
}

// Flags returns a copy of the collected flag events.
func (col *Collector) Flags() []FlagEvent {
	col.mu.Lock()
	defer col.mu.Unlock()
	out := make([]FlagEvent, len(col.flags))
	copy(out, col.flags)
	return out
}

// Exceptions returns a copy of the collected exceptions.
func (col *Collector) Exceptions() []error {
	col.mu.Lock()
	defer col.mu.Unlock()
	out := make([]error, len(col.exceptions))
	copy(out, col.exceptions)
	return out
}
