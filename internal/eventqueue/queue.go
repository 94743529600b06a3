// Package eventqueue is the hand-off between MIDI input callbacks and the
// render thread: an unbounded multi-producer, single-consumer FIFO that never
// blocks either side.
package eventqueue

import (
	"iter"
	"sync/atomic"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

type node struct {
	next atomic.Pointer[node]
	ev   contracts.MIDIEvent
}

// Queue is an intrusive linked MPSC queue. Any number of goroutines may call
// Send concurrently; TryRecv and Drain must only be called from one goroutine
// at a time.
//
// Events from one producer keep their relative order. Events from different
// producers interleave in the order their Send calls linearize.
type Queue struct {
	head    atomic.Pointer[node] // most recently pushed node, producers only
	tail    *node                // consumed sentinel, consumer only
	length  atomic.Int64
	closed  atomic.Bool
	dropped atomic.Uint64
}

// New returns an empty queue.
func New() *Queue {
	q := &Queue{}
	stub := &node{}
	q.head.Store(stub)
	q.tail = stub
	return q
}

// Send enqueues ev. It never blocks. After Close the event is dropped and
// Send reports false.
func (q *Queue) Send(ev contracts.MIDIEvent) bool {
	if q.closed.Load() {
		q.dropped.Add(1)
		return false
	}
	n := &node{ev: ev}
	prev := q.head.Swap(n)
	q.length.Add(1)
	// Until this store lands the consumer sees the queue end at prev and
	// simply picks n up on a later call.
	prev.next.Store(n)
	return true
}

// TryRecv dequeues the oldest available event without blocking.
func (q *Queue) TryRecv() (contracts.MIDIEvent, bool) {
	next := q.tail.next.Load()
	if next == nil {
		return contracts.MIDIEvent{}, false
	}
	q.tail = next
	ev := next.ev
	next.ev = contracts.MIDIEvent{}
	q.length.Add(-1)
	return ev, true
}

// Drain yields the events queued at the time of the call, oldest first.
// Events sent while draining are left for the next call, so the sequence is
// always finite.
func (q *Queue) Drain() iter.Seq[contracts.MIDIEvent] {
	return func(yield func(contracts.MIDIEvent) bool) {
		for budget := q.length.Load(); budget > 0; budget-- {
			ev, ok := q.TryRecv()
			if !ok || !yield(ev) {
				return
			}
		}
	}
}

// Len reports the number of queued events. It is a snapshot and may be
// stale by the time it returns.
func (q *Queue) Len() int {
	return int(q.length.Load())
}

// Close makes every later Send a silent drop. Queued events stay drainable.
func (q *Queue) Close() {
	q.closed.Store(true)
}

// Closed reports whether Close was called.
func (q *Queue) Closed() bool {
	return q.closed.Load()
}

// Dropped returns how many events were discarded by Send after Close.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
