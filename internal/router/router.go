// Package router connects one MIDI input port to the event queue.
package router

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/leandrodaf/midisynth/internal/eventqueue"
	"github.com/leandrodaf/midisynth/internal/midi/decoder"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// ErrConnect wraps every failure to open a port subscription.
var ErrConnect = errors.New("error connecting to MIDI device")

// Router owns the live subscription of one input device. Every message the
// driver delivers is decoded and, if it is a recognised channel message,
// pushed onto the queue.
type Router struct {
	name     string
	sub      contracts.Subscription
	events   *eventqueue.Queue
	closed   atomic.Bool
	inflight atomic.Int32

	received atomic.Uint64
	decoded  atomic.Uint64
}

// Connect subscribes to port through driver.
func Connect(driver contracts.InputDriver, port contracts.DeviceInfo, events *eventqueue.Queue) (*Router, error) {
	r := &Router{name: port.Name, events: events}
	sub, err := driver.Open(port, r.handle)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrConnect, port.Name, err)
	}
	r.sub = sub
	return r, nil
}

// handle runs on the driver's callback thread.
func (r *Router) handle(msg []byte) {
	r.inflight.Add(1)
	defer r.inflight.Add(-1)
	if r.closed.Load() {
		return
	}
	r.received.Add(1)
	ev, ok := decoder.Decode(msg)
	if !ok {
		return
	}
	r.decoded.Add(1)
	r.events.Send(ev)
}

// Name is the device identity this router serves.
func (r *Router) Name() string {
	return r.name
}

// Received and Decoded count raw messages and the subset that became events.
func (r *Router) Received() uint64 { return r.received.Load() }
func (r *Router) Decoded() uint64  { return r.decoded.Load() }

// Close stops event delivery and closes the subscription. Once Close returns
// no event from this device is enqueued, even if the driver still delivers a
// late callback. Close is idempotent.
func (r *Router) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	err := r.sub.Close()
	// wait out callbacks that passed the closed check before the swap
	for r.inflight.Load() != 0 {
		runtime.Gosched()
	}
	return err
}
