// Package midisim is an in-memory contracts.InputDriver. Ports appear and
// disappear when told to, and messages are injected by name, which makes
// hot-plug behaviour reproducible without hardware.
package midisim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// ErrPortNotFound is returned by Open for a name that is not currently present.
var ErrPortNotFound = errors.New("port not found")

// Driver is a simulated input driver. It is safe for concurrent use.
type Driver struct {
	mu       sync.Mutex
	ports    []string
	subs     map[string][]*subscription
	failOpen map[string]int
	listErr  error
	opens    map[string]int
	closed   bool
}

// New returns a driver with the given ports present.
func New(ports ...string) *Driver {
	return &Driver{
		ports:    append([]string(nil), ports...),
		subs:     map[string][]*subscription{},
		failOpen: map[string]int{},
		opens:    map[string]int{},
	}
}

// SetPorts replaces the set of present ports. Subscriptions to removed ports
// stay open until their owner closes them, like a real driver whose device
// was yanked.
func (d *Driver) SetPorts(ports ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ports = append([]string(nil), ports...)
}

// FailOpen makes the next n Open calls for name fail.
func (d *Driver) FailOpen(name string, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failOpen[name] = n
}

// FailList makes Ports return err until called again with nil.
func (d *Driver) FailList(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listErr = err
}

// Ports implements contracts.InputDriver.
func (d *Driver) Ports() ([]contracts.DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listErr != nil {
		return nil, d.listErr
	}
	out := make([]contracts.DeviceInfo, len(d.ports))
	for i, name := range d.ports {
		out[i] = contracts.DeviceInfo{ID: i, Name: name, EntityName: name, Manufacturer: "midisim"}
	}
	return out, nil
}

// Open implements contracts.InputDriver.
func (d *Driver) Open(port contracts.DeviceInfo, handler contracts.MessageHandler) (contracts.Subscription, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errors.New("driver closed")
	}
	if n := d.failOpen[port.Name]; n > 0 {
		d.failOpen[port.Name] = n - 1
		return nil, fmt.Errorf("simulated open failure for %q", port.Name)
	}
	present := false
	for _, p := range d.ports {
		if p == port.Name {
			present = true
			break
		}
	}
	if !present {
		return nil, fmt.Errorf("%w: %s", ErrPortNotFound, port.Name)
	}
	s := &subscription{driver: d, name: port.Name, handler: handler}
	d.subs[port.Name] = append(d.subs[port.Name], s)
	d.opens[port.Name]++
	return s, nil
}

// Close implements contracts.InputDriver.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Closed reports whether Close was called.
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Emit delivers msg to every open subscription for name, synchronously, and
// reports how many handlers received it.
func (d *Driver) Emit(name string, msg []byte) int {
	d.mu.Lock()
	handlers := make([]contracts.MessageHandler, 0, len(d.subs[name]))
	for _, s := range d.subs[name] {
		handlers = append(handlers, s.handler)
	}
	d.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
	return len(handlers)
}

// OpenSubscriptions reports the number of open subscriptions for name.
func (d *Driver) OpenSubscriptions(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs[name])
}

// Opens reports how many times name was successfully opened.
func (d *Driver) Opens(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens[name]
}

type subscription struct {
	driver  *Driver
	name    string
	handler contracts.MessageHandler
}

func (s *subscription) Close() error {
	d := s.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.subs[s.name]
	for i, other := range list {
		if other == s {
			d.subs[s.name] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}
