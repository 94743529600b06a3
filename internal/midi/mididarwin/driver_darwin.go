//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midisynth/internal/midi/packet"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrPortNotFound        = errors.New("MIDI source not found")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// Driver lists and opens CoreMIDI sources. Every subscription gets its own
// input port so one device can be disconnected without touching the others.
type Driver struct {
	logger     contracts.Logger
	client     coremidi.Client
	clientName string
}

// NewInputDriver registers a CoreMIDI client under the configured name.
func NewInputDriver(options *contracts.ClientOptions) (contracts.InputDriver, error) {
	client, err := coremidi.NewClient(options.DriverConfig.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Debug("CoreMIDI client created",
		options.Logger.Field().String("clientName", options.DriverConfig.ClientName))

	return &Driver{
		logger:     options.Logger,
		client:     client,
		clientName: options.DriverConfig.ClientName,
	}, nil
}

// Ports returns the CoreMIDI sources present right now. An empty list is not
// an error: devices may be plugged in later.
func (d *Driver) Ports() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			ID:           i,
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// Open connects handler to the source named port.Name. Source indexes shift
// when devices come and go, so the source is looked up by name.
func (d *Driver) Open(port contracts.DeviceInfo, handler contracts.MessageHandler) (contracts.Subscription, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error retrieving MIDI sources: %w", err)
	}

	var (
		source coremidi.Source
		found  bool
	)
	for _, s := range sources {
		if s.Name() == port.Name {
			source, found = s, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrPortNotFound, port.Name)
	}

	sub := &subscription{handler: handler}
	inputPort, err := coremidi.NewInputPort(d.client, d.clientName+" "+port.Name, sub.receive)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	conn, err := inputPort.Connect(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}
	sub.conn = conn
	return sub, nil
}

// Close is a no-op: go-coremidi does not expose client disposal. Open
// subscriptions are closed by their owners.
func (d *Driver) Close() error {
	return nil
}

type subscription struct {
	handler contracts.MessageHandler

	mu     sync.Mutex // Serialises delivery against Close.
	conn   internalPortConnection
	closed bool
}

// receive runs on the CoreMIDI thread. A packet may carry several messages.
func (s *subscription) receive(_ coremidi.Source, p coremidi.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	packet.Split(p.Data, s.handler)
}

// Close stops delivery before disconnecting. Disconnect runs outside the
// lock because CoreMIDI may wait for a callback that is blocked on it.
func (s *subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		conn.Disconnect()
	}
	return nil
}
