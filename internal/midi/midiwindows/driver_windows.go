//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/leandrodaf/midisynth/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

// Error definitions for winmm failures.
var (
	ErrPortNotFound = errors.New("MIDI input not found")
	ErrOpenFailed   = errors.New("failed to open MIDI device")
	ErrStartFailed  = errors.New("failed to start MIDI input")
	ErrCloseFailed  = errors.New("failed to close MIDI device")
)

// Struct representing MIDI device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInReset      = winmm.NewProc("midiInReset")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// winmm hands the callback an opaque instance word. Subscriptions are looked
// up by a counter value instead of a Go pointer so nothing the GC tracks is
// smuggled through C.
var (
	callbackOnce  sync.Once
	callbackPtr   uintptr
	subscriptions sync.Map // uintptr -> *subscription
	nextID        atomic.Uintptr
)

// Driver lists and opens winmm MIDI inputs.
type Driver struct {
	logger contracts.Logger
}

// NewInputDriver creates a winmm input driver.
func NewInputDriver(options *contracts.ClientOptions) (contracts.InputDriver, error) {
	callbackOnce.Do(func() {
		callbackPtr = windows.NewCallback(midiInCallback)
	})
	options.Logger.Debug("winmm MIDI driver created")
	return &Driver{logger: options.Logger}, nil
}

// Ports lists the winmm MIDI inputs. Device IDs are positional and change
// when devices are added or removed.
func (d *Driver) Ports() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)

	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			d.logger.Warn("Failed to get information for MIDI device",
				d.logger.Field().Int("deviceID", int(i)),
				d.logger.Field().Uint64("mmresult", uint64(r1)))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			ID:           int(i),
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

// Open resolves port.Name to its current device ID, opens it and starts
// input.
func (d *Driver) Open(port contracts.DeviceInfo, handler contracts.MessageHandler) (contracts.Subscription, error) {
	ports, err := d.Ports()
	if err != nil {
		return nil, err
	}
	deviceID := -1
	for _, p := range ports {
		if p.Name == port.Name {
			deviceID = p.ID
			break
		}
	}
	if deviceID < 0 {
		return nil, fmt.Errorf("%w: %q", ErrPortNotFound, port.Name)
	}

	s := &subscription{id: nextID.Add(1), handler: handler, logger: d.logger}
	subscriptions.Store(s.id, s)

	r1, _, _ := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&s.handle)),
		uintptr(deviceID),
		callbackPtr,
		s.id,
		uintptr(CALLBACK_FUNCTION),
	)
	if r1 != 0 {
		subscriptions.Delete(s.id)
		return nil, fmt.Errorf("%w %q: mmresult %d", ErrOpenFailed, port.Name, r1)
	}

	r1, _, _ = procMidiInStart.Call(uintptr(s.handle))
	if r1 != 0 {
		procMidiInClose.Call(uintptr(s.handle))
		subscriptions.Delete(s.id)
		return nil, fmt.Errorf("%w %q: mmresult %d", ErrStartFailed, port.Name, r1)
	}
	return s, nil
}

// Close is a no-op; winmm needs no driver-wide teardown.
func (d *Driver) Close() error {
	return nil
}

type subscription struct {
	id      uintptr
	handle  HMIDIIN
	handler contracts.MessageHandler
	logger  contracts.Logger
	once    sync.Once
}

// midiInCallback runs on a winmm thread. It must not call back into midiIn*.
func midiInCallback(hMidiIn uintptr, wMsg uintptr, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	v, ok := subscriptions.Load(dwInstance)
	if !ok {
		return 0
	}
	s := v.(*subscription)

	switch wMsg {
	case MIM_DATA:
		var buf [3]byte
		if msg, ok := unpackShort(dwParam1, &buf); ok {
			s.handler(msg)
		}
	case MIM_ERROR, MIM_LONGERROR:
		s.logger.Debug("Invalid MIDI input received",
			s.logger.Field().Uint64("msg", uint64(wMsg)),
			s.logger.Field().Uint64("data", uint64(dwParam1)))
	}
	return 0
}

// Close stops input, flushes pending buffers and closes the device handle.
// The subscription leaves the registry first so callbacks that arrive during
// teardown are dropped.
func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		subscriptions.Delete(s.id)
		procMidiInStop.Call(uintptr(s.handle))
		procMidiInReset.Call(uintptr(s.handle))
		if r1, _, _ := procMidiInClose.Call(uintptr(s.handle)); r1 != 0 {
			err = fmt.Errorf("%w: mmresult %d", ErrCloseFailed, r1)
		}
	})
	return err
}
