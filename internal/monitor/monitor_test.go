package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/midisynth/internal/eventqueue"
	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/internal/midi/midisim"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var usbOnly = contracts.DeviceFilter{Include: []string{"usb"}, Exclude: []string{"Midi Through"}}

func newMonitor(drv contracts.InputDriver, q *eventqueue.Queue) *Monitor {
	return New(drv, q, logger.NewNopLogger(), Config{Interval: 10 * time.Millisecond, Filter: usbOnly})
}

func TestMonitor_ConvergesOnArrivalAndDeparture(t *testing.T) {
	drv := midisim.New("Midi Through Port-0")
	q := eventqueue.New()
	m := newMonitor(drv, q)

	const arriveAt, departAt = 3, 7
	for cycle := 0; cycle < 10; cycle++ {
		switch cycle {
		case arriveAt:
			drv.SetPorts("Midi Through Port-0", "USB Keyboard")
		case departAt:
			drv.SetPorts("Midi Through Port-0")
		}

		// events emitted before the poll that notices the change
		drv.Emit("USB Keyboard", []byte{0x90, byte(cycle), 100})
		res := m.Poll()

		switch {
		case cycle == arriveAt:
			if len(res.Arrived) != 1 || res.Arrived[0] != "USB Keyboard" {
				t.Fatalf("cycle %d: arrived=%v", cycle, res.Arrived)
			}
		case cycle == departAt:
			if len(res.Departed) != 1 || res.Departed[0] != "USB Keyboard" {
				t.Fatalf("cycle %d: departed=%v", cycle, res.Departed)
			}
		default:
			if len(res.Arrived)+len(res.Departed) != 0 {
				t.Fatalf("cycle %d: unexpected change %+v", cycle, res)
			}
		}

		wantOpen := 0
		if cycle >= arriveAt && cycle < departAt {
			wantOpen = 1
		}
		if got := drv.OpenSubscriptions("USB Keyboard"); got != wantOpen {
			t.Fatalf("cycle %d: %d open subscriptions, want %d", cycle, got, wantOpen)
		}
		if res.Connected != wantOpen {
			t.Fatalf("cycle %d: connected=%d", cycle, res.Connected)
		}
	}

	if drv.OpenSubscriptions("Midi Through Port-0") != 0 {
		t.Fatal("excluded port was connected")
	}

	// Only the emits of cycles arriveAt+1 .. departAt made it: the one at
	// arriveAt precedes the router, those after departAt follow its removal.
	var keys []uint8
	for ev := range q.Drain() {
		keys = append(keys, ev.Key)
	}
	want := []uint8{4, 5, 6, 7}
	if len(keys) != len(want) {
		t.Fatalf("events %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("events %v, want %v", keys, want)
		}
	}
}

func TestMonitor_RetriesFailedConnections(t *testing.T) {
	drv := midisim.New("USB Keyboard")
	drv.FailOpen("USB Keyboard", 2)
	m := newMonitor(drv, eventqueue.New())

	for i := 0; i < 2; i++ {
		res := m.Poll()
		if len(res.Failed) != 1 || res.Connected != 0 {
			t.Fatalf("poll %d: %+v", i, res)
		}
	}
	res := m.Poll()
	if len(res.Arrived) != 1 || res.Connected != 1 || drv.Opens("USB Keyboard") != 1 {
		t.Fatalf("third poll: %+v opens=%d", res, drv.Opens("USB Keyboard"))
	}
}

func TestMonitor_ListFailureKeepsRegistry(t *testing.T) {
	drv := midisim.New("USB Keyboard")
	m := newMonitor(drv, eventqueue.New())
	m.Poll()

	drv.FailList(errors.New("alsa sequencer unavailable"))
	res := m.Poll()
	if res.Err == nil || res.Connected != 1 || len(res.Departed) != 0 {
		t.Fatalf("list failure: %+v", res)
	}
	if drv.OpenSubscriptions("USB Keyboard") != 1 {
		t.Fatal("router dropped on list failure")
	}

	drv.FailList(nil)
	if res := m.Poll(); res.Err != nil || res.Connected != 1 || drv.Opens("USB Keyboard") != 1 {
		t.Fatalf("after recovery: %+v opens=%d", res, drv.Opens("USB Keyboard"))
	}
}

func TestMonitor_DuplicateNamesShareOneRouter(t *testing.T) {
	drv := midisim.New("USB MIDI", "USB MIDI")
	m := newMonitor(drv, eventqueue.New())
	res := m.Poll()
	if len(res.Arrived) != 1 || drv.Opens("USB MIDI") != 1 {
		t.Fatalf("%+v opens=%d", res, drv.Opens("USB MIDI"))
	}
}

func TestMonitor_RunClosesRoutersOnCancel(t *testing.T) {
	drv := midisim.New("USB Keyboard", "USB Pads")
	m := newMonitor(drv, eventqueue.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for drv.OpenSubscriptions("USB Keyboard")+drv.OpenSubscriptions("USB Pads") != 2 {
		if time.Now().After(deadline) {
			t.Fatal("routers not created by Run")
		}
		time.Sleep(5 * time.Millisecond)
	}

	drv.SetPorts("USB Keyboard")
	for drv.OpenSubscriptions("USB Pads") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("departed device not dropped by Run")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if drv.OpenSubscriptions("USB Keyboard") != 0 {
		t.Fatal("router left open after Run returned")
	}
}

func TestMonitor_LogsConnectFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	drv := midisim.New("USB Keyboard")
	drv.FailOpen("USB Keyboard", 1)
	m := New(drv, eventqueue.New(), logger.NewFromZap(zap.New(core)), Config{Filter: usbOnly})

	m.Poll()
	entries := logs.FilterMessage("Failed to connect to MIDI device").All()
	if len(entries) != 1 || entries[0].ContextMap()["device"] != "USB Keyboard" {
		t.Fatalf("entries=%v", entries)
	}
	m.Poll()
	if logs.FilterMessage("MIDI device connected").Len() != 1 {
		t.Fatal("expected a connect log on retry")
	}
}

func TestNew_DefaultInterval(t *testing.T) {
	m := New(midisim.New(), eventqueue.New(), logger.NewNopLogger(), Config{})
	if m.interval != DefaultInterval {
		t.Fatalf("interval=%v", m.interval)
	}
}
