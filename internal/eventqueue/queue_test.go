package eventqueue

import (
	"sync"
	"testing"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

func note(key uint8) contracts.MIDIEvent {
	return contracts.MIDIEvent{Kind: contracts.NoteOn, Key: key, Velocity: 100}
}

func TestQueue_SingleProducerOrder(t *testing.T) {
	q := New()
	for _, k := range []uint8{1, 2, 3} {
		if !q.Send(note(k)) {
			t.Fatalf("send %d rejected", k)
		}
	}
	var got []uint8
	for ev := range q.Drain() {
		got = append(got, ev.Key)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("drained %v, want [1 2 3]", got)
	}
	if q.Len() != 0 {
		t.Fatalf("len=%d after drain", q.Len())
	}
}

func TestQueue_EmptyDoesNotBlock(t *testing.T) {
	q := New()
	if _, ok := q.TryRecv(); ok {
		t.Fatal("TryRecv on empty queue reported an event")
	}
	for range q.Drain() {
		t.Fatal("Drain on empty queue yielded an event")
	}
}

func TestQueue_DrainIsBoundedBySnapshot(t *testing.T) {
	q := New()
	q.Send(note(1))
	q.Send(note(2))

	n := 0
	for range q.Drain() {
		n++
		q.Send(note(uint8(10 + n)))
	}
	if n != 2 {
		t.Fatalf("drain yielded %d events, want 2", n)
	}
	if q.Len() != 2 {
		t.Fatalf("events sent during drain should remain queued, len=%d", q.Len())
	}
}

func TestQueue_DrainStopsEarly(t *testing.T) {
	q := New()
	for k := uint8(0); k < 5; k++ {
		q.Send(note(k))
	}
	for ev := range q.Drain() {
		if ev.Key == 1 {
			break
		}
	}
	ev, ok := q.TryRecv()
	if !ok || ev.Key != 2 {
		t.Fatalf("expected key 2 next, got %+v ok=%v", ev, ok)
	}
}

func TestQueue_ConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	const producers = 8
	const perProducer = 2000

	q := New()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(ch uint8) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Send(contracts.MIDIEvent{Kind: contracts.PitchBend, Channel: ch, Bend: uint16(i)})
			}
		}(uint8(p))
	}

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	received := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	consume := func() {
		for ev := range q.Drain() {
			if int(ev.Bend) <= last[ev.Channel] {
				t.Errorf("producer %d: %d after %d", ev.Channel, ev.Bend, last[ev.Channel])
			}
			last[ev.Channel] = int(ev.Bend)
			received++
		}
	}
	for {
		select {
		case <-done:
			for received < producers*perProducer {
				consume()
			}
			if received != producers*perProducer {
				t.Fatalf("received %d events, want %d", received, producers*perProducer)
			}
			return
		default:
			consume()
		}
	}
}

func TestQueue_CloseDropsLaterSends(t *testing.T) {
	q := New()
	q.Send(note(1))
	q.Close()
	if q.Send(note(2)) {
		t.Fatal("send after close should report false")
	}
	if !q.Closed() || q.Dropped() != 1 {
		t.Fatalf("closed=%v dropped=%d", q.Closed(), q.Dropped())
	}
	ev, ok := q.TryRecv()
	if !ok || ev.Key != 1 {
		t.Fatalf("event queued before close should stay drainable, got %+v ok=%v", ev, ok)
	}
	if _, ok := q.TryRecv(); ok {
		t.Fatal("dropped event was delivered")
	}
}

func TestQueue_TryRecvDoesNotAllocate(t *testing.T) {
	q := New()
	allocs := testing.AllocsPerRun(100, func() {
		_, _ = q.TryRecv()
	})
	if allocs != 0 {
		t.Fatalf("TryRecv allocated %.1f times per call", allocs)
	}
}
