package monitor

import (
	"testing"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

func TestFilter_Match(t *testing.T) {
	f := NewFilter(contracts.DeviceFilter{
		Include: []string{"usb", " Launchkey "},
		Exclude: []string{"Midi Through", "Dummy", ""},
	})
	cases := map[string]bool{
		"USB Keyboard":             true,
		"Roland Digital Piano USB": true,
		"usb midi 1":               true,
		"Launchkey Mini MK3":       true,
		"Midi Through Port-0":      false,
		"USB Dummy Port":           false,
		"IAC Driver Bus 1":         false,
		"":                         false,
	}
	for name, want := range cases {
		if got := f.Match(name); got != want {
			t.Errorf("Match(%q)=%v, want %v", name, got, want)
		}
	}
}

func TestFilter_EmptyIncludeAcceptsAll(t *testing.T) {
	f := NewFilter(contracts.DeviceFilter{Exclude: []string{"through"}})
	if !f.Match("IAC Driver Bus 1") {
		t.Fatal("expected match with empty include list")
	}
	if f.Match("Midi Through Port-0") {
		t.Fatal("excluded name matched")
	}
}
