//go:build !darwin
// +build !darwin

package mididarwin

import (
	"errors"
	"testing"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

func TestDummyDriver(t *testing.T) {
	drv, err := NewInputDriver(&contracts.ClientOptions{Logger: logger.NewNopLogger()})
	if err != nil {
		t.Fatalf("NewInputDriver: %v", err)
	}
	if _, err := drv.Ports(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Ports err=%v, want ErrUnavailable", err)
	}
	if _, err := drv.Open(contracts.DeviceInfo{Name: "USB Keyboard"}, func([]byte) {}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Open err=%v, want ErrUnavailable", err)
	}
	if err := drv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
