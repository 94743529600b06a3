package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/midisynth/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_FieldsAreTyped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.Info("device connected",
		log.Field().String("device", "USB Keyboard"),
		log.Field().Int("routers", 2),
		log.Field().Duration("interval", 2*time.Second),
		log.Field().Error("error", errors.New("boom")),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["device"] != "USB Keyboard" {
		t.Fatalf("device=%v", ctx["device"])
	}
	if ctx["routers"] != int64(2) {
		t.Fatalf("routers=%v (%T)", ctx["routers"], ctx["routers"])
	}
	if ctx["interval"] != 2*time.Second {
		t.Fatalf("interval=%v", ctx["interval"])
	}
	if ctx["error"] != "boom" {
		t.Fatalf("error=%v", ctx["error"])
	}
}

func TestZapLogger_SetLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.Debug("visible")
	log.SetLevel(contracts.WarnLevel)
	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("visible")
	log.Error("visible")

	if n := logs.FilterMessage("hidden").Len(); n != 0 {
		t.Fatalf("expected hidden messages to be filtered, got %d", n)
	}
	if n := logs.FilterMessage("visible").Len(); n != 3 {
		t.Fatalf("expected 3 visible messages, got %d", n)
	}
}

func TestZapLogger_FileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "midisynth.log")
	log := NewZapLogger()
	log.SetDestination(contracts.FileLog, path)
	log.Info("written to file", log.Field().String("k", "v"))
	log.SetDestination(contracts.ConsoleLog)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "written to file") || !strings.Contains(string(data), `"k":"v"`) {
		t.Fatalf("unexpected log file contents: %s", data)
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Info("nothing", log.Field().Bool("ok", true))
	log.SetLevel(contracts.DebugLevel)
	log.Debug("still nothing")
}
