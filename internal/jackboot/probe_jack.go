//go:build jack
// +build jack

package jackboot

import (
	"context"

	"github.com/xthexder/go-jack"
)

// DefaultProbe opens a throw-away client without starting a server.
func DefaultProbe(context.Context) bool {
	client, status := jack.ClientOpen("midisynth-probe", jack.NoStartServer)
	if status != 0 || client == nil {
		return false
	}
	client.Close()
	return true
}
