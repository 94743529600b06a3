//go:build !jack
// +build !jack

package jackboot

import (
	"context"
	"os/exec"
)

// DefaultProbe runs `jack_wait -c`, which exits zero when a server is up.
func DefaultProbe(ctx context.Context) bool {
	return exec.CommandContext(ctx, "jack_wait", "-c").Run() == nil
}
