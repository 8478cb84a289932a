//go:build windows

package runner

import (
	"os/exec"
	"time"
)

const waitDelay = 5 * time.Second

// killGroupOnCancel only bounds Wait on Windows. There are no Unix process
// groups, so cancellation falls back to killing the direct child.
func killGroupOnCancel(cmd *exec.Cmd) {
	cmd.WaitDelay = waitDelay
}
