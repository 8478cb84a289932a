//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
	"time"
)

// waitDelay bounds how long Wait blocks on output pipes held open by
// descendants after the child itself has exited or been killed.
const waitDelay = 5 * time.Second

// killGroupOnCancel starts the child as the leader of a new process group.
// When the command's context ends the whole group receives SIGKILL, so
// interpreters that fork workers do not outlive a timeout.
func killGroupOnCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay
}
