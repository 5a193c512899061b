//go:build !windows

package browser

import (
	"os/exec"
	"syscall"
)

// setChromeProcessGroup puts the browser and its renderers in one process
// group so they stop together.
func setChromeProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killChromeProcessGroup signals the whole group: SIGTERM, or SIGKILL when
// force is set.
func killChromeProcessGroup(cmd *exec.Cmd, force bool) {
	if cmd.Process == nil {
		return
	}
	sig := syscall.SIGTERM
	if force {
		sig = syscall.SIGKILL
	}
	_ = syscall.Kill(-cmd.Process.Pid, sig)
}
