//go:build windows

package browser

import (
	"os"
	"os/exec"
)

func setChromeProcessGroup(cmd *exec.Cmd) {}

// killChromeProcessGroup stops the main process; the browser tears down its
// own children.
func killChromeProcessGroup(cmd *exec.Cmd, force bool) {
	if cmd.Process == nil {
		return
	}
	if force {
		_ = cmd.Process.Kill()
		return
	}
	_ = cmd.Process.Signal(os.Interrupt)
}
