//go:build windows

package supervisor

import (
	"os/exec"
)

func setSysProcAttr(cmd *exec.Cmd) {}

// terminateProcess kills the process. Windows has no SIGTERM equivalent for
// console-less children.
func terminateProcess(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func forceKillProcess(cmd *exec.Cmd) {
	terminateProcess(cmd)
}
