//go:build !windows

// Package process manages child-process lifetime for external tools.
// The Mermaid CLI spawns its own headless Chrome, so timeouts must kill
// the whole process group, not just the direct child.
package process

import (
	"os/exec"
	"syscall"
)

// SetGroup places the command in its own process group so KillGroup can
// reach grandchildren.
func SetGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// KillGroup sends SIGKILL to the command's process group (negative PID).
func KillGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
