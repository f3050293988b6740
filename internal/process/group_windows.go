//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// SetGroup is a no-op on Windows; KillGroup uses taskkill's tree mode
// instead of process groups.
func SetGroup(cmd *exec.Cmd) {}

// KillGroup kills the command and all its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(cmd.Process.Pid)).Run()
}
