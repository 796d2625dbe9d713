//go:build !windows

package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid, taking Chrome's
// renderer and GPU helpers down with the browser.
func KillTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}
