package supervisor

import (
	"os/exec"
	"syscall"
)

// applyChildSysProcAttr places the child in its own process group so a
// SIGINT delivered to the terminal's foreground process group (Ctrl-C)
// reaches only the frontend, never its children (§4.4, §5 Cancellation).
func applyChildSysProcAttr(cmd *exec.Cmd) error {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return nil
}

// killGroup sends sig to the process group rooted at pid, matching the
// Setpgid above (pid == pgid for a group leader).
func killGroup(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return nil
	}
	return syscall.Kill(-pid, sig)
}
