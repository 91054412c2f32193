//go:build !windows

package launch

import (
	"os/exec"
	"syscall"
)

const defaultShell = "/bin/sh"

// command runs the line through the shell in its own process group, so
// signals sent to retroroam's terminal do not reach the emulator.
func (p *ProcessInvoker) command(commandLine string) *exec.Cmd {
	shell := p.Shell
	if shell == "" {
		shell = defaultShell
	}

	cmd := exec.Command(shell, "-c", commandLine)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}
