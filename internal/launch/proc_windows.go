//go:build windows

package launch

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

const detachedFlags = windows.DETACHED_PROCESS | windows.CREATE_NEW_PROCESS_GROUP

// command hands the raw command line to CreateProcess. Go's own argument
// quoting is bypassed so stored options reach the emulator unchanged.
func (p *ProcessInvoker) command(commandLine string) *exec.Cmd {
	name := executableToken(commandLine)
	line := commandLine
	if p.Shell != "" {
		name = p.Shell
		line = p.Shell + " /C " + commandLine
	}

	cmd := exec.Command(name)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine:       line,
		CreationFlags: detachedFlags,
	}
	return cmd
}
