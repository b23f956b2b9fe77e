//go:build windows

package player

import (
	"io"
	"os/exec"
	"syscall"

	"github.com/Microsoft/go-winio"
)

// dialSocket connects to mpv's named pipe in overlapped mode, so the read loop and command
// writes can block at the same time.
func dialSocket(path string) (io.ReadWriteCloser, error) {
	timeout := socketWaitDelay
	return winio.DialPipe(path, &timeout)
}

func socketPath(name string) string {
	return `\\.\pipe\` + name
}

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
