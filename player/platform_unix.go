//go:build !windows

package player

import (
	"io"
	"net"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/syncwatch/syncwatch/where"
)

// dialSocket connects to mpv's unix domain IPC socket.
func dialSocket(path string) (io.ReadWriteCloser, error) {
	return net.Dial("unix", path)
}

func socketPath(name string) string {
	return filepath.Join(where.Temp(), name+".sock")
}

func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	// Kill the entire process group
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	return cmd.Process.Kill()
}
