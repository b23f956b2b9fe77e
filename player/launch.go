package player

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/syncwatch/syncwatch/constant"
	"github.com/syncwatch/syncwatch/log"
)

const quitTimeout = 3 * time.Second

// Process is an mpv instance launched by syncwatch with an IPC server enabled.
type Process struct {
	socket string
	cmd    *exec.Cmd
	exited chan struct{}
}

// NewSocketPath returns a fresh, unique IPC endpoint for a launched mpv.
func NewSocketPath() (string, error) {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	return socketPath(fmt.Sprintf("%s-%x", constant.Syncwatch, randomBytes)), nil
}

// Launch starts executable (normally "mpv") listening on socket. media may be empty, in which
// case mpv idles with a window until something is loaded.
func Launch(executable, media, socket string) (*Process, error) {
	args := []string{
		"--no-terminal",
		fmt.Sprintf("--input-ipc-server=%s", socket),
		"--force-window=yes",
		"--idle=yes",
	}

	if media != "" {
		target, err := sanitizeMediaTarget(media)
		if err != nil {
			return nil, fmt.Errorf("invalid media target: %w", err)
		}
		args = append(args, "--", target)
	}

	cmd := exec.Command(executable, args...)
	// Detach from our process group so a terminal ^C reaches syncwatch, which then quits mpv itself.
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", executable, err)
	}

	p := &Process{socket: socket, cmd: cmd, exited: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.exited)
	}()

	log.Infof("launched %s (pid %d) with ipc socket %s", executable, cmd.Process.Pid, socket)
	return p, nil
}

// Socket returns the IPC endpoint mpv listens on.
func (p *Process) Socket() string {
	return p.socket
}

// Wait returns a channel closed when mpv exits.
func (p *Process) Wait() <-chan struct{} {
	return p.exited
}

// Close waits briefly for mpv to exit on its own, kills it otherwise, and removes the socket.
func (p *Process) Close() error {
	select {
	case <-p.exited:
	case <-time.After(quitTimeout):
		log.Warnf("mpv did not exit within %s, killing it", quitTimeout)
		_ = killProcess(p.cmd)
	}

	if err := os.Remove(p.socket); err != nil && !os.IsNotExist(err) {
		log.Debugf("leaving socket %s behind: %v", p.socket, err)
	}
	return nil
}

// sanitizeMediaTarget validates that a media argument is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty target")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in target")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("target must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}
