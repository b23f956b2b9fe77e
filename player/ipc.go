package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syncwatch/syncwatch/log"
)

// ErrClosed is returned by commands issued after the IPC connection went away.
var ErrClosed = errors.New("mpv ipc connection closed")

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	commandTimeout    = 5 * time.Second
)

// ipcRequest is the JSON structure sent to mpv's IPC socket.
type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is any line mpv writes back: a reply when Event is empty, an event otherwise.
type ipcMessage struct {
	RequestID int64    `json:"request_id"`
	Error     string   `json:"error"`
	Data      any      `json:"data"`
	Event     string   `json:"event"`
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	Args      []string `json:"args"`
}

// IPC is a client for one mpv JSON-IPC connection. It is safe for concurrent use, except that
// WaitEvent expects a single caller.
type IPC struct {
	conn    io.ReadWriteCloser
	timeout time.Duration

	writeMu sync.Mutex
	nextID  atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan ipcMessage
	queue   []Event
	err     error

	notify chan struct{}
	done   chan struct{}
}

// Dial connects to the IPC socket at path, retrying while mpv is still starting up.
func Dial(path string) (*IPC, error) {
	var lastErr error
	for attempt := 0; attempt < socketWaitRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(socketWaitDelay)
		}

		conn, err := dialSocket(path)
		if err == nil {
			log.Debugf("attached to mpv ipc socket %s", path)
			return NewIPC(conn), nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("mpv socket %s not ready after %d attempts: %w", path, socketWaitRetries, lastErr)
}

// NewIPC wraps an established connection and starts reading from it.
func NewIPC(conn io.ReadWriteCloser) *IPC {
	c := &IPC{
		conn:    conn,
		timeout: commandTimeout,
		pending: make(map[int64]chan ipcMessage),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// readLoop routes replies to their waiting command and queues everything else.
// mpv writes newline-delimited JSON.
func (c *IPC) readLoop() {
	r := bufio.NewReader(c.conn)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			c.dispatch(line)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warnf("mpv ipc read error: %v", err)
			}
			c.shutdown(err)
			return
		}
	}
}

func (c *IPC) dispatch(line []byte) {
	var msg ipcMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		log.Debugf("skipping unparseable mpv ipc line: %v", err)
		return
	}

	if msg.Event == "" {
		c.mu.Lock()
		ch, ok := c.pending[msg.RequestID]
		delete(c.pending, msg.RequestID)
		c.mu.Unlock()

		if ok {
			ch <- msg
		}
		return
	}

	ev := Event{Name: msg.Event}
	switch msg.Event {
	case "shutdown":
		ev.Kind = EventShutdown
	case "property-change":
		ev.Kind = EventPropertyChange
		ev.Name = msg.Name
		ev.ID = msg.ID
		ev.Data = msg.Data
	case "client-message":
		ev.Kind = EventClientMessage
		ev.Args = msg.Args
	}

	c.mu.Lock()
	c.queue = append(c.queue, ev)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *IPC) shutdown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
	}

	c.err = err
	close(c.done)
}

// WaitEvent blocks until mpv delivers an event. Once the connection is gone or ctx is done it
// returns an EventShutdown; events already queued are delivered first.
func (c *IPC) WaitEvent(ctx context.Context) Event {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			ev := c.queue[0]
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return ev
		}
		c.mu.Unlock()

		select {
		case <-c.notify:
		case <-ctx.Done():
			return Event{Kind: EventShutdown, Name: "cancelled"}
		case <-c.done:
			c.mu.Lock()
			empty := len(c.queue) == 0
			c.mu.Unlock()
			if empty {
				return Event{Kind: EventShutdown, Name: "disconnected"}
			}
		}
	}
}

// Done is closed when the connection to mpv is lost.
func (c *IPC) Done() <-chan struct{} {
	return c.done
}

// Command sends a raw mpv command and returns its data.
func (c *IPC) Command(args ...any) (any, error) {
	id := c.nextID.Add(1)
	reply := make(chan ipcMessage, 1)

	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		return nil, ErrClosed
	default:
	}
	c.pending[id] = reply
	c.mu.Unlock()

	payload, err := json.Marshal(ipcRequest{Command: args, RequestID: id})
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("marshal: %w", err)
	}

	c.writeMu.Lock()
	_, err = c.conn.Write(append(payload, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("write: %w", err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case msg := <-reply:
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], msg.Error)
		}
		return msg.Data, nil
	case <-c.done:
		return nil, ErrClosed
	case <-timer.C:
		c.forget(id)
		return nil, fmt.Errorf("mpv %v: no reply after %s", args[0], c.timeout)
	}
}

func (c *IPC) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Get returns the raw value of a property.
func (c *IPC) Get(name string) (any, error) {
	return c.Command("get_property", name)
}

// GetFloat returns a numeric property such as time-pos.
func (c *IPC) GetFloat(name string) (float64, error) {
	data, err := c.Get(name)
	if err != nil {
		return 0, err
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected number, got %T", name, data)
	}
	return val, nil
}

// GetBool returns a flag property such as pause.
func (c *IPC) GetBool(name string) (bool, error) {
	data, err := c.Get(name)
	if err != nil {
		return false, err
	}

	val, ok := data.(bool)
	if !ok {
		return false, fmt.Errorf("property %s: expected bool, got %T", name, data)
	}
	return val, nil
}

// Set writes a property.
func (c *IPC) Set(name string, value any) error {
	_, err := c.Command("set_property", name, value)
	return err
}

// ObserveProperty asks mpv to report changes of name tagged with id.
// mpv reports the current value once right after registration.
func (c *IPC) ObserveProperty(id uint64, name string) error {
	_, err := c.Command("observe_property", id, name)
	return err
}

// UnobserveProperty stops the observer registered under id.
func (c *IPC) UnobserveProperty(id uint64) error {
	_, err := c.Command("unobserve_property", id)
	return err
}

// ShowText displays a transient OSD message.
func (c *IPC) ShowText(text string, d time.Duration) error {
	_, err := c.Command("show-text", text, d.Milliseconds())
	return err
}

// Keybind binds key to an input command for the lifetime of the mpv instance.
func (c *IPC) Keybind(key, command string) error {
	_, err := c.Command("keybind", key, command)
	return err
}

// Quit asks mpv to exit.
func (c *IPC) Quit() error {
	_, err := c.Command("quit")
	return err
}

// Close drops the connection. mpv keeps running.
func (c *IPC) Close() error {
	err := c.conn.Close()
	c.shutdown(ErrClosed)
	return err
}
