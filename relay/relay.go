// Package relay connects syncwatch to the room relay service.
//
// The relay speaks Socket.IO over a websocket. A player joins a room with a "join" event and then
// exchanges room events as "message" events; the relay forwards every message to the other
// players in the room.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/syncwatch/syncwatch/constant"
	"github.com/syncwatch/syncwatch/log"
	"github.com/syncwatch/syncwatch/room"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SettleDelay separates the reported connect from the join emit. Socket.IO servers silently drop
// events that arrive before they finish registering a freshly connected socket, so the join must
// not be sent straight away.
const SettleDelay = 500 * time.Millisecond

type options struct {
	clock   clockwork.Clock
	timeout time.Duration
}

// Option customizes ConnectAndJoin.
type Option func(*options)

// WithClock replaces the clock that times the settling delay.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithTimeout replaces ConnectTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Connection is a joined room session.
type Connection struct {
	socket *socket.Socket
	name   string
	room   string

	// onEvent is never called concurrently; the client dispatches packets on separate goroutines.
	recv sync.Mutex

	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
}

// ConnectAndJoin connects to serverURL, waits SettleDelay and joins roomName as name.
// onEvent receives every well-formed room event, one at a time.
// Any failure before the join has been sent is returned.
func ConnectAndJoin(ctx context.Context, serverURL, name, roomName string, onEvent func(room.Event), opts ...Option) (*Connection, error) {
	o := options{
		clock:   clockwork.NewRealClock(),
		timeout: ConnectTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	sock, err := newSocket(serverURL, o.timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to relay %s: %w", serverURL, err)
	}

	c := &Connection{
		socket: sock,
		name:   name,
		room:   roomName,
		done:   make(chan struct{}),
	}

	connected := make(chan struct{})
	var connectedOnce sync.Once
	failed := make(chan error, 1)

	_ = sock.On(eventConnect, func(...any) {
		connectedOnce.Do(func() { close(connected) })
	})
	_ = sock.On(eventConnectError, func(args ...any) {
		select {
		case failed <- connectError(args):
		default:
		}
	})
	_ = sock.On(eventDisconnect, func(args ...any) {
		log.Infof("relay disconnected: %s", disconnectReason(args))
		c.markDone()
	})
	_ = sock.On(constant.EventMessage, c.messageHandler(onEvent))

	sock.Connect()

	select {
	case <-connected:
	case err := <-failed:
		sock.Disconnect()
		return nil, fmt.Errorf("connect to relay %s: %w", serverURL, err)
	case <-ctx.Done():
		sock.Disconnect()
		return nil, ctx.Err()
	}

	log.Debugf("relay connected, waiting %s before joining", SettleDelay)
	o.clock.Sleep(SettleDelay)

	select {
	case <-c.done:
		return nil, fmt.Errorf("join room %s: %w", roomName, ErrClosed)
	default:
	}

	if err := sock.Emit(constant.EventJoin, room.Join{Name: name, Room: roomName}); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("join room %s: %w", roomName, err)
	}

	log.WithField("sid", sock.Id()).Infof("joined room %s as %s", roomName, name)
	return c, nil
}

// messageHandler is the receive path: it filters out anything that is not a single decodable
// room event and hands the rest to onEvent. Nothing it rejects is fatal.
func (c *Connection) messageHandler(onEvent func(room.Event)) func(...any) {
	return func(args ...any) {
		if hasBinary(args) {
			log.Warn("dropping binary room message")
			return
		}
		if len(args) == 0 {
			log.Warn("dropping empty room message")
			return
		}

		data, err := json.Marshal(args[0])
		if err != nil {
			log.Warnf("dropping unencodable room message: %v", err)
			return
		}

		ev, err := room.Decode(data)
		if err != nil {
			log.Warnf("dropping undecodable room message: %v", err)
			return
		}

		log.Tracef("received %s", ev)

		c.recv.Lock()
		defer c.recv.Unlock()
		onEvent(ev)
	}
}

func (c *Connection) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Send emits a room event to the other players.
func (c *Connection) Send(ev room.Event) error {
	data, err := ev.Encode()
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	log.Tracef("emitting %s", ev)
	return c.socket.Emit(constant.EventMessage, data)
}

// Room returns the joined room name.
func (c *Connection) Room() string {
	return c.room
}

// Name returns the display name announced on join.
func (c *Connection) Name() string {
	return c.name
}

// Done is closed when the relay connection ends.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Close leaves the room and closes the connection.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.socket.Disconnect()
		c.markDone()
	})
	return nil
}
