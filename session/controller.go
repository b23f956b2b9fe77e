// Package session runs a syncwatch session: it mirrors pause changes between mpv and the room.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/mo"
	"github.com/syncwatch/syncwatch/echo"
	"github.com/syncwatch/syncwatch/log"
	"github.com/syncwatch/syncwatch/player"
	"github.com/syncwatch/syncwatch/room"
)

const (
	// PausePropertyID tags the pause observer so its notifications can be recognised.
	PausePropertyID uint64 = 1

	propertyPause   = "pause"
	propertyTimePos = "time-pos"

	osdDuration = 2 * time.Second
)

// Host is the subset of mpv the session drives.
type Host interface {
	GetFloat(name string) (float64, error)
	GetBool(name string) (bool, error)
	Set(name string, value any) error
	ObserveProperty(id uint64, name string) error
	UnobserveProperty(id uint64) error
	ShowText(text string, d time.Duration) error
	Keybind(key, command string) error
	WaitEvent(ctx context.Context) player.Event
}

// Transport carries local room events to the relay.
type Transport interface {
	Send(ev room.Event) error
	Close() error
}

// Controller owns the enabled state and decides which pause changes reach the room.
//
// Enable, Disable, Toggle and HandlePauseChange run on the dispatch loop. ApplyRemote runs on
// the transport's receive goroutine; the two sides meet only in the suppressor.
type Controller struct {
	host     Host
	echo     *echo.Suppressor
	roomName string

	// enabled flips only once mpv has accepted the observe or unobserve, so ApplyRemote never
	// expects a notification from an observer that does not exist.
	enabled    atomic.Bool
	transition sync.Mutex
	conn       mo.Option[Transport]
}

// NewController returns a disabled controller for roomName.
func NewController(host Host, suppressor *echo.Suppressor, roomName string) *Controller {
	return &Controller{
		host:     host,
		echo:     suppressor,
		roomName: roomName,
		conn:     mo.None[Transport](),
	}
}

// Attach hands the controller its relay connection. Call it once, before the dispatch loop starts.
func (c *Controller) Attach(conn Transport) {
	c.conn = mo.Some(conn)
}

// Enabled reports whether pause changes are being observed.
func (c *Controller) Enabled() bool {
	return c.enabled.Load()
}

// Enable starts observing mpv's pause state.
func (c *Controller) Enable() error {
	log.Tracef("enabling syncwatch")
	c.transition.Lock()
	defer c.transition.Unlock()

	if c.Enabled() {
		return nil
	}

	if err := c.host.ObserveProperty(PausePropertyID, propertyPause); err != nil {
		return fmt.Errorf("observe %s: %w", propertyPause, err)
	}
	c.enabled.Store(true)

	return c.notify("syncwatch enabled")
}

// Disable stops observing mpv's pause state.
func (c *Controller) Disable() error {
	log.Tracef("disabling syncwatch")
	c.transition.Lock()
	defer c.transition.Unlock()

	if !c.Enabled() {
		return nil
	}

	if err := c.host.UnobserveProperty(PausePropertyID); err != nil {
		return fmt.Errorf("unobserve %s: %w", propertyPause, err)
	}
	c.enabled.Store(false)

	return c.notify("syncwatch disabled")
}

// Toggle flips between enabled and disabled.
func (c *Controller) Toggle() error {
	if c.Enabled() {
		return c.Disable()
	}
	return c.Enable()
}

func (c *Controller) notify(text string) error {
	log.Info(text)
	if err := c.host.ShowText(text, osdDuration); err != nil {
		return fmt.Errorf("show %q: %w", text, err)
	}
	return nil
}

// HandlePauseChange forwards a pause change to the room unless it was caused by a remote event.
func (c *Controller) HandlePauseChange(paused bool) error {
	log.Tracef("pause state changed: %t", paused)

	if c.echo.TryConsume() {
		log.Tracef("ignoring self-inflicted pause change")
		return nil
	}

	pos, err := c.host.GetFloat(propertyTimePos)
	if err != nil {
		return fmt.Errorf("read %s: %w", propertyTimePos, err)
	}

	conn, ok := c.conn.Get()
	if !ok {
		log.Warn("no relay connection, pause change not forwarded")
		return nil
	}

	// mpv may report a slightly negative position right after a seek to the start.
	ev := room.New(c.roomName, room.PauseState(paused), max(pos, 0), 0)
	if err := conn.Send(ev); err != nil {
		return fmt.Errorf("send %s event: %w", ev.Type, err)
	}
	return nil
}

// ApplyRemote moves mpv to the state described by a room event.
// The suppressor is charged before the pause write so the resulting notification is swallowed.
func (c *Controller) ApplyRemote(ev room.Event) {
	log.Debugf("applying %s", ev)

	if err := c.host.Set(propertyTimePos, ev.CurrentTime); err != nil {
		log.Warnf("seek to %.3f: %v", ev.CurrentTime, err)
	}

	paused := ev.Paused()

	// mpv only notifies observers of actual changes, and nobody observes while disabled.
	expectNotification := c.Enabled()
	if expectNotification {
		if current, err := c.host.GetBool(propertyPause); err == nil && current == paused {
			expectNotification = false
		}
	}

	if expectNotification {
		c.echo.Absorb()
	}

	if err := c.host.Set(propertyPause, paused); err != nil {
		log.Warnf("set pause=%t: %v", paused, err)
		if expectNotification {
			c.echo.TryConsume()
		}
	}
}
