package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/syncwatch/syncwatch/config"
	"github.com/syncwatch/syncwatch/constant"
	"github.com/syncwatch/syncwatch/echo"
	"github.com/syncwatch/syncwatch/log"
	"github.com/syncwatch/syncwatch/room"
)

// initialPending absorbs the notification mpv fires as soon as the pause observer is registered.
const initialPending = 1

// Dialer connects to the relay and joins the room. onEvent runs on the transport's own goroutine.
type Dialer func(ctx context.Context, s config.Settings, onEvent func(room.Event)) (Transport, error)

// Start runs a whole session against host: it optionally enables synchronization, connects to
// the relay and dispatches mpv events until mpv shuts down or ctx is cancelled.
// Only the relay connection can fail it.
func Start(ctx context.Context, host Host, s config.Settings, dial Dialer) error {
	id := uuid.NewString()
	entry := log.WithField("session", id)
	entry.Infof("starting syncwatch [%s] in room %s", s.Name, s.RoomName)

	c := NewController(host, echo.NewSuppressor(initialPending), s.RoomName)

	binding := "script-message " + strings.Join(constant.ToggleBinding, " ")
	if err := host.Keybind(s.ToggleKey, binding); err != nil {
		entry.Warnf("bind %s to toggle: %v", s.ToggleKey, err)
	}

	if s.EnableOnStart {
		if err := c.Enable(); err != nil {
			entry.Errorf("enable on start: %v", err)
		}
	}

	conn, err := dial(ctx, s, c.ApplyRemote)
	if err != nil {
		return fmt.Errorf("unrecoverable error in session [%s]: %w", s.Name, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			entry.Warnf("close relay connection: %v", err)
		}
	}()
	c.Attach(conn)

	Run(ctx, host, c)

	entry.Infof("closing syncwatch [%s]", s.Name)
	return nil
}
