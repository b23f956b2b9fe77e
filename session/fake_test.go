package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/syncwatch/syncwatch/echo"
	"github.com/syncwatch/syncwatch/player"
	"github.com/syncwatch/syncwatch/room"
)

// fakeHost behaves like mpv: observers hear about real pause changes only, and registering an
// observer reports the current value once.
type fakeHost struct {
	mu       sync.Mutex
	props    map[string]any
	observed bool
	observes int
	osd      []string
	binds    map[string]string
	failSet  map[string]error
	failGet  map[string]error

	// echo, when set, is sampled at every pause write to check ordering.
	echo            *echo.Suppressor
	pendingAtPauses []uint32

	events chan player.Event
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		props:   map[string]any{"pause": false, "time-pos": 0.0},
		binds:   map[string]string{},
		failSet: map[string]error{},
		failGet: map[string]error{},
		events:  make(chan player.Event, 64),
	}
}

func (h *fakeHost) GetFloat(name string) (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.failGet[name]; err != nil {
		return 0, err
	}
	return h.props[name].(float64), nil
}

func (h *fakeHost) GetBool(name string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.failGet[name]; err != nil {
		return false, err
	}
	return h.props[name].(bool), nil
}

func (h *fakeHost) Set(name string, value any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.failSet[name]; err != nil {
		return err
	}
	if name == "pause" && h.echo != nil {
		h.pendingAtPauses = append(h.pendingAtPauses, h.echo.Pending())
	}
	h.setLocked(name, value)
	return nil
}

// userSet simulates the user changing a property in the mpv window.
func (h *fakeHost) userSet(name string, value any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setLocked(name, value)
}

func (h *fakeHost) setLocked(name string, value any) {
	changed := h.props[name] != value
	h.props[name] = value
	if name == "pause" && changed && h.observed {
		h.events <- player.Event{Kind: player.EventPropertyChange, Name: name, ID: PausePropertyID, Data: value}
	}
}

func (h *fakeHost) ObserveProperty(id uint64, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.failSet["observe"]; err != nil {
		return err
	}
	h.observed = true
	h.observes++
	h.events <- player.Event{Kind: player.EventPropertyChange, Name: name, ID: id, Data: h.props[name]}
	return nil
}

func (h *fakeHost) UnobserveProperty(uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observed = false
	return nil
}

func (h *fakeHost) ShowText(text string, _ time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.osd = append(h.osd, text)
	return nil
}

func (h *fakeHost) Keybind(key, command string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.binds[key] = command
	return nil
}

func (h *fakeHost) WaitEvent(ctx context.Context) player.Event {
	select {
	case ev := <-h.events:
		return ev
	case <-ctx.Done():
		return player.Event{Kind: player.EventShutdown}
	}
}

func (h *fakeHost) prop(name string) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.props[name]
}

func (h *fakeHost) osdTexts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.osd...)
}

// drain hands every queued notification to the controller, as the dispatch loop would.
func (h *fakeHost) drain(c *Controller) {
	for {
		select {
		case ev := <-h.events:
			_ = handlePropertyChange(c, ev)
		default:
			return
		}
	}
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []room.Event
	err    error
	closed bool
}

func (t *fakeTransport) Send(ev room.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, ev)
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) events() []room.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]room.Event(nil), t.sent...)
}

var errBroken = errors.New("broken pipe")
