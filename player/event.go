// Package player talks to mpv, the host media player, over its JSON-IPC interface.
//
// An IPC client multiplexes one persistent connection: commands carry a request_id and wait for
// their matching reply, while events (property changes, client messages, shutdown) are queued for
// a single consumer calling WaitEvent.
package player

import "fmt"

// EventKind classifies the events the session loop reacts to.
type EventKind int

const (
	EventOther EventKind = iota
	EventShutdown
	EventPropertyChange
	EventClientMessage
)

func (k EventKind) String() string {
	switch k {
	case EventShutdown:
		return "shutdown"
	case EventPropertyChange:
		return "property-change"
	case EventClientMessage:
		return "client-message"
	default:
		return "other"
	}
}

// Event is one notification delivered by mpv.
type Event struct {
	Kind EventKind

	// Name is the mpv event name, or the property name for property changes.
	Name string

	// ID is the observer id passed to ObserveProperty.
	ID   uint64
	Data any

	// Args holds the tokens of a client message.
	Args []string
}

func (e Event) String() string {
	switch e.Kind {
	case EventPropertyChange:
		return fmt.Sprintf("property-change %s#%d=%v", e.Name, e.ID, e.Data)
	case EventClientMessage:
		return fmt.Sprintf("client-message %q", e.Args)
	default:
		return e.Name
	}
}
