// Package room defines the messages exchanged with the relay service: room events and the join handshake.
package room

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownEventType is returned when a payload carries a type other than play, pause or seeked.
	ErrUnknownEventType = errors.New("unknown room event type")

	// ErrMissingField is returned when a payload lacks one of the five event fields.
	ErrMissingField = errors.New("room event field missing")

	// ErrInvalidTime is returned when encoding an event whose position is negative or not finite.
	ErrInvalidTime = errors.New("room event current time must be a finite, non-negative number")
)

// EventType identifies what happened on the player that emitted the event.
type EventType string

const (
	Play   EventType = "play"
	Pause  EventType = "pause"
	Seeked EventType = "seeked"
)

// Valid reports whether t is one of the three protocol variants.
func (t EventType) Valid() bool {
	switch t {
	case Play, Pause, Seeked:
		return true
	}
	return false
}

// UnmarshalJSON rejects any variant outside the protocol instead of defaulting.
func (t *EventType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("room event type: %w", err)
	}
	if !EventType(s).Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, s)
	}
	*t = EventType(s)
	return nil
}

// MarshalJSON refuses to put an invalid variant on the wire.
func (t EventType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, string(t))
	}
	return json.Marshal(string(t))
}

// PauseState maps a local pause flag to the event announcing it.
func PauseState(paused bool) EventType {
	if paused {
		return Pause
	}
	return Play
}

// Event is the unit of synchronization relayed between players in a room.
type Event struct {
	Location     string    `json:"location" jsonschema:"description=Room the event belongs to"`
	Type         EventType `json:"type" jsonschema:"enum=play,enum=pause,enum=seeked"`
	Element      uint32    `json:"element" jsonschema:"description=Media element index; always 0 for mpv"`
	CurrentTime  float64   `json:"currentTime" jsonschema:"minimum=0,description=Playback position in seconds"`
	PlaybackRate float64   `json:"playbackRate" jsonschema:"description=Playback speed multiplier; 0 when not reported"`
}

// New builds an event. Element is always 0 while syncwatch drives a single mpv instance.
func New(location string, typ EventType, currentTime, playbackRate float64) Event {
	return Event{
		Location:     location,
		Type:         typ,
		Element:      0,
		CurrentTime:  currentTime,
		PlaybackRate: playbackRate,
	}
}

// Paused reports whether applying the event should leave the player paused.
func (e Event) Paused() bool {
	return e.Type == Pause
}

// Validate checks the invariants every outbound event must satisfy.
func (e Event) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, string(e.Type))
	}
	if math.IsNaN(e.CurrentTime) || math.IsInf(e.CurrentTime, 0) || e.CurrentTime < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTime, e.CurrentTime)
	}
	return nil
}

// Encode validates and serializes the event.
func (e Event) Encode() (json.RawMessage, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// wireEvent mirrors Event with pointers so absent fields can be told apart from zero values.
type wireEvent struct {
	Location     *string    `json:"location"`
	Type         *EventType `json:"type"`
	Element      *uint32    `json:"element"`
	CurrentTime  *float64   `json:"currentTime"`
	PlaybackRate *float64   `json:"playbackRate"`
}

// Decode parses a single event payload. Every field is required; unknown extra fields are ignored.
func Decode(data []byte) (Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return Event{}, fmt.Errorf("room event: expected a JSON object")
	}

	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("room event: %w", err)
	}

	missing := func(name string) error { return fmt.Errorf("%w: %s", ErrMissingField, name) }
	switch {
	case w.Location == nil:
		return Event{}, missing("location")
	case w.Type == nil:
		return Event{}, missing("type")
	case w.Element == nil:
		return Event{}, missing("element")
	case w.CurrentTime == nil:
		return Event{}, missing("currentTime")
	case w.PlaybackRate == nil:
		return Event{}, missing("playbackRate")
	}

	return Event{
		Location:     *w.Location,
		Type:         *w.Type,
		Element:      *w.Element,
		CurrentTime:  *w.CurrentTime,
		PlaybackRate: *w.PlaybackRate,
	}, nil
}

func (e Event) String() string {
	return fmt.Sprintf("%s@%.3fs room=%s element=%d rate=%g", e.Type, e.CurrentTime, e.Location, e.Element, e.PlaybackRate)
}
