package room

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/syncwatch/syncwatch/constant"
)

func asMap(data []byte) map[string]any {
	var m map[string]any
	So(json.Unmarshal(data, &m), ShouldBeNil)
	return m
}

func TestDecode(t *testing.T) {
	Convey("Given a well-formed pause payload", t, func() {
		payload := []byte(`{"location":"room1","type":"pause","element":0,"currentTime":12.5,"playbackRate":1.0}`)

		Convey("When it is decoded", func() {
			ev, err := Decode(payload)
			So(err, ShouldBeNil)

			Convey("Then every field is carried over", func() {
				So(ev.Location, ShouldEqual, "room1")
				So(ev.Type, ShouldEqual, Pause)
				So(ev.Paused(), ShouldBeTrue)
				So(ev.Element, ShouldEqual, 0)
				So(ev.CurrentTime, ShouldEqual, 12.5)
				So(ev.PlaybackRate, ShouldEqual, 1.0)
			})

			Convey("Then re-encoding yields the same document", func() {
				out, err := ev.Encode()
				So(err, ShouldBeNil)
				So(asMap(out), ShouldResemble, asMap(payload))
			})
		})

		Convey("When field order differs and extra fields are present", func() {
			ev, err := Decode([]byte(`{"playbackRate":2,"extra":true,"currentTime":3,"element":0,"type":"seeked","location":"x"}`))
			So(err, ShouldBeNil)
			So(ev.Type, ShouldEqual, Seeked)
			So(ev.PlaybackRate, ShouldEqual, 2)
		})
	})

	Convey("Given malformed payloads", t, func() {
		Convey("An unknown type is a hard failure", func() {
			_, err := Decode([]byte(`{"location":"r","type":"stop","element":0,"currentTime":1,"playbackRate":1}`))
			So(errors.Is(err, ErrUnknownEventType), ShouldBeTrue)
		})

		Convey("A type with the wrong casing is rejected", func() {
			_, err := Decode([]byte(`{"location":"r","type":"Pause","element":0,"currentTime":1,"playbackRate":1}`))
			So(errors.Is(err, ErrUnknownEventType), ShouldBeTrue)
		})

		Convey("A missing field is reported by name", func() {
			_, err := Decode([]byte(`{"location":"r","type":"play","element":0,"playbackRate":1}`))
			So(errors.Is(err, ErrMissingField), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "currentTime")
		})

		Convey("Non-object payloads are rejected", func() {
			for _, raw := range []string{``, `"pause"`, `[]`, `42`, `null`, `{`} {
				_, err := Decode([]byte(raw))
				So(err, ShouldNotBeNil)
			}
		})

		Convey("A negative element does not fit", func() {
			_, err := Decode([]byte(`{"location":"r","type":"play","element":-1,"currentTime":1,"playbackRate":1}`))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestEncode(t *testing.T) {
	Convey("Given an outbound event", t, func() {
		Convey("A local pause encodes with the wire casing", func() {
			out, err := New("room1", PauseState(true), 42.0, 0).Encode()
			So(err, ShouldBeNil)
			So(asMap(out), ShouldResemble, map[string]any{
				"location":     "room1",
				"type":         "pause",
				"element":      float64(0),
				"currentTime":  42.0,
				"playbackRate": 0.0,
			})
		})

		Convey("A negative or non-finite position is refused", func() {
			for _, pos := range []float64{-0.5, math.NaN(), math.Inf(1)} {
				_, err := New("r", Play, pos, 0).Encode()
				So(errors.Is(err, ErrInvalidTime), ShouldBeTrue)
			}
		})

		Convey("An invalid type is refused", func() {
			_, err := Event{Location: "r", Type: "rewind"}.Encode()
			So(errors.Is(err, ErrUnknownEventType), ShouldBeTrue)
		})
	})
}

func TestSchemas(t *testing.T) {
	Convey("Schemas cover both emitted events", t, func() {
		schemas := Schemas()
		So(schemas, ShouldContainKey, constant.EventJoin)
		So(schemas, ShouldContainKey, constant.EventMessage)

		message := schemas[constant.EventMessage]
		So(message.Required, ShouldContain, "currentTime")

		typ, ok := message.Properties.Get("type")
		So(ok, ShouldBeTrue)
		So(typ.Enum, ShouldResemble, []any{"play", "pause", "seeked"})
	})
}
