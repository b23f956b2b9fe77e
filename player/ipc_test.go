package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeMPV answers IPC requests on the far end of a pipe the way mpv does.
type fakeMPV struct {
	conn     net.Conn
	props    map[string]any
	requests chan []any
}

func newFakeMPV(conn net.Conn) *fakeMPV {
	f := &fakeMPV{
		conn:     conn,
		props:    map[string]any{"pause": false, "time-pos": 42.0},
		requests: make(chan []any, 32),
	}
	go f.serve()
	return f
}

func (f *fakeMPV) send(v any) {
	data, _ := json.Marshal(v)
	_, _ = f.conn.Write(append(data, '\n'))
}

func (f *fakeMPV) serve() {
	sc := bufio.NewScanner(f.conn)
	for sc.Scan() {
		var req struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
			continue
		}
		f.requests <- req.Command

		reply := map[string]any{"request_id": req.RequestID, "error": "success"}
		switch req.Command[0] {
		case "get_property":
			val, ok := f.props[req.Command[1].(string)]
			if !ok {
				reply["error"] = "property unavailable"
			} else {
				reply["data"] = val
			}
		case "set_property":
			f.props[req.Command[1].(string)] = req.Command[2]
		case "observe_property":
			// mpv pushes an event before the reply for the initial value.
			name := req.Command[2].(string)
			f.send(map[string]any{"event": "property-change", "id": req.Command[1], "name": name, "data": f.props[name]})
		}
		f.send(reply)
	}
}

func TestIPC(t *testing.T) {
	Convey("Given an IPC client attached to mpv", t, func() {
		local, remote := net.Pipe()
		mpv := newFakeMPV(remote)
		ipc := NewIPC(local)

		Reset(func() {
			_ = ipc.Close()
			_ = remote.Close()
		})

		Convey("Properties round-trip with their types", func() {
			pos, err := ipc.GetFloat("time-pos")
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 42.0)

			So(ipc.Set("pause", true), ShouldBeNil)
			paused, err := ipc.GetBool("pause")
			So(err, ShouldBeNil)
			So(paused, ShouldBeTrue)
		})

		Convey("mpv errors are surfaced", func() {
			_, err := ipc.Get("duration")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "property unavailable")

			_, err = ipc.GetBool("time-pos")
			So(err, ShouldNotBeNil)
		})

		Convey("Observing a property queues its initial value as an event", func() {
			So(ipc.ObserveProperty(1, "pause"), ShouldBeNil)

			ev := ipc.WaitEvent(context.Background())
			So(ev.Kind, ShouldEqual, EventPropertyChange)
			So(ev.ID, ShouldEqual, 1)
			So(ev.Name, ShouldEqual, "pause")
			So(ev.Data, ShouldEqual, false)
		})

		Convey("Client messages carry their tokens", func() {
			mpv.send(map[string]any{"event": "client-message", "args": []string{"key-binding", "toggle", "u--"}})

			ev := ipc.WaitEvent(context.Background())
			So(ev.Kind, ShouldEqual, EventClientMessage)
			So(ev.Args, ShouldResemble, []string{"key-binding", "toggle", "u--"})
		})

		Convey("OSD and key binding commands use mpv's argument order", func() {
			So(ipc.ShowText("syncwatch enabled", 2*time.Second), ShouldBeNil)
			So(<-mpv.requests, ShouldResemble, []any{"show-text", "syncwatch enabled", float64(2000)})

			So(ipc.Keybind("u", "script-message key-binding toggle u--"), ShouldBeNil)
			So(<-mpv.requests, ShouldResemble, []any{"keybind", "u", "script-message key-binding toggle u--"})
		})

		Convey("Queued events drain before a lost connection reports shutdown", func() {
			mpv.send(map[string]any{"event": "playback-restart"})
			mpv.send(map[string]any{"event": "shutdown"})

			So(ipc.WaitEvent(context.Background()).Kind, ShouldEqual, EventOther)
			So(ipc.WaitEvent(context.Background()).Kind, ShouldEqual, EventShutdown)

			_ = remote.Close()
			<-ipc.Done()
			So(ipc.WaitEvent(context.Background()).Kind, ShouldEqual, EventShutdown)

			_, err := ipc.Get("pause")
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
		})

		Convey("A cancelled context unblocks WaitEvent", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			So(ipc.WaitEvent(ctx).Kind, ShouldEqual, EventShutdown)
		})
	})
}

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("Media targets", t, func() {
		_, err := sanitizeMediaTarget("--script=evil.lua")
		So(err, ShouldNotBeNil)

		_, err = sanitizeMediaTarget("ftp://example.org/a.mkv")
		So(err, ShouldNotBeNil)

		target, err := sanitizeMediaTarget(" https://example.org/a.mkv ")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, "https://example.org/a.mkv")

		target, err = sanitizeMediaTarget("videos/../movie.mkv")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, "movie.mkv")
	})
}
