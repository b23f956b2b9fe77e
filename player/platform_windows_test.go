//go:build windows

package player

import (
	"net"
	"testing"
	"time"

	"github.com/Microsoft/go-winio"
	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNamedPipe(t *testing.T) {
	Convey("Given mpv listening on a named pipe", t, func() {
		path := socketPath("syncwatch-test-" + uuid.NewString())
		l, err := winio.ListenPipe(path, nil)
		So(err, ShouldBeNil)
		Reset(func() { _ = l.Close() })

		accepted := make(chan net.Conn, 1)
		go func() {
			conn, err := l.Accept()
			if err != nil {
				close(accepted)
				return
			}
			newFakeMPV(conn)
			accepted <- conn
		}()

		ipc, err := Dial(path)
		So(err, ShouldBeNil)
		Reset(func() { _ = ipc.Close() })

		Convey("Commands complete while the read loop is blocked on the same pipe", func() {
			remote := <-accepted
			So(remote, ShouldNotBeNil)
			defer remote.Close()

			done := make(chan error, 1)
			go func() {
				_, err := ipc.GetFloat("time-pos")
				done <- err
			}()

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(2 * time.Second):
				So("command never completed", ShouldBeEmpty)
			}

			So(ipc.Set("pause", true), ShouldBeNil)
			paused, err := ipc.GetBool("pause")
			So(err, ShouldBeNil)
			So(paused, ShouldBeTrue)
		})
	})

	Convey("Dialing a pipe nobody listens on fails", t, func() {
		_, err := dialSocket(socketPath("syncwatch-missing-" + uuid.NewString()))
		So(err, ShouldNotBeNil)
	})
}
