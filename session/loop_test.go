package session

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/syncwatch/syncwatch/player"
)

func toggleMessage() player.Event {
	return player.Event{Kind: player.EventClientMessage, Args: []string{"key-binding", "toggle", "u--"}}
}

func TestRun(t *testing.T) {
	Convey("Given a dispatch loop over a disabled controller", t, func() {
		c, host, conn := newTestController()
		ctx := context.Background()

		Convey("The toggle key binding enables synchronization", func() {
			host.events <- toggleMessage()
			host.events <- player.Event{Kind: player.EventShutdown}
			Run(ctx, host, c)

			So(c.Enabled(), ShouldBeTrue)
		})

		Convey("Other client messages are ignored", func() {
			host.events <- player.Event{Kind: player.EventClientMessage, Args: []string{"key-binding", "other", "u--"}}
			host.events <- player.Event{Kind: player.EventClientMessage, Args: []string{"key-binding"}}
			host.events <- player.Event{Kind: player.EventShutdown}
			Run(ctx, host, c)

			So(c.Enabled(), ShouldBeFalse)
		})

		Convey("It stops when the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			Run(cancelled, host, c)

			So(c.Enabled(), ShouldBeFalse)
		})

		Convey("Once enabled", func() {
			So(c.Enable(), ShouldBeNil)
			host.drain(c)

			Convey("A pause notification is forwarded", func() {
				host.events <- player.Event{Kind: player.EventPropertyChange, ID: PausePropertyID, Name: "pause", Data: true}
				host.events <- player.Event{Kind: player.EventShutdown}
				Run(ctx, host, c)

				So(conn.events(), ShouldHaveLength, 1)
			})

			Convey("Notifications for other observers or with odd data are skipped", func() {
				host.events <- player.Event{Kind: player.EventPropertyChange, ID: 7, Name: "volume", Data: true}
				host.events <- player.Event{Kind: player.EventPropertyChange, ID: PausePropertyID, Name: "pause", Data: "yes"}
				host.events <- player.Event{Kind: player.EventOther, Name: "idle"}
				host.events <- player.Event{Kind: player.EventShutdown}
				Run(ctx, host, c)

				So(conn.events(), ShouldBeEmpty)
			})

			Convey("A failed send does not end the loop", func() {
				conn.err = errBroken
				host.events <- player.Event{Kind: player.EventPropertyChange, ID: PausePropertyID, Name: "pause", Data: true}
				host.events <- toggleMessage()
				host.events <- player.Event{Kind: player.EventShutdown}
				Run(ctx, host, c)

				So(c.Enabled(), ShouldBeFalse)
			})
		})
	})
}
