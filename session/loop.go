package session

import (
	"context"
	"slices"

	"github.com/syncwatch/syncwatch/constant"
	"github.com/syncwatch/syncwatch/log"
	"github.com/syncwatch/syncwatch/player"
)

// Run is the dispatch loop. It blocks on mpv events until shutdown; failures while handling an
// event are logged and never end the loop.
func Run(ctx context.Context, host Host, c *Controller) {
	for {
		ev := host.WaitEvent(ctx)

		var err error
		switch ev.Kind {
		case player.EventShutdown:
			log.Debugf("dispatch loop stopping: %s", ev.Name)
			return
		case player.EventPropertyChange:
			err = handlePropertyChange(c, ev)
		case player.EventClientMessage:
			err = handleClientMessage(c, ev)
		default:
			log.Tracef("ignoring mpv event %s", ev)
		}

		if err != nil {
			log.Errorf("error handling %s: %v", ev.Kind, err)
		}
	}
}

func handlePropertyChange(c *Controller, ev player.Event) error {
	if ev.ID != PausePropertyID {
		return nil
	}

	paused, ok := ev.Data.(bool)
	if !ok {
		log.Warnf("pause change carried %T instead of a bool", ev.Data)
		return nil
	}

	return c.HandlePauseChange(paused)
}

func handleClientMessage(c *Controller, ev player.Event) error {
	log.Tracef("received client message: %q", ev.Args)

	if len(ev.Args) < len(constant.ToggleBinding) || !slices.Equal(ev.Args[:len(constant.ToggleBinding)], constant.ToggleBinding) {
		return nil
	}
	return c.Toggle()
}
