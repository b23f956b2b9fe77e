package room

import (
	"github.com/invopop/jsonschema"
	"github.com/syncwatch/syncwatch/constant"
)

// Schemas describes the payload of every Socket.IO event syncwatch emits, keyed by event name.
// Relay implementers use it to validate what they forward.
func Schemas() map[string]*jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}

	join := r.Reflect(&Join{})
	join.Title = "syncwatch join"

	message := r.Reflect(&Event{})
	message.Title = "syncwatch room event"

	return map[string]*jsonschema.Schema{
		constant.EventJoin:    join,
		constant.EventMessage: message,
	}
}
