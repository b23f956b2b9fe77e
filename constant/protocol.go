package constant

// Socket.IO event names understood by the relay service.
const (
	EventJoin    = "join"
	EventMessage = "message"
)

// ToggleBinding is the client-message prefix mpv delivers when the toggle key is pressed.
var ToggleBinding = []string{"key-binding", "toggle", "u--"}
