package relay

import (
	"errors"
	"fmt"
	"time"

	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
	"github.com/zishang520/socket.io-go-parser/v2/parser"
)

var (
	// ErrClosed is returned when emitting on a connection that is gone.
	ErrClosed = errors.New("relay connection closed")

	// ErrConnectRefused is returned when the server rejects the namespace connect.
	ErrConnectRefused = errors.New("relay refused connection")
)

// ConnectTimeout bounds the transport open plus the namespace connect.
const ConnectTimeout = 10 * time.Second

// Socket.IO client events.
const (
	eventConnect      = "connect"
	eventConnectError = "connect_error"
	eventDisconnect   = "disconnect"
)

// newSocket prepares a websocket-only Socket.IO client for serverURL. It is not connected yet, so
// listeners can be registered before the first packet arrives.
func newSocket(serverURL string, timeout time.Duration) (*socket.Socket, error) {
	opts := socket.DefaultOptions()
	opts.SetTransports(types.NewSet(socket.WebSocket))
	opts.SetReconnection(false)
	opts.SetForceNew(true)
	opts.SetAutoConnect(false)
	opts.SetTimeout(timeout)

	return socket.Connect(serverURL, opts)
}

// connectError turns the arguments of a connect_error event into an error. A Socket.IO
// CONNECT_ERROR packet from the server maps to ErrConnectRefused.
func connectError(args []any) error {
	if len(args) == 0 {
		return errors.New("connect failed")
	}

	err, ok := args[0].(error)
	if !ok {
		return fmt.Errorf("connect failed: %v", args[0])
	}

	var refused *socket.ExtendedError
	if errors.As(err, &refused) {
		return fmt.Errorf("%w: %s", ErrConnectRefused, refused.Message)
	}
	return err
}

// disconnectReason extracts the reason string of a disconnect event.
func disconnectReason(args []any) string {
	if len(args) > 0 {
		if reason, ok := args[0].(string); ok {
			return reason
		}
	}
	return "unknown"
}

// hasBinary reports whether any event argument carries a binary attachment.
func hasBinary(args []any) bool {
	return parser.HasBinary(args)
}
