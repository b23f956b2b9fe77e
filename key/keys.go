// Package key defines the canonical set of configuration identifiers.
package key

// Session - the four keys every syncwatch.toml must carry. They live at the top level of the file.
const (
	EnableOnStart = "enable_on_start"
	ServerURL     = "server_url"
	Name          = "name"
	RoomName      = "room_name"
)

// Host player - how syncwatch reaches or launches mpv.
const (
	MPVSocket     = "mpv.socket"
	MPVExecutable = "mpv.executable"
	KeybindToggle = "keybind.toggle"
)

// Logging.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI.
const (
	CliColored = "cli.colored"
)
