package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/syncwatch/syncwatch/constant"
	"github.com/syncwatch/syncwatch/key"
	"github.com/syncwatch/syncwatch/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string

	// Required fields have no usable default and must come from the file, env or a flag.
	// Value only carries their type.
	Required bool
}

// Pretty returns a colored, multi-line description of the field.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	return strings.ToUpper(constant.Syncwatch + "_" + EnvKeyReplacer.Replace(f.Key))
}

// MarshalJSON includes the current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default,omitempty"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Required    bool   `json:"required"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     lo.Ternary(f.Required, nil, f.Value),
		Description: f.Description,
		Type:        reflect.TypeOf(f.Value).String(),
		Required:    f.Required,
	})
}

// Default holds every known configuration field by key.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

// Required lists the keys that must be set for a session to start, sorted.
func Required() []string {
	keys := lo.Keys(lo.PickBy(Default, func(_ string, f Field) bool { return f.Required }))
	sort.Strings(keys)
	return keys
}

func init() {
	register := func(k string, v any, required bool, desc string) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc, Required: required}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.EnableOnStart, false, true, "Start synchronizing as soon as syncwatch attaches to mpv")
	register(key.ServerURL, "", true, "Socket.IO relay server, e.g. https://sync.example.org")
	register(key.Name, "", true, "Display name announced to the room")
	register(key.RoomName, "", true, "Room to join; every player in the same room stays in sync")

	register(key.MPVSocket, "", false, "mpv IPC socket to attach to (mpv --input-ipc-server).\nLeave empty to let syncwatch launch mpv itself")
	register(key.MPVExecutable, "mpv", false, "mpv executable used when syncwatch launches the player")
	register(key.KeybindToggle, "u", false, "Key bound in mpv to toggle synchronization")

	register(key.LogsWrite, false, false, "Write logs to a daily file instead of stderr")
	register(key.LogsLevel, "info", false, "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, false, "Use json format for logs")

	register(key.CliColored, true, false, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"purple":   style.Fg(style.Purple),
	"blue":     style.Fg(style.Blue),
	"red":      style.Fg(style.Red),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case nil:
			return style.Faint("unset")
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(style.Green)(b)
			}
			return style.Fg(style.Red)(b)
		case string:
			return style.Fg(style.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}{{ if .Required }} {{ red "(required)" }}{{ end }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ if not .Required }}{{ blue "Default:" }} {{ hl .Value }}
{{ end }}{{ blue "Type:" }}    {{ typename .Value }}`))
