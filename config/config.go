// Package config owns the viper-based configuration engine and turns it into validated session settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"github.com/syncwatch/syncwatch/constant"
	"github.com/syncwatch/syncwatch/filesystem"
	"github.com/syncwatch/syncwatch/key"
	"github.com/syncwatch/syncwatch/where"
)

// EnvKeyReplacer normalizes configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

var (
	// ErrMissingKey is returned by Load when a required key is not set by any source.
	ErrMissingKey = errors.New("missing required configuration key")

	// ErrInvalidValue is returned by Load when a key is set to an unusable value.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Setup wires viper to syncwatch.toml, SYNCWATCH_* environment variables and the default registry.
// A missing file is not an error here: commands such as "where" and "config write" must work
// before one exists. Load enforces presence of the session keys.
func Setup() error {
	viper.SetConfigName(constant.Syncwatch)
	viper.SetConfigType(constant.ConfigType)
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Syncwatch)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		if field.Required {
			continue
		}
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read %s: %w", where.ConfigFile(), err)
	}

	return nil
}

// Settings is the validated view of the configuration a session runs with.
type Settings struct {
	EnableOnStart bool
	ServerURL     string
	Name          string
	RoomName      string

	// Socket is the mpv IPC socket to attach to. Empty when syncwatch launches mpv itself.
	Socket     string
	Executable string
	ToggleKey  string
}

// Load reads the session settings out of viper.
func Load() (Settings, error) {
	for _, k := range Required() {
		if !viper.IsSet(k) {
			return Settings{}, fmt.Errorf("%w: %s (looked in %s)", ErrMissingKey, k, where.ConfigFile())
		}
	}

	s := Settings{
		EnableOnStart: viper.GetBool(key.EnableOnStart),
		ServerURL:     strings.TrimSpace(viper.GetString(key.ServerURL)),
		Name:          strings.TrimSpace(viper.GetString(key.Name)),
		RoomName:      strings.TrimSpace(viper.GetString(key.RoomName)),
		Socket:        viper.GetString(key.MPVSocket),
		Executable:    viper.GetString(key.MPVExecutable),
		ToggleKey:     viper.GetString(key.KeybindToggle),
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Validate checks the values Load cannot take on faith.
func (s Settings) Validate() error {
	for k, v := range map[string]string{key.Name: s.Name, key.RoomName: s.RoomName, key.ServerURL: s.ServerURL} {
		if v == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidValue, k)
		}
	}

	u, err := url.Parse(s.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key.ServerURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("%w: %s: unsupported scheme %q", ErrInvalidValue, key.ServerURL, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: %s: missing host", ErrInvalidValue, key.ServerURL)
	}

	if s.ToggleKey == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidValue, key.KeybindToggle)
	}

	return nil
}
