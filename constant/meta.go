// Package constant defines immutable application-level identifiers shared across packages.
package constant

const (
	// Syncwatch is the canonical application identifier used for file names, env prefixes and OSD text.
	Syncwatch = "syncwatch"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// ConfigType is the encoding of the configuration file.
	ConfigType = "toml"
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
