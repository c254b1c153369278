package config

import "git.home.luguber.info/inful/apiref/internal/foundation/normalization"

// LinkResolution selects how relative hrefs are resolved against the base path.
type LinkResolution string

const (
	// LinkResolutionLegacy substitutes only the first ".." with "." before resolving.
	LinkResolutionLegacy LinkResolution = "legacy"
	// LinkResolutionFlatten drops every leading parent/current segment.
	LinkResolutionFlatten LinkResolution = "flatten"
)

var linkResolutionNormalizer = normalization.NewNormalizer(map[string]LinkResolution{
	"legacy":  LinkResolutionLegacy,
	"flatten": LinkResolutionFlatten,
}, LinkResolutionLegacy)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug": LogLevelDebug,
	"info":  LogLevelInfo,
	"warn":  LogLevelWarn,
	"error": LogLevelError,
}, LogLevelInfo)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)
