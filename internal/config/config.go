// Package config implements reading of the application configuration from
// env-style files, with typed accessors and fallback defaults.
package config

import (
	"strconv"
	"strings"
)

// Configuration keys understood by the application.
const (
	KeyMaxOverrideBytes     = "VEILFS_MAX_OVERRIDE_BYTES"
	KeyCompressionThreshold = "VEILFS_COMPRESSION_THRESHOLD"
	KeyCaseInsensitive      = "VEILFS_CASE_INSENSITIVE"
	KeyReadOnly             = "VEILFS_READ_ONLY"
	KeyLogLevel             = "VEILFS_LOG_LEVEL"
)

// Fallback defaults for absent or malformed configuration keys.
const (
	DefaultMaxOverrideBytes     = int64(0) // unlimited
	DefaultCompressionThreshold = 4096
	DefaultLogLevel             = "info"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// Handler is the principal implementation for configuration reading.
type Handler struct {
	GenericConfigReader genericConfigProvider
}

// NewHandler returns a pointer to a new [Handler].
func NewHandler(reader genericConfigProvider) *Handler {
	return &Handler{
		GenericConfigReader: reader,
	}
}

// ReadGeneric reads generic Unix-type configuration files into a map.
func (c *Handler) ReadGeneric(filenames ...string) (envMap map[string]string, err error) {
	return c.GenericConfigReader.Read(filenames...)
}

// MapKeyToString returns the value for a key, or an empty string when the
// key is absent.
func (c *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return value
	}

	return ""
}

// MapKeyToInt64 returns the value for a key as int64, or the given fallback
// when the key is absent or not parseable.
func (c *Handler) MapKeyToInt64(envMap map[string]string, key string, fallback int64) int64 {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return fallback
	}

	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}

	return intValue
}

// MapKeyToInt returns the value for a key as int, or the given fallback when
// the key is absent or not parseable.
func (c *Handler) MapKeyToInt(envMap map[string]string, key string, fallback int) int {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return fallback
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return intValue
}

// MapKeyToBool returns the value for a key as bool, or the given fallback
// when the key is absent or not parseable. Accepts the usual spellings
// ("1", "true", "yes", "on" and their negations, case-insensitive).
func (c *Handler) MapKeyToBool(envMap map[string]string, key string, fallback bool) bool {
	value := strings.ToLower(c.MapKeyToString(envMap, key))

	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// Settings is the principal structure holding the application configuration.
type Settings struct {
	MaxOverrideBytes     int64
	CompressionThreshold int
	CaseInsensitive      bool
	ReadOnly             bool
	LogLevel             string
}

// DefaultSettings returns a [Settings] populated with fallback defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxOverrideBytes:     DefaultMaxOverrideBytes,
		CompressionThreshold: DefaultCompressionThreshold,
		LogLevel:             DefaultLogLevel,
	}
}

// Load reads the given configuration files and returns the resulting
// [Settings]; keys that are absent or malformed fall back to their defaults.
// With no filenames given, the defaults are returned as-is.
func (c *Handler) Load(filenames ...string) (Settings, error) {
	settings := DefaultSettings()

	if len(filenames) == 0 {
		return settings, nil
	}

	envMap, err := c.ReadGeneric(filenames...)
	if err != nil {
		return settings, err
	}

	settings.MaxOverrideBytes = c.MapKeyToInt64(envMap, KeyMaxOverrideBytes, settings.MaxOverrideBytes)
	settings.CompressionThreshold = c.MapKeyToInt(envMap, KeyCompressionThreshold, settings.CompressionThreshold)
	settings.CaseInsensitive = c.MapKeyToBool(envMap, KeyCaseInsensitive, settings.CaseInsensitive)
	settings.ReadOnly = c.MapKeyToBool(envMap, KeyReadOnly, settings.ReadOnly)

	if level := c.MapKeyToString(envMap, KeyLogLevel); level != "" {
		settings.LogLevel = level
	}

	return settings, nil
}
