package internal

import (
	"fmt"
	"strings"
)

// Config holds the engine and CLI settings
type Config struct {
	// InfoStrings are the fenced-block languages treated as Vis payloads
	InfoStrings []string `mapstructure:"info_strings" yaml:"info_strings"`
	// FenceThreshold is the backtick count below which a string is treated
	// as holding an unterminated fence
	FenceThreshold int    `mapstructure:"fence_threshold" yaml:"fence_threshold"`
	DefaultChannel string `mapstructure:"default_channel" yaml:"default_channel"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	CacheDir       string `mapstructure:"cache_dir" yaml:"cache_dir"`
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		InfoStrings:    []string{"vis"},
		FenceThreshold: 6,
		DefaultChannel: "",
		LogLevel:       "info",
	}
}

// Normalize fills zero values with defaults
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if len(c.InfoStrings) == 0 {
		c.InfoStrings = def.InfoStrings
	}
	if c.FenceThreshold < 0 {
		c.FenceThreshold = def.FenceThreshold
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	return c
}

// EngineKey identifies the settings that change merge output
func (c Config) EngineKey() string {
	return fmt.Sprintf("info=%s;threshold=%d", strings.Join(c.InfoStrings, ","), c.FenceThreshold)
}
