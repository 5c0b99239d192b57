package config

import (
	"io"
	"time"
)

// Config retrieves typed configuration values by dotted key. Implementations
// own the type conversion and return zero values for missing or malformed
// keys.
type Config interface {
	io.Closer

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetArray retrieves the value for key as a string slice.
	// The value is stored as <element1>,<element2>,...
	GetArray(key string) []string

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetInt32 retrieves the value for key as an int32.
	GetInt32(key string) int32

	// GetUint16 retrieves the value for key as a uint16.
	GetUint16(key string) uint16

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetSecond retrieves the integer value for key as a duration in seconds.
	GetSecond(key string) time.Duration

	// GetHour retrieves the integer value for key as a duration in hours.
	GetHour(key string) time.Duration
}
