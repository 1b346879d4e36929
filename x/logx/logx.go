// Package logx is the firmware's diagnostic logger. Host and Linux builds
// log through slog with a tint handler; MCU builds print plain lines.
// Diagnostics never go to the telemetry console.
package logx

import "sync/atomic"

// Level orders diagnostic severities.
type Level int32

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch {
	case l >= LevelError:
		return "ERROR"
	case l >= LevelWarn:
		return "WARN"
	case l >= LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// ParseLevel maps a profile string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var level atomic.Int32

func SetLevel(l Level) { level.Store(int32(l)) }
func Enabled(l Level) bool { return int32(l) >= level.Load() }

func Debug(msg string, kv ...any) { log(LevelDebug, msg, kv) }
func Info(msg string, kv ...any)  { log(LevelInfo, msg, kv) }
func Warn(msg string, kv ...any)  { log(LevelWarn, msg, kv) }
func Error(msg string, kv ...any) { log(LevelError, msg, kv) }

func log(l Level, msg string, kv []any) {
	if !Enabled(l) {
		return
	}
	emit(l, msg, kv)
}
