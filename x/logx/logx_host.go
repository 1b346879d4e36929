//go:build !(rp2040 || rp2350)

package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
)

var logger atomic.Pointer[slog.Logger]

func init() { SetOutput(os.Stderr) }

// SetOutput sends diagnostics to w through a tint handler. The handler
// level follows SetLevel.
func SetOutput(w io.Writer) {
	h := tint.NewHandler(w, &tint.Options{
		Level:      levelVar{},
		TimeFormat: time.TimeOnly,
		NoColor:    w != os.Stderr,
	})
	logger.Store(slog.New(h))
}

// Logger returns the underlying slog logger.
func Logger() *slog.Logger { return logger.Load() }

type levelVar struct{}

func (levelVar) Level() slog.Level { return slog.Level(level.Load()) }

func emit(l Level, msg string, kv []any) {
	logger.Load().Log(context.Background(), slog.Level(l), msg, kv...)
}
