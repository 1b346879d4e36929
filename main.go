// Command envmon is the environmental monitor firmware: it samples
// temperature, humidity and light, keeps wall-clock time from an RTC,
// raises a visual alarm on thresholds, counts coincident button presses
// and streams one telemetry frame every few seconds, deep sleeping between
// sessions.
//
// The board profile is chosen at link time:
//
//	-ldflags "-X main.board=pico -X main.buildStamp=2024-06-01T10:20:30Z"
package main

import (
	"errors"
	"time"

	"envmon-go/errcode"
	"envmon-go/services/config"
	"envmon-go/services/firmware"
	"envmon-go/services/hal/devices/rtc"
	"envmon-go/services/hal/platform"
	"envmon-go/x/logx"
)

var (
	board      string
	buildStamp string
)

func main() {
	settle()
	o := options()

	b, err := config.Select(o.board)
	if err != nil {
		logx.Error("no such board", "board", o.board, "err", err)
		halt()
	}
	if o.speedup > 1 {
		b.Timing = b.Timing.Scaled(o.speedup)
	}
	logx.SetLevel(logx.ParseLevel(b.LogLevel))

	ctx, stop := runContext()
	defer stop()

	build := rtc.ParseBuildStamp(buildStamp, time.Now().UTC())
	p, err := platform.Open(ctx, b, build)
	if err != nil {
		logx.Error("platform open failed", "board", b.Name, "code", string(errcode.Of(err)), "err", err)
		halt()
	}
	go p.Console.Pump(ctx, p.Port)

	logx.Info("starting", "board", b.Name, "platform", b.Platform, "build", build.Format(time.RFC3339))
	err = firmware.Loop(ctx, p.Hardware, firmware.OptionsFor(b))
	p.Console.Flush(time.Second)
	_ = p.Close()

	switch {
	case errors.Is(err, errcode.ClockNotFound):
		halt()
	case err != nil && ctx.Err() == nil:
		logx.Error("firmware stopped", "err", err)
		halt()
	}
	logx.Info("stopped")
}
