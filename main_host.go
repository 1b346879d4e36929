//go:build !(rp2040 || rp2350)

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
)

type runOptions struct {
	board   string
	speedup int64
}

func options() runOptions {
	def := board
	if def == "" {
		def = "host"
	}
	o := runOptions{}
	flag.StringVar(&o.board, "board", def, "board profile")
	flag.Int64Var(&o.speedup, "speedup", 1, "divide every period by this factor")
	flag.Parse()
	return o
}

func settle() {}

func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func halt() { os.Exit(1) }
