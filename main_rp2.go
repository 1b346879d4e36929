//go:build rp2040 || rp2350

package main

import (
	"context"
	"time"
)

type runOptions struct {
	board   string
	speedup int64
}

func options() runOptions {
	if board == "" {
		return runOptions{board: "pico", speedup: 1}
	}
	return runOptions{board: board, speedup: 1}
}

// settle lets USB CDC enumerate before the first line goes out.
func settle() { time.Sleep(2 * time.Second) }

func runContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

// halt parks the firmware; only a reset gets it out.
func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
