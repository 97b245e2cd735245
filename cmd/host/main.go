// Native messaging host for the paramscope browser extension.
// The extension posts page snapshots here; they land in live.json where the
// CLI picks them up.

package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/repplus/paramscope/internal/native"
	"github.com/repplus/paramscope/internal/store"
)

var (
	keepOnDisconnect bool // If true, don't clear live.json when the extension disconnects
	debug            bool
)

func main() {
	flag.BoolVar(&keepOnDisconnect, "keep", false, "Keep live.json when the extension disconnects")
	flag.BoolVar(&debug, "debug", false, "Log every message to stderr")
	flag.Parse()

	// Native messaging can't pass args
	if os.Getenv("PARAMSCOPE_KEEP_ON_DISCONNECT") == "1" {
		keepOnDisconnect = true
	}

	// stdout carries the protocol, so logs go to stderr
	level := pterm.LogLevelWarn
	if debug {
		level = pterm.LogLevelDebug
	}
	logger := slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithWriter(os.Stderr).WithLevel(level)))

	h := &native.Handler{
		WriteLive: store.WriteLive,
		ClearLive: store.ClearLive,
		LivePath:  store.GetLiveFilePath,
		Logger:    logger,
	}

	if err := h.Serve(os.Stdin, os.Stdout); err != nil {
		logger.Error("native messaging stopped", "error", err)
		os.Exit(1)
	}

	// Extension disconnected
	if !keepOnDisconnect {
		if err := store.ClearLive(); err != nil {
			logger.Warn("clear live snapshot", "error", err)
		}
	}
}
