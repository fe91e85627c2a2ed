// Package main provides stockctl, the command-line front end to the
// inventory table engine.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/stockpilot/internal/logging"
)

func main() {
	// Keep workspace lifecycle logs out of the terminal grid.
	slog.SetDefault(logging.New(os.Stderr, "warn", "text"))

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
