// Package main runs encounter simulations from a matchup file.
package main

import (
	"flag"
	"os"

	entrypoint "github.com/louisbranch/skirmish/internal/platform/cmd"
	"github.com/louisbranch/skirmish/internal/platform/config"

	encountercmd "github.com/louisbranch/skirmish/internal/cmd/encounter"
)

func main() {
	cfg, err := encountercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := entrypoint.SignalContext()
	defer stop()

	if err := encountercmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
