// Package main imports ability and item definitions into the encounter store.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/louisbranch/skirmish/internal/platform/config"
	catalogimporter "github.com/louisbranch/skirmish/internal/tools/importer/catalog"
)

func main() {
	cfg, err := catalogimporter.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := catalogimporter.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
