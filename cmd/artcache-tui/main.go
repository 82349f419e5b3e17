package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/artcache/internal/config"
	"github.com/handiism/artcache/internal/tui"
)

func main() {
	var (
		configFlag = flag.String("config", "", "Path to config file (.yaml, .yml or .json)")
		outFlag    = flag.String("out", "", "Where to write results (defaults to the manifest itself)")
	)
	flag.Parse()

	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	opts := tui.Options{
		ManifestPath: flag.Arg(0),
		OutputPath:   *outFlag,
		Settings:     settings,
	}
	if err := tui.Run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
