package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/gekko3d/tetra/tetrart/rt/app"
	"github.com/gekko3d/tetra/tetrart/rt/core"
)

func main() {
	configPath := flag.String("config", "", "INI file describing the mesh, camera and render")
	debug := flag.Bool("debug", false, "Enable debug logging and per-frame profiler stats")
	example := flag.Bool("example", false, "Print an example config file and exit")
	flag.Parse()

	if *example {
		if err := app.WriteExampleConfig(os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "tetrart: -config is required (see -example)")
		os.Exit(2)
	}

	logger := core.NewDefaultLogger("tetrart", *debug)
	cfg, err := app.ReadConfig(*configPath)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	application := app.NewApp(cfg, logger.With("render"))
	application.DebugMode = *debug
	if err := application.Init(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	if err := application.Run(ctx); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
