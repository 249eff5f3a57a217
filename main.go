package main

import (
	"flag"
	"fmt"
	"os"

	"drinkaware/internal/di"
	"drinkaware/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug mode")
	flag.BoolVar(&flags.Authorize, "authorize", false, "run the interactive account authorization flow and exit")
	flag.Parse()

	if flags.Authorize {
		if err := runAuthorize(flags); err != nil {
			fmt.Fprintf(os.Stderr, "authorization failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	app, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
