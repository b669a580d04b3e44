package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/gobase/internal/config"
	"github.com/handiism/gobase/internal/logging"
	"github.com/handiism/gobase/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	config.LoadDotEnv()
	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The alt screen owns the terminal; only errors may reach stderr.
	closeLog := logging.Setup("error", settings.LogFormat, settings.SeqURL)
	defer closeLog()

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
