package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/gobase/internal/config"
	"github.com/handiism/gobase/internal/logging"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, settings *config.Settings, args []string) error
}

var commands = []command{
	{"download", "download files over HTTP with retry and size verification", runDownload},
	{"youtube", "download a YouTube video or playlist", runYouTube},
	{"query", "select rows from a SQL table", runQuery},
	{"npy", "save or inspect .npy array files", runNpy},
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "gobase - download, query and array utilities")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  gobase [-config file] [-env file] <command> [flags] [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "For interactive mode, use: gobase-tui")
	fmt.Fprintln(out)
	flag.PrintDefaults()
}

func main() {
	var (
		configFlag = flag.String("config", "", "Path to config file")
		envFlag    = flag.String("env", "", "Path to .env file (default: .env if present)")
		levelFlag  = flag.String("log-level", "", "Log level (overrides config)")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	if *envFlag != "" {
		if !config.LoadDotEnv(*envFlag) {
			fmt.Fprintf(os.Stderr, "Error loading %s\n", *envFlag)
			os.Exit(1)
		}
	} else {
		config.LoadDotEnv()
	}

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *levelFlag != "" {
		settings.LogLevel = *levelFlag
	}

	closeLog := logging.Setup(settings.LogLevel, settings.LogFormat, settings.SeqURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, settings, flag.Args())
	stop()
	closeLog()
	os.Exit(code)
}

func run(ctx context.Context, settings *config.Settings, args []string) int {
	name, rest := args[0], args[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		err := c.run(ctx, settings, rest)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 2
		case ctx.Err() != nil:
			fmt.Fprintln(os.Stderr, "\nCancelled.")
			return 130
		default:
			slog.Error(name+" failed", "error", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	return 2
}
