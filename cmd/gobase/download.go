package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/handiism/gobase/internal/config"
	"github.com/handiism/gobase/internal/download"
	"github.com/handiism/gobase/internal/workdir"
)

func runDownload(ctx context.Context, settings *config.Settings, args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	var (
		dir      = fs.String("dir", settings.ExpandWorkDirectory(), "Work directory")
		name     = fs.String("name", "", "Local file name (single URL only; default: last URL path segment)")
		size     = fs.Int64("size", 0, "Expected size in bytes; the file is deleted when it differs")
		force    = fs.Bool("force", false, "Download even when the file exists")
		check    = fs.Bool("check", false, "Download into a temporary directory, verify, then delete")
		noBar    = fs.Bool("no-progress", false, "Hide the progress bar")
		parallel = fs.Int("parallel", settings.MaxConcurrentDownloads, "Concurrent downloads")
		attempts = fs.Int("retries", settings.DownloadMaxRetries, "Attempts per file on HTTP errors")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: gobase download [flags] URL...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}
	if *name != "" && fs.NArg() > 1 {
		return errors.New("-name needs exactly one URL")
	}

	s := *settings
	s.MaxConcurrentDownloads = *parallel
	s.DownloadMaxRetries = *attempts
	if err := s.Validate(); err != nil {
		return err
	}

	target := *dir
	if *check {
		target = ""
	}

	return workdir.With(target, func(wd string) error {
		d := download.NewDownloader(&s, nil)
		if *noBar {
			d.SetProgressOutput(nil)
		}

		reqs := make([]download.Request, fs.NArg())
		for i, u := range fs.Args() {
			expected := *size
			if *check && expected == 0 {
				expected = preflightSize(ctx, d, u)
			}
			reqs[i] = download.Request{URL: u, Options: download.Options{
				Filename:      *name,
				WorkDir:       wd,
				ExpectedBytes: expected,
				Force:         *force,
			}}
		}

		results, err := d.DownloadAll(ctx, reqs)
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", r.Request.URL, r.Err)
				continue
			}
			if info, statErr := os.Stat(r.Path); statErr == nil {
				fmt.Printf("OK   %s (%d bytes)\n", r.Path, info.Size())
			}
		}
		if *check && err == nil {
			fmt.Println("Verified; temporary files removed.")
		}
		return err
	})
}

// preflightSize returns the size the server announces for u, or 0 when it
// cannot tell, in which case the size is not verified.
func preflightSize(ctx context.Context, d *download.Downloader, u string) int64 {
	n, err := d.RemoteSize(ctx, u)
	if err != nil {
		slog.Warn("size check skipped", "url", u, "error", err)
		return 0
	}
	fmt.Printf("HEAD %s: %d bytes\n", u, n)
	return n
}
