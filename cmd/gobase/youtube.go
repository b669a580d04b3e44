package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/handiism/gobase/internal/config"
	"github.com/handiism/gobase/internal/download"
	"github.com/handiism/gobase/internal/youtube"
)

func runYouTube(ctx context.Context, settings *config.Settings, args []string) error {
	fs := flag.NewFlagSet("youtube", flag.ContinueOnError)
	var (
		dir      = fs.String("dir", settings.ExpandWorkDirectory(), "Work directory")
		name     = fs.String("name", "", "Output file name without extension (default: video title)")
		audio    = fs.Bool("audio", settings.AudioOnly, "Extract MP3 audio and tag it")
		playlist = fs.Bool("playlist", false, "Treat the URL as a playlist even when it names a video")
		listFile = fs.String("list-file", "", "After a playlist download, write a playlist file: m3u or pls")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: gobase youtube [flags] URL")
		fmt.Fprintln(fs.Output(), "yt-dlp must be installed and on PATH.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return flag.ErrHelp
	}
	rawURL := fs.Arg(0)

	var bar *download.ProgressBar
	var onProgress func(download.ProgressEvent)
	if settings.ShowProgress {
		bar = download.NewProgressBar(fs.Output(), "youtube")
		onProgress = func(e download.ProgressEvent) { bar.Update(e.Written, e.Total) }
	}

	opts := youtube.Options{WorkDir: *dir, Filename: *name, AudioOnly: *audio}
	if *listFile != "" {
		format, err := youtube.ParsePlaylistFormat(*listFile)
		if err != nil {
			return err
		}
		opts.Playlist = &format
	}

	if _, err := youtube.VideoID(rawURL); *playlist || (err != nil && youtube.IsPlaylist(rawURL)) {
		// Entries run in parallel; one bar would interleave them.
		paths, err := youtube.NewFetcher(settings, nil).DownloadPlaylist(ctx, rawURL, opts)
		for _, p := range paths {
			fmt.Println(p)
		}
		return err
	}

	path, err := youtube.NewFetcher(settings, onProgress).Download(ctx, rawURL, opts)
	if bar != nil {
		bar.Done()
	}
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
