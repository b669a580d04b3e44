package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	goytdlp "github.com/lrstanley/go-ytdlp"
	"github.com/ytget/ytdlp/v2"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/gobase/internal/config"
	"github.com/handiism/gobase/internal/download"
	"github.com/handiism/gobase/internal/fsutil"
	"github.com/handiism/gobase/internal/http"
)

// Format selection: best video plus best audio, falling back to the best
// single file, sorted by resolution.
const (
	bestFormat  = "bv*+ba/b"
	formatSort  = "res"
	audioFormat = "mp3"

	progressInterval = 500 * time.Millisecond

	// fileMarker prefixes the line yt-dlp prints once the final file is in
	// place: path, uploader and title separated by tabs.
	fileMarker   = "gobase-file:"
	fileTemplate = "after_move:" + fileMarker + "%(filepath)s\t%(uploader)s\t%(title)s"
)

// playlistItem is one entry of a listed playlist.
type playlistItem struct {
	VideoID string
	Title   string
}

// Options controls a single video download.
type Options struct {
	// Filename is the output name without extension. Default: the video title.
	Filename string

	// WorkDir is created when missing. Default: "."
	WorkDir string

	// AudioOnly extracts an MP3 and tags it.
	AudioOnly bool

	// Playlist, when set, makes DownloadPlaylist write a playlist file of
	// that format named after the playlist ID.
	Playlist *PlaylistFormat
}

// Fetcher downloads YouTube videos with yt-dlp, which must be on PATH.
type Fetcher struct {
	client      *http.Client
	images      *fsutil.ImageService
	tagger      *Tagger
	coverSize   int
	concurrency int
	onProgress  func(download.ProgressEvent)
	logger      *slog.Logger

	thumbnailURL func(id string) string
	listPlaylist func(ctx context.Context, listID string) ([]playlistItem, error)
}

// NewFetcher creates a Fetcher from settings. onProgress may be nil.
func NewFetcher(settings *config.Settings, onProgress func(download.ProgressEvent)) *Fetcher {
	f := &Fetcher{
		client: http.NewClient(http.Options{
			Timeout:   settings.Timeout(),
			UserAgent: settings.UserAgent,
			ChunkSize: settings.ChunkSize,
		}),
		images:      fsutil.NewImageService(),
		tagger:      NewTagger(settings.ModifyTags),
		coverSize:   settings.CoverArtMaxSize,
		concurrency: max(settings.MaxConcurrentDownloads, 1),
		onProgress:  onProgress,
		logger:      slog.Default().With("component", "youtube"),

		thumbnailURL: ThumbnailURL,
		listPlaylist: listPlaylistItems,
	}
	return f
}

// listPlaylistItems lists a playlist through the YouTube web API without
// running yt-dlp.
func listPlaylistItems(ctx context.Context, listID string) ([]playlistItem, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, listID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]playlistItem, len(items))
	for i, it := range items {
		out[i] = playlistItem{VideoID: it.VideoID, Title: it.Title}
	}
	return out, nil
}

// Download fetches the highest-resolution stream of the video at rawURL
// into opts.WorkDir and returns the written file path.
func (f *Fetcher) Download(ctx context.Context, rawURL string, opts Options) (string, error) {
	id, err := VideoID(rawURL)
	if err != nil {
		return "", err
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	if err := fsutil.EnsureDir(workDir); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}

	log := f.logger.With("video", id)
	dl := f.command(rawURL, workDir, opts)

	start := time.Now()
	result, err := dl.Run(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("yt-dlp %s: %w", rawURL, err)
	}

	out, ok := parseFileLine(result.Stdout)
	if !ok {
		return "", errors.New("yt-dlp reported no output file")
	}

	path := out.path
	if opts.AudioOnly {
		meta := Metadata{Title: out.title, Artist: out.uploader, Comment: VideoURL(id)}
		if err := f.tag(ctx, path, id, meta); err != nil {
			return "", err
		}
	}

	log.Info("downloaded", "path", path, "duration", time.Since(start).Round(time.Millisecond))
	return path, nil
}

func (f *Fetcher) command(rawURL, workDir string, opts Options) *goytdlp.Command {
	dl := goytdlp.New().
		NoPlaylist().
		RestrictFilenames().
		Format(bestFormat).
		FormatSort(formatSort).
		Print(fileTemplate).
		Output(filepath.Join(workDir, outputTemplate(opts.Filename)))

	if opts.AudioOnly {
		dl = dl.ExtractAudio().AudioFormat(audioFormat)
	}

	if f.onProgress != nil {
		dl.ProgressFunc(progressInterval, func(update goytdlp.ProgressUpdate) {
			f.onProgress(download.ProgressEvent{
				URL:     rawURL,
				Written: int64(update.DownloadedBytes),
				Total:   int64(update.TotalBytes),
			})
		})
	}
	return dl
}

// tag writes meta and the resized video thumbnail into the MP3 at path. A
// missing thumbnail only costs the cover.
func (f *Fetcher) tag(ctx context.Context, path, id string, meta Metadata) error {
	cover, err := f.cover(ctx, id)
	if err != nil {
		f.logger.Warn("no cover art", "video", id, "error", err)
	}
	if err := f.tagger.SaveTags(path, meta, cover); err != nil {
		return fmt.Errorf("tag %s: %w", path, err)
	}
	return nil
}

func (f *Fetcher) cover(ctx context.Context, id string) ([]byte, error) {
	data, err := f.client.DownloadBytes(ctx, f.thumbnailURL(id))
	if err != nil {
		return nil, err
	}
	if f.coverSize > 0 {
		return f.images.ResizeImage(ctx, data, f.coverSize, f.coverSize)
	}
	return f.images.ConvertToJPEG(ctx, data)
}

// DownloadPlaylist lists the playlist at rawURL and downloads every entry
// into opts.WorkDir, named by title. Entries fail independently; the
// returned error joins every failure and paths holds the successes in
// playlist order.
func (f *Fetcher) DownloadPlaylist(ctx context.Context, rawURL string, opts Options) ([]string, error) {
	listID, err := PlaylistID(rawURL)
	if err != nil {
		return nil, err
	}

	items, err := f.listPlaylist(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("list playlist %s: %w", listID, err)
	}
	f.logger.Info("playlist listed", "playlist", listID, "videos", len(items))

	entries := make([]Entry, len(items))
	errs := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, it := range items {
		g.Go(func() error {
			entry := Options{WorkDir: opts.WorkDir, AudioOnly: opts.AudioOnly}
			p, err := f.Download(gctx, VideoURL(it.VideoID), entry)
			if err != nil {
				errs[i] = fmt.Errorf("%s (%s): %w", it.Title, it.VideoID, err)
				return nil
			}
			entries[i] = Entry{Path: p, Title: it.Title}
			return nil
		})
	}
	g.Wait()

	var done []Entry
	for _, e := range entries {
		if e.Path != "" {
			done = append(done, e)
		}
	}

	if opts.Playlist != nil && len(done) > 0 {
		dir := opts.WorkDir
		if dir == "" {
			dir = "."
		}
		p, err := WritePlaylist(dir, fsutil.SanitizeFileName(listID), *opts.Playlist, done)
		if err != nil {
			errs = append(errs, fmt.Errorf("write playlist: %w", err))
		} else {
			f.logger.Info("playlist written", "path", p, "entries", len(done))
		}
	}

	paths := make([]string, len(done))
	for i, e := range done {
		paths[i] = e.Path
	}
	return paths, errors.Join(errs...)
}

type fileLine struct {
	path     string
	uploader string
	title    string
}

// parseFileLine finds the line printed by fileTemplate in yt-dlp's stdout.
// With several matches the last one wins. yt-dlp prints "NA" for missing
// fields.
func parseFileLine(stdout string) (fileLine, bool) {
	var out fileLine
	found := false
	for _, line := range strings.Split(stdout, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimRight(line, "\r"), fileMarker)
		if !ok {
			continue
		}
		parts := strings.SplitN(rest, "\t", 3)
		if parts[0] == "" {
			continue
		}
		out = fileLine{path: parts[0]}
		if len(parts) > 1 && parts[1] != "NA" {
			out.uploader = parts[1]
		}
		if len(parts) > 2 && parts[2] != "NA" {
			out.title = parts[2]
		}
		found = true
	}
	return out, found
}

// mediaExts are dropped from Options.Filename; yt-dlp picks the extension.
var mediaExts = map[string]bool{
	".mp4": true, ".mkv": true, ".webm": true, ".mp3": true, ".m4a": true, ".opus": true,
}

// outputTemplate returns the yt-dlp output template for a file name.
func outputTemplate(filename string) string {
	if filename == "" {
		return "%(title)s.%(ext)s"
	}
	name := filename
	if mediaExts[strings.ToLower(filepath.Ext(name))] {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	name = fsutil.SanitizeFileName(name)
	// A literal % would be read as a template field.
	name = strings.ReplaceAll(name, "%", "%%")
	return name + ".%(ext)s"
}
