package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/gobase/internal/config"
	"github.com/handiism/gobase/internal/fsutil"
	"github.com/handiism/gobase/internal/http"
	"github.com/handiism/gobase/internal/retry"
)

// partSuffix marks a file that is still being written.
const partSuffix = ".part"

// ErrSizeMismatch is matched by *VerifyError.
var ErrSizeMismatch = errors.New("download: size verification failed")

// ErrDuplicateTarget is returned by DownloadAll for a request whose local
// path was already claimed by an earlier request of the same batch.
var ErrDuplicateTarget = errors.New("download: duplicate target path in batch")

// VerifyError is returned when a file does not have the expected size. The
// file has already been removed when it is returned.
type VerifyError struct {
	Path     string
	Expected int64
	Actual   int64
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("failed to verify %s: %d bytes, expected %d", e.Path, e.Actual, e.Expected)
}

func (e *VerifyError) Is(target error) bool { return target == ErrSizeMismatch }

// Options controls a single download.
type Options struct {
	// Filename is the local file name. Default: the last segment of the URL path.
	Filename string

	// WorkDir is the directory the file is written into; it is created when
	// missing. Default: "."
	WorkDir string

	// ExpectedBytes, when positive, is compared with the size of the file on
	// disk after the download (or after skipping it).
	ExpectedBytes int64

	// Force downloads even when the file already exists.
	Force bool
}

// ProgressEvent reports bytes received for one file.
type ProgressEvent struct {
	URL     string
	Path    string
	Written int64
	Total   int64 // -1 when the server sent no Content-Length
}

// Downloader fetches files over HTTP into a work directory.
type Downloader struct {
	client      *http.Client
	policy      retry.Policy
	concurrency int
	logger      *slog.Logger

	// progressOut receives a rendered progress bar; nil disables it.
	progressOut io.Writer
	onProgress  func(ProgressEvent)

	requests atomic.Int64
}

// NewDownloader creates a Downloader from settings. onProgress may be nil.
func NewDownloader(settings *config.Settings, onProgress func(ProgressEvent)) *Downloader {
	d := &Downloader{
		client: http.NewClient(http.Options{
			Timeout:   settings.Timeout(),
			UserAgent: settings.UserAgent,
			ChunkSize: settings.ChunkSize,
		}),
		policy:      settings.RetryPolicy(),
		concurrency: settings.MaxConcurrentDownloads,
		logger:      slog.Default().With("component", "download"),
		onProgress:  onProgress,
	}
	if settings.ShowProgress {
		d.progressOut = os.Stderr
	}
	if d.concurrency < 1 {
		d.concurrency = 1
	}
	return d
}

// SetProgressOutput changes where progress bars are drawn; nil disables them.
func (d *Downloader) SetProgressOutput(w io.Writer) {
	d.progressOut = w
}

// RemoteSize asks the server for the size of rawURL with a HEAD request.
func (d *Downloader) RemoteSize(ctx context.Context, rawURL string) (int64, error) {
	return d.client.GetFileSize(ctx, rawURL)
}

// Requests returns how many HTTP transfers this Downloader has started,
// retries included.
func (d *Downloader) Requests() int64 {
	return d.requests.Load()
}

// MaybeDownload downloads rawURL into opts.WorkDir unless the target file is
// already there, and returns the file path.
//
// HTTP-layer failures (non-200 responses) are retried with exponential
// backoff up to the configured number of attempts; other errors are
// returned at once. With ExpectedBytes set, a file of any other size is
// deleted and a *VerifyError is returned.
func (d *Downloader) MaybeDownload(ctx context.Context, rawURL string, opts Options) (string, error) {
	return d.maybeDownload(ctx, rawURL, opts, d.progressOut)
}

// targetPath resolves where rawURL is stored under opts.
func targetPath(rawURL string, opts Options) (string, error) {
	filename := opts.Filename
	if filename == "" {
		var err error
		if filename, err = FilenameFromURL(rawURL); err != nil {
			return "", err
		}
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	return filepath.Join(workDir, filename), nil
}

func (d *Downloader) maybeDownload(ctx context.Context, rawURL string, opts Options, bar io.Writer) (string, error) {
	filePath, err := targetPath(rawURL, opts)
	if err != nil {
		return "", err
	}
	if err := fsutil.EnsureDir(filepath.Dir(filePath)); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}

	log := d.logger.With("url", rawURL, "path", filePath)

	if opts.Force || !fsutil.FileExists(filePath) {
		if err := d.fetch(ctx, rawURL, filePath, log, bar); err != nil {
			return "", err
		}
	} else {
		log.Debug("file already downloaded")
	}

	if opts.ExpectedBytes > 0 {
		if err := verifySize(filePath, opts.ExpectedBytes); err != nil {
			log.Warn("size verification failed", "error", err)
			return "", err
		}
	}

	return filePath, nil
}

// fetch streams rawURL to filePath through a temporary ".part" file.
func (d *Downloader) fetch(ctx context.Context, rawURL, filePath string, log *slog.Logger, barOut io.Writer) error {
	part := filePath + partSuffix

	var bar *ProgressBar
	if barOut != nil {
		bar = NewProgressBar(barOut, filepath.Base(filePath))
	}

	policy := d.policy
	policy.Retryable = IsHTTPError
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Warn("download failed, retrying",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"wait", wait,
			"error", err,
		)
	}

	start := time.Now()
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		d.requests.Add(1)
		return d.client.DownloadFile(ctx, rawURL, part, func(written, total int64) {
			if bar != nil {
				bar.Update(written, total)
			}
			if d.onProgress != nil {
				d.onProgress(ProgressEvent{URL: rawURL, Path: filePath, Written: written, Total: total})
			}
		})
	})
	if bar != nil {
		bar.Done()
	}
	if err != nil {
		os.Remove(part)
		return fmt.Errorf("download %s: %w", rawURL, err)
	}

	if err := os.Rename(part, filePath); err != nil {
		os.Remove(part)
		return fmt.Errorf("move %s into place: %w", part, err)
	}

	log.Info("downloaded", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// verifySize removes filePath and returns a *VerifyError when its size is
// not expected.
func verifySize(filePath string, expected int64) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	if info.Size() == expected {
		return nil
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("remove unverified %s: %w", filePath, err)
	}
	return &VerifyError{Path: filePath, Expected: expected, Actual: info.Size()}
}

// IsHTTPError reports whether err is an HTTP-layer failure (a non-200
// response), the only kind of error MaybeDownload retries.
func IsHTTPError(err error) bool {
	var se *http.StatusError
	return errors.As(err, &se)
}

// FilenameFromURL returns the last segment of the URL path.
func FilenameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("cannot derive a file name from %q", rawURL)
	}
	return fsutil.SanitizeFileName(name), nil
}

// Request is one entry of a batch download.
type Request struct {
	URL     string
	Options Options
}

// Result is the outcome of one Request.
type Result struct {
	Request Request
	Path    string
	Err     error
}

// DownloadAll runs MaybeDownload for every request with at most
// MaxConcurrentDownloads transfers in flight. One failure does not stop the
// others; the returned error joins every failure. Results keep request order.
// A request resolving to the same local path as an earlier one is not
// started and fails with ErrDuplicateTarget.
func (d *Downloader) DownloadAll(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	skip := make([]bool, len(reqs))
	claimed := make(map[string]int, len(reqs))
	for i, req := range reqs {
		p, err := targetPath(req.URL, req.Options)
		if err != nil {
			continue
		}
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if first, ok := claimed[key]; ok {
			skip[i] = true
			results[i] = Result{
				Request: req,
				Err:     fmt.Errorf("%w: %s (also requested by %s)", ErrDuplicateTarget, p, reqs[first].URL),
			}
			continue
		}
		claimed[key] = i
	}

	// Parallel bars on one terminal would overwrite each other.
	bar := d.progressOut
	if d.concurrency > 1 && len(reqs) > 1 {
		bar = nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, req := range reqs {
		if skip[i] {
			continue
		}
		g.Go(func() error {
			p, err := d.maybeDownload(ctx, req.URL, req.Options, bar)
			results[i] = Result{Request: req, Path: p, Err: err}
			return nil
		})
	}
	g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}
