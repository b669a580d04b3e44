// Package download fetches remote files into a work directory.
//
// # Downloader
//
// MaybeDownload is idempotent: a file that is already present in the work
// directory is not requested again unless Options.Force is set.
//
//	d := download.NewDownloader(settings, nil)
//	path, err := d.MaybeDownload(ctx, "https://example.com/data/train.csv", download.Options{
//	    WorkDir:       "data",
//	    ExpectedBytes: 1 << 20,
//	})
//
// # Retry Logic
//
// Non-200 responses are retried with exponential backoff, configured by
// settings.DownloadMaxRetries, settings.DownloadRetryCooldown and
// settings.DownloadRetryExponent. Transport errors fail at once.
//
// # Verification
//
// When ExpectedBytes is set and the file on disk has another size, the file
// is deleted and a *VerifyError is returned. It matches ErrSizeMismatch:
//
//	if errors.Is(err, download.ErrSizeMismatch) {
//	    // corrupt or truncated
//	}
//
// # Concurrency
//
// DownloadAll runs a batch with at most settings.MaxConcurrentDownloads
// transfers in flight.
package download
