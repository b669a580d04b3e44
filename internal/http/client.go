package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultChunkSize is the number of bytes copied per read while streaming a body.
const DefaultChunkSize = 1024

// maxErrorBody bounds how much of an error response is kept in StatusError.
const maxErrorBody = 4096

// Options configures the HTTP client.
type Options struct {
	// Timeout for a whole request, body included.
	// Default: 60s
	Timeout time.Duration

	// UserAgent sent with every request.
	// Default: "gobase"
	UserAgent string

	// ChunkSize is the copy buffer size used by DownloadFile.
	// Default: 1024
	ChunkSize int
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:   60 * time.Second,
		UserAgent: "gobase",
		ChunkSize: DefaultChunkSize,
	}
}

// StatusError is returned when the server answers with anything but 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: HTTP %s", e.URL, e.Status)
	}
	return fmt.Sprintf("GET %s: HTTP %s: %s", e.URL, e.Status, e.Body)
}

// Client wraps HTTP operations with download-oriented configuration.
//
// Example usage:
//
//	client := NewClient(DefaultOptions())
//
//	// Fetch a small document
//	body, err := client.Get(ctx, "https://example.com/LICENSE")
//
//	// Stream a large file to disk
//	err = client.DownloadFile(ctx, url, "/data/file.bin", nil)
type Client struct {
	httpClient *http.Client
	userAgent  string
	chunkSize  int
}

// NewClient creates a new HTTP client. Zero fields in opts take their defaults.
func NewClient(opts Options) *Client {
	d := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = d.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = d.UserAgent
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = d.ChunkSize
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent: opts.UserAgent,
		chunkSize: opts.ChunkSize,
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header, -1 if unknown).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// do sends a request and returns the response only when it is 200 OK.
// The caller owns the response body.
func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return resp, nil
}

// Get performs a GET request and returns the response body as bytes.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
//
// Returns an error if the request fails or the server doesn't send a
// Content-Length header.
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}

	return resp.ContentLength, nil
}

// DownloadFile streams url into destPath with an optional progress callback.
//
// The file is created (or truncated) only after the server answered 200 OK,
// so a failed request leaves nothing behind. The body is copied in chunks
// of the configured ChunkSize. On a copy error the partial file is removed.
//
// onProgress receives (bytesWritten, totalBytes); totalBytes is -1 when the
// server did not announce a length. Pass nil to disable progress tracking.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	buf := make([]byte, c.chunkSize)
	_, copyErr := io.CopyBuffer(onlyWriter{writer}, resp.Body, buf)
	closeErr := file.Close()

	if copyErr != nil || closeErr != nil {
		os.Remove(destPath)
		if copyErr != nil {
			return fmt.Errorf("write %s: %w", destPath, copyErr)
		}
		return closeErr
	}
	return nil
}

// DownloadBytes downloads a small file and returns the bytes in memory.
//
// Use this for thumbnails and similar; large files should go through
// DownloadFile.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}

// onlyWriter hides ReadFrom so io.CopyBuffer really uses the chunk buffer.
type onlyWriter struct {
	io.Writer
}
