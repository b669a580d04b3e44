// Package http provides the HTTP client used by the downloaders.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Timeout handling
//   - Streaming downloads in fixed-size chunks with progress tracking
//   - File size retrieval via HEAD requests
//
// Any response other than 200 OK is reported as a *StatusError, which the
// download package treats as the retryable HTTP-layer failure. Transport
// errors (DNS, refused connections, timeouts) are returned as they come
// from net/http.
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	// Download file with progress callback
//	err := client.DownloadFile(ctx, url, "/tmp/file.bin", func(written, total int64) {
//	    fmt.Printf("%d/%d\n", written, total)
//	})
//
//	var se *http.StatusError
//	if errors.As(err, &se) {
//	    fmt.Println(se.StatusCode, se.Body)
//	}
package http
