package download

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/handiism/gobase/internal/config"
	dlhttp "github.com/handiism/gobase/internal/http"
	"github.com/handiism/gobase/internal/retry"
)

// testDownloader returns a Downloader that retries without waiting.
func testDownloader(t *testing.T) *Downloader {
	t.Helper()
	settings := config.DefaultSettings()
	settings.ShowProgress = false
	settings.DownloadRetryCooldown = 0
	settings.DownloadRetryJitter = false
	return NewDownloader(settings, nil)
}

// countingServer serves body and counts GET requests.
func countingServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestMaybeDownload_SkipsExistingFile(t *testing.T) {
	srv, hits := countingServer(t, "hello world")
	d := testDownloader(t)
	dir := t.TempDir()

	opts := Options{Filename: "hello.txt", WorkDir: dir}
	first, err := d.MaybeDownload(context.Background(), srv.URL+"/hello.txt", opts)
	if err != nil {
		t.Fatalf("first MaybeDownload() error = %v", err)
	}
	second, err := d.MaybeDownload(context.Background(), srv.URL+"/hello.txt", opts)
	if err != nil {
		t.Fatalf("second MaybeDownload() error = %v", err)
	}

	if first != second {
		t.Errorf("paths differ: %q vs %q", first, second)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
	if got := d.Requests(); got != 1 {
		t.Errorf("Requests() = %d, want 1", got)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world" {
		t.Errorf("content = %q", data)
	}
}

func TestMaybeDownload_Force(t *testing.T) {
	srv, hits := countingServer(t, "fresh")
	d := testDownloader(t)
	dir := t.TempDir()

	stale := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, err := d.MaybeDownload(context.Background(), srv.URL+"/data.bin", Options{WorkDir: dir, Force: true})
	if err != nil {
		t.Fatalf("MaybeDownload() error = %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}
	data, _ := os.ReadFile(path)
	if string(data) != "fresh" {
		t.Errorf("content = %q, want %q", data, "fresh")
	}
}

func TestMaybeDownload_CreatesWorkDir(t *testing.T) {
	srv, _ := countingServer(t, "abc")
	d := testDownloader(t)
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	path, err := d.MaybeDownload(context.Background(), srv.URL+"/files/report.csv", Options{WorkDir: dir})
	if err != nil {
		t.Fatalf("MaybeDownload() error = %v", err)
	}
	if want := filepath.Join(dir, "report.csv"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if _, err := os.Stat(path + partSuffix); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestMaybeDownload_SizeMismatch(t *testing.T) {
	srv, _ := countingServer(t, "0123456789")
	d := testDownloader(t)
	dir := t.TempDir()

	_, err := d.MaybeDownload(context.Background(), srv.URL+"/ten.bin", Options{WorkDir: dir, ExpectedBytes: 20})
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("error = %v, want ErrSizeMismatch", err)
	}
	if IsHTTPError(err) {
		t.Error("size mismatch reported as an HTTP error")
	}

	var verr *VerifyError
	if !errors.As(err, &verr) {
		t.Fatalf("error %T is not *VerifyError", err)
	}
	if verr.Expected != 20 || verr.Actual != 10 {
		t.Errorf("VerifyError = %+v", verr)
	}
	if _, err := os.Stat(filepath.Join(dir, "ten.bin")); !os.IsNotExist(err) {
		t.Errorf("unverified file was not removed: %v", err)
	}
}

func TestMaybeDownload_SizeMatches(t *testing.T) {
	srv, _ := countingServer(t, "0123456789")
	d := testDownloader(t)

	if _, err := d.MaybeDownload(context.Background(), srv.URL+"/ten.bin", Options{WorkDir: t.TempDir(), ExpectedBytes: 10}); err != nil {
		t.Fatalf("MaybeDownload() error = %v", err)
	}
}

func TestMaybeDownload_RetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := testDownloader(t)
	path, err := d.MaybeDownload(context.Background(), srv.URL+"/ok.txt", Options{WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("MaybeDownload() error = %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("server hits = %d, want 3", hits.Load())
	}
	if data, _ := os.ReadFile(path); string(data) != "ok" {
		t.Errorf("content = %q", data)
	}
}

func TestMaybeDownload_RetryBound(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"service unavailable", http.StatusServiceUnavailable},
		{"not found", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			d := testDownloader(t)
			dir := t.TempDir()
			_, err := d.MaybeDownload(context.Background(), srv.URL+"/x.bin", Options{WorkDir: dir})

			var exhausted *retry.ExhaustedError
			if !errors.As(err, &exhausted) {
				t.Fatalf("error = %v, want *retry.ExhaustedError", err)
			}
			var se *dlhttp.StatusError
			if !errors.As(err, &se) || se.StatusCode != tt.status {
				t.Errorf("error = %v, want status %d", err, tt.status)
			}
			if got := hits.Load(); got != 5 {
				t.Errorf("server hits = %d, want 5", got)
			}

			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("work dir not empty after failure: %v", entries)
			}
		})
	}
}

func TestMaybeDownload_TransportErrorNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL + "/gone.bin"
	srv.Close()

	d := testDownloader(t)
	_, err := d.MaybeDownload(context.Background(), url, Options{WorkDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := d.Requests(); got != 1 {
		t.Errorf("Requests() = %d, want 1", got)
	}
}

func TestMaybeDownload_ProgressCallback(t *testing.T) {
	body := strings.Repeat("z", 4096)
	srv, _ := countingServer(t, body)

	settings := config.DefaultSettings()
	settings.ShowProgress = false
	var last ProgressEvent
	d := NewDownloader(settings, func(e ProgressEvent) { last = e })

	var out bytes.Buffer
	d.SetProgressOutput(&out)

	if _, err := d.MaybeDownload(context.Background(), srv.URL+"/z.bin", Options{WorkDir: t.TempDir()}); err != nil {
		t.Fatal(err)
	}
	if last.Written != int64(len(body)) {
		t.Errorf("last progress = %d, want %d", last.Written, len(body))
	}
	if !strings.Contains(out.String(), "z.bin") {
		t.Errorf("progress output missing label: %q", out.String())
	}
	if !strings.Contains(out.String(), "4/4 KB") {
		t.Errorf("progress output missing counter: %q", out.String())
	}
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://example.com/data/train.csv", "train.csv", false},
		{"https://example.com/a/b.tar.gz?token=1", "b.tar.gz", false},
		{"https://example.com/", "", true},
		{"https://example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := FilenameFromURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FilenameFromURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FilenameFromURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDownloadAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	d := testDownloader(t)
	dir := t.TempDir()
	reqs := []Request{
		{URL: srv.URL + "/one", Options: Options{WorkDir: dir}},
		{URL: srv.URL + "/missing", Options: Options{WorkDir: dir}},
		{URL: srv.URL + "/two", Options: Options{WorkDir: dir}},
	}

	results, err := d.DownloadAll(context.Background(), reqs)
	if err == nil {
		t.Fatal("expected joined error for the missing file")
	}
	if len(results) != len(reqs) {
		t.Fatalf("got %d results, want %d", len(results), len(reqs))
	}

	for i, want := range []string{"/one", "", "/two"} {
		r := results[i]
		if r.Request.URL != reqs[i].URL {
			t.Errorf("result %d out of order: %s", i, r.Request.URL)
		}
		if want == "" {
			if r.Err == nil {
				t.Errorf("result %d: expected error", i)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("result %d: %v", i, r.Err)
			continue
		}
		data, _ := os.ReadFile(r.Path)
		if string(data) != want {
			t.Errorf("result %d content = %q, want %q", i, data, want)
		}
	}
}

func TestDownloadAll_DuplicateTarget(t *testing.T) {
	srv, hits := countingServer(t, "same")
	d := testDownloader(t)
	d.concurrency = 4
	dir := t.TempDir()

	reqs := []Request{
		{URL: srv.URL + "/a/file.bin", Options: Options{WorkDir: dir}},
		{URL: srv.URL + "/b/file.bin", Options: Options{WorkDir: dir}},
		{URL: srv.URL + "/c/other.bin", Options: Options{WorkDir: dir, Filename: "file.bin"}},
		{URL: srv.URL + "/d/file.bin", Options: Options{WorkDir: filepath.Join(dir, "sub")}},
	}

	results, err := d.DownloadAll(context.Background(), reqs)
	if !errors.Is(err, ErrDuplicateTarget) {
		t.Fatalf("DownloadAll() error = %v, want ErrDuplicateTarget", err)
	}

	tests := []struct {
		name string
		dup  bool
	}{
		{"first claim", false},
		{"same name from URL", true},
		{"same explicit filename", true},
		{"different directory", false},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := results[i]
			if tt.dup {
				if !errors.Is(r.Err, ErrDuplicateTarget) {
					t.Errorf("Err = %v, want ErrDuplicateTarget", r.Err)
				}
				if r.Path != "" {
					t.Errorf("Path = %q, want empty", r.Path)
				}
				return
			}
			if r.Err != nil {
				t.Fatalf("Err = %v", r.Err)
			}
			if data, _ := os.ReadFile(r.Path); string(data) != "same" {
				t.Errorf("content = %q", data)
			}
		})
	}

	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "file.bin"+partSuffix)); !os.IsNotExist(err) {
		t.Errorf("leftover part file: %v", err)
	}
}

func TestDownloader_RemoteSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Length", "2048")
	}))
	defer srv.Close()

	d := testDownloader(t)
	size, err := d.RemoteSize(context.Background(), srv.URL+"/blob")
	if err != nil {
		t.Fatalf("RemoteSize() error = %v", err)
	}
	if size != 2048 {
		t.Errorf("RemoteSize() = %d, want 2048", size)
	}
	if got := d.Requests(); got != 0 {
		t.Errorf("Requests() = %d, want 0 for a HEAD", got)
	}
}
