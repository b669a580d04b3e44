package youtube

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{Path: "/music/First_Song.mp3", Title: "First Song"},
		{Path: "/music/Second_Song.mp3", Title: "Second Song"},
	}
}

func TestRenderPlaylist_M3U(t *testing.T) {
	content := RenderPlaylist(FormatM3U, testEntries())

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:-1,First Song\nFirst_Song.mp3\n") {
		t.Errorf("M3U entry missing:\n%s", content)
	}
	if strings.Contains(content, "/music/") {
		t.Error("paths should be relative to the playlist")
	}
}

func TestRenderPlaylist_PLS(t *testing.T) {
	content := RenderPlaylist(FormatPLS, testEntries())

	for _, want := range []string{"[playlist]\n", "File2=Second_Song.mp3\n", "Title1=First Song\n", "NumberOfEntries=2\n", "Version=2\n"} {
		if !strings.Contains(content, want) {
			t.Errorf("PLS missing %q:\n%s", want, content)
		}
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    PlaylistFormat
		wantErr bool
	}{
		{"m3u", FormatM3U, false},
		{".PLS", FormatPLS, false},
		{"", FormatM3U, false},
		{"wpl", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePlaylistFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePlaylistFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestWritePlaylist(t *testing.T) {
	dir := t.TempDir()
	path, err := WritePlaylist(dir, "PL123", FormatPLS, testEntries())
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "PL123.pls") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != RenderPlaylist(FormatPLS, testEntries()) {
		t.Error("file content differs from RenderPlaylist")
	}
}
