package youtube

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&list=PL123&index=2", "dQw4w9WgXcQ", false},
		{"https://m.youtube.com/watch?v=abc", "abc", false},
		{"https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/shorts/xyz987", "xyz987", false},
		{"https://www.youtube.com/embed/e1/", "e1", false},
		{"https://www.youtube.com/live/l1", "l1", false},
		{"https://www.youtube.com/playlist?list=PL123", "", true},
		{"https://youtu.be/", "", true},
		{"https://vimeo.com/12345", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := VideoID(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VideoID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("VideoID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVideoID_NotYouTube(t *testing.T) {
	_, err := VideoID("https://example.com/watch?v=abc")
	if !errors.Is(err, ErrNotYouTube) {
		t.Errorf("error = %v, want ErrNotYouTube", err)
	}
}

func TestPlaylistID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/playlist?list=PLAYLIST_ID", "PLAYLIST_ID", false},
		{"https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&index=1", "PLAYLIST_ID", false},
		{"https://www.youtube.com/watch?v=VIDEO_ID", "", true},
		{"https://example.com/watch?v=VIDEO_ID&list=PLAYLIST_ID", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := PlaylistID(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PlaylistID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PlaylistID() = %q, want %q", got, tt.want)
			}
			if IsPlaylist(tt.url) == tt.wantErr {
				t.Errorf("IsPlaylist() = %v", !tt.wantErr)
			}
		})
	}
}

func TestThumbnailURL(t *testing.T) {
	want := "https://i.ytimg.com/vi/abc/hqdefault.jpg"
	if got := ThumbnailURL("abc"); got != want {
		t.Errorf("ThumbnailURL() = %q, want %q", got, want)
	}
	if got := VideoURL("abc"); got != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("VideoURL() = %q", got)
	}
}

func TestOutputTemplate(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"", "%(title)s.%(ext)s"},
		{"clip", "clip.%(ext)s"},
		{"clip.mp4", "clip.%(ext)s"},
		{"v1.2 final", "v1.2 final.%(ext)s"},
		{"a/b: 100%", "a_b_ 100%%.%(ext)s"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := outputTemplate(tt.filename); got != tt.want {
				t.Errorf("outputTemplate(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestTagger_SaveTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	cover := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	meta := Metadata{
		Title:   "Never Gonna Give You Up",
		Artist:  "Rick Astley",
		Comment: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	if err := NewTagger(true).SaveTags(path, meta, cover); err != nil {
		t.Fatalf("SaveTags() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if tag.Title() != meta.Title {
		t.Errorf("Title = %q, want %q", tag.Title(), meta.Title)
	}
	if tag.Artist() != meta.Artist {
		t.Errorf("Artist = %q, want %q", tag.Artist(), meta.Artist)
	}

	pics := tag.GetFrames(tag.CommonID("Attached picture"))
	if len(pics) != 1 {
		t.Fatalf("got %d pictures, want 1", len(pics))
	}
	pic, ok := pics[0].(id3v2.PictureFrame)
	if !ok {
		t.Fatalf("frame is %T", pics[0])
	}
	if pic.PictureType != id3v2.PTFrontCover || len(pic.Picture) != len(cover) {
		t.Errorf("picture = type %d, %d bytes", pic.PictureType, len(pic.Picture))
	}
}

func TestTagger_CoverOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewTagger(false).SaveTags(path, Metadata{Title: "ignored"}, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if tag.Title() != "" {
		t.Errorf("Title = %q, want empty", tag.Title())
	}
	if n := len(tag.GetFrames(tag.CommonID("Attached picture"))); n != 1 {
		t.Errorf("got %d pictures, want 1", n)
	}
}
