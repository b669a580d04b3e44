package youtube

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PlaylistFormat selects the playlist file written after a playlist download.
type PlaylistFormat int

const (
	// FormatM3U writes an extended .m3u file.
	FormatM3U PlaylistFormat = iota

	// FormatPLS writes a .pls file (INI style).
	FormatPLS
)

// Ext returns the file extension for the format.
func (f PlaylistFormat) Ext() string {
	if f == FormatPLS {
		return ".pls"
	}
	return ".m3u"
}

// ParsePlaylistFormat accepts "m3u" and "pls".
func ParsePlaylistFormat(s string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "m3u", "":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	}
	return 0, fmt.Errorf("unknown playlist format %q", s)
}

// Entry is one downloaded playlist item.
type Entry struct {
	Path  string
	Title string
}

// RenderPlaylist returns playlist content for entries. Paths are written
// relative to the playlist, which lives in the same directory.
func RenderPlaylist(format PlaylistFormat, entries []Entry) string {
	var sb strings.Builder

	switch format {
	case FormatPLS:
		sb.WriteString("[playlist]\n")
		for i, e := range entries {
			fmt.Fprintf(&sb, "File%d=%s\n", i+1, filepath.Base(e.Path))
			fmt.Fprintf(&sb, "Title%d=%s\n", i+1, e.Title)
			fmt.Fprintf(&sb, "Length%d=-1\n", i+1)
		}
		fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
		sb.WriteString("Version=2\n")

	default:
		sb.WriteString("#EXTM3U\n")
		for _, e := range entries {
			// -1: length unknown
			fmt.Fprintf(&sb, "#EXTINF:-1,%s\n", e.Title)
			sb.WriteString(filepath.Base(e.Path) + "\n")
		}
	}

	return sb.String()
}

// WritePlaylist writes entries to dir/name plus the format's extension and
// returns the path.
func WritePlaylist(dir, name string, format PlaylistFormat, entries []Entry) (string, error) {
	path := filepath.Join(dir, name+format.Ext())
	if err := os.WriteFile(path, []byte(RenderPlaylist(format, entries)), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
