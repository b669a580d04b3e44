package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotYouTube is returned for URLs that do not point at YouTube.
var ErrNotYouTube = errors.New("youtube: not a YouTube URL")

const (
	videoURLTemplate     = "https://www.youtube.com/watch?v=%s"
	thumbnailURLTemplate = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)

// VideoID extracts the video ID from the usual YouTube URL forms:
//
//	https://www.youtube.com/watch?v=ID
//	https://youtu.be/ID
//	https://www.youtube.com/shorts/ID
//	https://www.youtube.com/embed/ID
//	https://www.youtube.com/live/ID
func VideoID(rawURL string) (string, error) {
	u, err := parse(rawURL)
	if err != nil {
		return "", err
	}

	if u.Hostname() == "youtu.be" {
		if id := firstSegment(u.Path); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("no video id in %q", rawURL)
	}

	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	for _, prefix := range []string{"/shorts/", "/embed/", "/live/", "/v/"} {
		if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
			if id := firstSegment(rest); id != "" {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("no video id in %q", rawURL)
}

// PlaylistID returns the value of the list parameter.
func PlaylistID(rawURL string) (string, error) {
	u, err := parse(rawURL)
	if err != nil {
		return "", err
	}
	id := u.Query().Get("list")
	if id == "" {
		return "", fmt.Errorf("no playlist id in %q", rawURL)
	}
	return id, nil
}

// IsPlaylist reports whether rawURL names a playlist.
func IsPlaylist(rawURL string) bool {
	_, err := PlaylistID(rawURL)
	return err == nil
}

// VideoURL returns the watch URL for a video ID.
func VideoURL(id string) string {
	return fmt.Sprintf(videoURLTemplate, id)
}

// ThumbnailURL returns the 480x360 thumbnail, which exists for every video.
func ThumbnailURL(id string) string {
	return fmt.Sprintf(thumbnailURLTemplate, id)
}

func parse(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	switch host {
	case "youtube.com", "music.youtube.com", "youtu.be", "youtube-nocookie.com":
		return u, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotYouTube, rawURL)
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
