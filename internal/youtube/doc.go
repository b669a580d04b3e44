// Package youtube downloads YouTube videos and playlists.
//
// Downloads go through yt-dlp (lrstanley/go-ytdlp) and always pick the
// highest-resolution stream. Playlists are listed with ytget/ytdlp without
// spawning yt-dlp. Audio-only downloads are converted to MP3 and tagged
// with the title, the channel and the video thumbnail as front cover.
//
//	f := youtube.NewFetcher(settings, nil)
//	path, err := f.Download(ctx, "https://youtu.be/dQw4w9WgXcQ", youtube.Options{WorkDir: dir})
package youtube
