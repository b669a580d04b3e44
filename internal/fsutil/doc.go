// Package fsutil provides file system and image helpers shared by the
// downloaders.
//
// # File Operations
//
//	err := fsutil.EnsureDir("/data/raw")
//	ok := fsutil.FileExists("/data/raw/LICENSE")
//	safe := fsutil.SanitizeFileName("Video: Part 1/2") // "Video_ Part 1_2"
//
// # Image Processing
//
// ImageService turns video thumbnails into cover art:
//
//	svc := fsutil.NewImageService()
//	cover, _ := svc.ResizeImage(ctx, thumbnail, 500, 500)
package fsutil
