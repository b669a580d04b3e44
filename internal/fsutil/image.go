package fsutil

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // thumbnails are sometimes served as PNG

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // YouTube serves webp thumbnails too
)

// coverQuality is the JPEG quality used for embedded cover art.
const coverQuality = 90

// ImageService turns downloaded thumbnails into cover art for audio tags.
//
// Example usage:
//
//	svc := NewImageService()
//	thumb, _ := client.DownloadBytes(ctx, youtube.ThumbnailURL(id))
//	cover, _ := svc.ResizeImage(ctx, thumb, 500, 500)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ResizeImage scales an image down to fit within maxWidth x maxHeight,
// keeping its aspect ratio, and returns it JPEG-encoded. Images that already
// fit keep their size but are still re-encoded.
//
// A 1280x720 thumbnail fitted into 500x500 becomes 500x281.
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w, h := fitWithin(src.Bounds().Dx(), src.Bounds().Dy(), maxWidth, maxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	return encodeJPEG(dst)
}

// ConvertToJPEG re-encodes any decodable image (JPEG, PNG, WebP) as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img)
}

// fitWithin returns the largest size with the aspect ratio of w x h that
// does not exceed maxW x maxH. Sizes that already fit are returned as is.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	ratio := float64(w) / float64(h)
	if float64(maxW)/float64(maxH) > ratio {
		return int(float64(maxH) * ratio), maxH
	}
	return maxW, int(float64(maxW) / ratio)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: coverQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
