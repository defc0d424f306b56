package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/services"
	"github.com/disintegration/imaging"
)

// FrameSource produces the image for each simulated capture.
type FrameSource interface {
	Next(ctx context.Context) (models.Blob, error)
}

// SyntheticFrames renders side-by-side stereo frames: two views of the same scene with a marker shifted between
// them. Each frame uses a different background so consecutive captures are distinguishable.
type SyntheticFrames struct {
	Width   int // Width of one eye view (default: 320)
	Height  int // (default: 240)
	Quality int // JPEG quality (default: 85)

	mu    sync.Mutex
	count int
}

func (s *SyntheticFrames) Next(ctx context.Context) (models.Blob, error) {
	if err := ctx.Err(); err != nil {
		return models.Blob{}, err
	}

	s.mu.Lock()
	s.count++
	n := s.count
	s.mu.Unlock()

	w, h, q := s.Width, s.Height, s.Quality
	if w <= 0 {
		w = 320
	}
	if h <= 0 {
		h = 240
	}
	if q <= 0 || q > 100 {
		q = 85
	}

	bg := color.NRGBA{R: uint8(40 + n*37), G: uint8(90 + n*53), B: 160, A: 255}
	marker := imaging.New(w/8, h/2, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
	markerX := (n * w / 10) % (w - w/8)
	parallax := w / 32

	left := imaging.Paste(imaging.New(w, h, bg), marker, image.Pt(markerX, h/4))
	right := imaging.Paste(imaging.New(w, h, bg), marker, image.Pt(max(markerX-parallax, 0), h/4))

	frame := imaging.New(2*w, h, color.Black)
	frame = imaging.Paste(frame, left, image.Pt(0, 0))
	frame = imaging.Paste(frame, right, image.Pt(w, 0))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, frame, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
		return models.Blob{}, fmt.Errorf("failed to encode frame: %w", err)
	}
	return models.Blob{Name: fmt.Sprintf("frame_%04d.jpg", n), Data: buf.Bytes(), ContentType: "image/jpeg"}, nil
}

// DirectoryFrames cycles through the images in a folder, serving their bytes unchanged.
type DirectoryFrames struct {
	frames []models.Blob

	mu   sync.Mutex
	next int
}

// NewDirectoryFrames loads every decodable image in dir. A folder without images is an error.
func NewDirectoryFrames(ctx context.Context, dir string, logger *log.Logger) (*DirectoryFrames, error) {
	blobs, err := services.NewDirectorySource(dir, logger).Images(ctx)
	if err != nil {
		return nil, err
	}
	if len(blobs) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}
	return &DirectoryFrames{frames: blobs}, nil
}

// Len returns the number of frames in the cycle.
func (d *DirectoryFrames) Len() int { return len(d.frames) }

func (d *DirectoryFrames) Next(ctx context.Context) (models.Blob, error) {
	if err := ctx.Err(); err != nil {
		return models.Blob{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	frame := d.frames[d.next]
	d.next = (d.next + 1) % len(d.frames)
	return frame, nil
}
