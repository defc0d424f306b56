// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/mosaic/internal/models"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// ErrDiskFull is returned by [DiskFullWriter] once its budget is spent.
var ErrDiskFull = errors.New("no space left on device")

// DiskFullWriter accepts Budget bytes and then fails like a full disk.
type DiskFullWriter struct {
	Budget  int
	written int
	target  io.Writer
}

func NewDiskFullWriter(budget int, target io.Writer) *DiskFullWriter {
	return &DiskFullWriter{Budget: budget, target: target}
}

func (d *DiskFullWriter) Write(p []byte) (int, error) {
	remaining := d.Budget - d.written
	if remaining <= 0 {
		return 0, ErrDiskFull
	}
	if len(p) > remaining {
		n, _ := d.target.Write(p[:remaining])
		d.written += n
		return n, ErrDiskFull
	}
	n, err := d.target.Write(p)
	d.written += n
	return n, err
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// MustJPEG encodes a small gradient as JPEG.
func MustJPEG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(16, 12), &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// MustPNG encodes a small gradient as PNG.
func MustPNG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, gradient(8, 8)); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// JPEGBlob wraps [MustJPEG] output in a [models.Blob].
func JPEGBlob(t testing.TB) models.Blob {
	t.Helper()
	return models.Blob{Data: MustJPEG(t), ContentType: "image/jpeg"}
}

func gradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

// FakeDevice is a test double for the camera device client.
//
// Gate, when set, blocks TriggerCapture until it is closed so tests can hold a capture in flight.
type FakeDevice struct {
	TriggerErr error
	FetchErr   error
	Image      models.Blob
	Gate       chan struct{}
	Started    chan struct{}

	triggers atomic.Int32
	fetches  atomic.Int32
	once     sync.Once
}

func (d *FakeDevice) TriggerCapture(ctx context.Context) (*models.Ack, error) {
	d.triggers.Add(1)
	if d.Started != nil {
		d.once.Do(func() { close(d.Started) })
	}
	if d.Gate != nil {
		select {
		case <-d.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.TriggerErr != nil {
		return nil, d.TriggerErr
	}
	return &models.Ack{StatusCode: http.StatusOK, ReceivedAt: time.Now()}, nil
}

func (d *FakeDevice) FetchImage(ctx context.Context) (*models.CapturedImage, error) {
	d.fetches.Add(1)
	if d.FetchErr != nil {
		return nil, d.FetchErr
	}
	img := d.Image
	return &img, nil
}

func (d *FakeDevice) Triggers() int { return int(d.triggers.Load()) }
func (d *FakeDevice) Fetches() int  { return int(d.fetches.Load()) }

// FakeLibrary records exports; names listed in FailFor fail with Err.
type FakeLibrary struct {
	Err     error
	FailFor map[string]bool

	mu       sync.Mutex
	exported map[string]models.Blob
}

func (l *FakeLibrary) Name() string { return "fake" }

func (l *FakeLibrary) Export(ctx context.Context, name string, blob models.Blob) error {
	if l.Err != nil && (l.FailFor == nil || l.FailFor[name]) {
		return l.Err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exported == nil {
		l.exported = make(map[string]models.Blob)
	}
	l.exported[name] = blob
	return nil
}

// Exported returns a copy of everything exported so far.
func (l *FakeLibrary) Exported() map[string]models.Blob {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]models.Blob, len(l.exported))
	for k, v := range l.exported {
		out[k] = v
	}
	return out
}

// FakeShare records the blobs handed to it.
type FakeShare struct {
	Err    error
	Shared []models.Blob
	Calls  int
}

func (s *FakeShare) Share(ctx context.Context, blobs []models.Blob) error {
	s.Calls++
	if s.Err != nil {
		return s.Err
	}
	s.Shared = append(s.Shared, blobs...)
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) []byte {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return content
}

func MustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
