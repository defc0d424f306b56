package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

// DeviceHandler simulates the camera endpoint.
//
// POST /capture takes the next frame from its [FrameSource] and keeps it as the latest image. GET /image returns
// the latest image, or 404 before the first capture. GET /health always returns 200.
type DeviceHandler struct {
	frames FrameSource
	logger *log.Logger
	delay  time.Duration

	mu       sync.RWMutex
	latest   *models.Blob
	captures int
}

// DeviceHandlerOpts contains configuration for a [DeviceHandler].
type DeviceHandlerOpts struct {
	Frames FrameSource   // Defaults to [SyntheticFrames]
	Logger *log.Logger
	Delay  time.Duration // Simulated exposure time added to each capture
}

// NewDeviceHandler creates a simulator with no image yet.
func NewDeviceHandler(opts DeviceHandlerOpts) *DeviceHandler {
	if opts.Frames == nil {
		opts.Frames = &SyntheticFrames{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewQuietLogger()
	}
	return &DeviceHandler{frames: opts.Frames, logger: opts.Logger, delay: opts.Delay}
}

// Routes returns the HTTP routes this handler serves.
func (h *DeviceHandler) Routes() []string {
	return []string{"/capture", "/image", "/health"}
}

// Captures returns how many captures have been taken.
func (h *DeviceHandler) Captures() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.captures
}

func (h *DeviceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/capture":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.capture(w, r)
	case "/image":
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.image(w, r)
	case "/health":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	default:
		http.NotFound(w, r)
	}
}

func (h *DeviceHandler) capture(w http.ResponseWriter, r *http.Request) {
	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-r.Context().Done():
			return
		}
	}

	frame, err := h.frames.Next(r.Context())
	if err != nil {
		h.logger.Error("failed to produce frame", "error", err)
		http.Error(w, "Capture failed", http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	h.latest = &frame
	h.captures++
	n := h.captures
	h.mu.Unlock()

	h.logger.Info("captured frame", "n", n, "frame", frame.Name, "bytes", frame.Size())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Capture triggered"))
}

func (h *DeviceHandler) image(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	latest := h.latest
	h.mu.RUnlock()

	if latest == nil {
		http.Error(w, "No image captured yet", http.StatusNotFound)
		return
	}

	contentType := latest.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(latest.Data)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write(latest.Data)
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// NewDeviceRouter builds a router serving h with request logging and panic recovery.
func NewDeviceRouter(h *DeviceHandler, logger *log.Logger) *BasicRouter {
	if logger == nil {
		logger = shared.NewQuietLogger()
	}
	r := NewBasicRouter()
	r.Use(Recover(logger), Logging(logger))
	r.Handler(h)
	return r
}
