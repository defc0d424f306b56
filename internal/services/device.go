package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

const (
	defaultDeviceURL     = "http://127.0.0.1:5000"
	defaultMaxImageBytes = 32 << 20
)

// DeviceOpts contains configuration for a [DeviceService].
type DeviceOpts struct {
	BaseURL       string       // Device root, e.g. http://raspberrypi.local:5000
	Client        *http.Client // Its Timeout bounds every call (default: http.DefaultClient)
	MaxImageBytes int64        // Larger image bodies are rejected (default: 32 MiB)
	Logger        *log.Logger
}

// DeviceService talks to the remote camera over HTTP. It keeps no state between calls and never retries.
type DeviceService struct {
	baseURL    string
	httpClient *http.Client
	maxBytes   int64
	logger     *log.Logger
}

// NewDeviceService creates a device client.
func NewDeviceService(opts DeviceOpts) *DeviceService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultDeviceURL
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = defaultMaxImageBytes
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewQuietLogger()
	}

	return &DeviceService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.Client,
		maxBytes:   opts.MaxImageBytes,
		logger:     opts.Logger,
	}
}

// BaseURL returns the device root URL.
func (d *DeviceService) BaseURL() string { return d.baseURL }

// TriggerCapture sends POST /capture. The response body is ignored.
func (d *DeviceService) TriggerCapture(ctx context.Context) (*models.Ack, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/capture", nil)
	if err != nil {
		return nil, &shared.NetworkError{Kind: shared.Transport, Op: "trigger", Err: err}
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, &shared.NetworkError{Kind: shared.Transport, Op: "trigger", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		return nil, &shared.NetworkError{Kind: shared.Transport, Op: "trigger", StatusCode: resp.StatusCode}
	}

	d.logger.Debug("capture triggered", "url", d.baseURL)
	return &models.Ack{StatusCode: resp.StatusCode, ReceivedAt: time.Now()}, nil
}

// FetchImage sends GET /image and checks that the body is a decodable image.
func (d *DeviceService) FetchImage(ctx context.Context) (*models.CapturedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/image", nil)
	if err != nil {
		return nil, &shared.NetworkError{Kind: shared.Transport, Op: "fetch", Err: err}
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, &shared.NetworkError{Kind: shared.Transport, Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &shared.NetworkError{Kind: shared.Transport, Op: "fetch", StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, &shared.NetworkError{Kind: shared.Transport, Op: "fetch", StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(data)) > d.maxBytes {
		return nil, &shared.NetworkError{
			Kind:       shared.Decode,
			Op:         "fetch",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("image exceeds %d bytes", d.maxBytes),
		}
	}

	contentType, err := DetectImage(data)
	if err != nil {
		return nil, &shared.NetworkError{
			Kind:       shared.Decode,
			Op:         "fetch",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	d.logger.Debug("image fetched", "bytes", len(data), "type", contentType)
	return &models.CapturedImage{Data: data, ContentType: contentType}, nil
}
