package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/mosaic/internal/shared"
	tu "github.com/desertthunder/mosaic/internal/testing"
)

func TestDeviceService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			srv := NewDeviceService(DeviceOpts{})

			if srv.BaseURL() != defaultDeviceURL {
				t.Errorf("expected default base URL, got %s", srv.BaseURL())
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if srv.maxBytes != defaultMaxImageBytes {
				t.Errorf("expected default size cap, got %d", srv.maxBytes)
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			srv := NewDeviceService(DeviceOpts{BaseURL: "http://pi.local:5000/"})

			if srv.BaseURL() != "http://pi.local:5000" {
				t.Errorf("unexpected base URL %s", srv.BaseURL())
			}
		})
	})

	t.Run("TriggerCapture", func(t *testing.T) {
		t.Run("Success On 200", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.URL.Path != "/capture" {
					t.Errorf("expected path '/capture', got %s", r.URL.Path)
				}
				w.Write([]byte("Capture triggered"))
			}))
			defer server.Close()

			ack, err := NewDeviceService(DeviceOpts{BaseURL: server.URL}).TriggerCapture(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ack.StatusCode != http.StatusOK {
				t.Errorf("expected status 200, got %d", ack.StatusCode)
			}
		})

		tests := []struct {
			name   string
			status int
		}{
			{name: "Server Error", status: http.StatusInternalServerError},
			{name: "Accepted Is Not Success", status: http.StatusAccepted},
			{name: "Not Found", status: http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				}))
				defer server.Close()

				_, err := NewDeviceService(DeviceOpts{BaseURL: server.URL}).TriggerCapture(context.Background())
				if !errors.Is(err, shared.ErrTransport) {
					t.Fatalf("expected transport error, got %v", err)
				}

				var netErr *shared.NetworkError
				if !errors.As(err, &netErr) || netErr.StatusCode != tt.status {
					t.Errorf("expected status %d in error, got %v", tt.status, err)
				}
			})
		}

		t.Run("Transport Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			srv := NewDeviceService(DeviceOpts{BaseURL: "http://pi.invalid", Client: client})

			_, err := srv.TriggerCapture(context.Background())
			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected transport error, got %v", err)
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer server.Close()
			defer close(release)

			client := &http.Client{Timeout: 50 * time.Millisecond}
			_, err := NewDeviceService(DeviceOpts{BaseURL: server.URL, Client: client}).TriggerCapture(context.Background())
			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected transport error on timeout, got %v", err)
			}
		})
	})

	t.Run("FetchImage", func(t *testing.T) {
		t.Run("Returns JPEG", func(t *testing.T) {
			jpg := tu.MustJPEG(t)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/image" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.Header().Set("Content-Type", "image/jpeg")
				w.Write(jpg)
			}))
			defer server.Close()

			img, err := NewDeviceService(DeviceOpts{BaseURL: server.URL}).FetchImage(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !bytes.Equal(img.Data, jpg) {
				t.Error("expected body bytes to be returned unchanged")
			}
			if img.ContentType != "image/jpeg" {
				t.Errorf("expected image/jpeg, got %s", img.ContentType)
			}
		})

		t.Run("Content Type From Decoder", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/octet-stream")
				w.Write(tu.MustPNG(t))
			}))
			defer server.Close()

			img, err := NewDeviceService(DeviceOpts{BaseURL: server.URL}).FetchImage(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if img.ContentType != "image/png" {
				t.Errorf("expected image/png, got %s", img.ContentType)
			}
		})

		t.Run("Non Image Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>camera busy</html>"))
			}))
			defer server.Close()

			_, err := NewDeviceService(DeviceOpts{BaseURL: server.URL}).FetchImage(context.Background())
			if !errors.Is(err, shared.ErrDecode) {
				t.Errorf("expected decode error, got %v", err)
			}
		})

		t.Run("Empty Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			_, err := NewDeviceService(DeviceOpts{BaseURL: server.URL}).FetchImage(context.Background())
			if !errors.Is(err, shared.ErrDecode) {
				t.Errorf("expected decode error, got %v", err)
			}
		})

		t.Run("Oversized Body", func(t *testing.T) {
			jpg := tu.MustJPEG(t)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(jpg)
			}))
			defer server.Close()

			srv := NewDeviceService(DeviceOpts{BaseURL: server.URL, MaxImageBytes: int64(len(jpg) - 1)})
			if _, err := srv.FetchImage(context.Background()); !errors.Is(err, shared.ErrDecode) {
				t.Errorf("expected decode error, got %v", err)
			}
		})

		t.Run("Non 200 Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "no image yet", http.StatusNotFound)
			}))
			defer server.Close()

			_, err := NewDeviceService(DeviceOpts{BaseURL: server.URL}).FetchImage(context.Background())
			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected transport error, got %v", err)
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(&tu.FCloser{}), Header: make(http.Header)}
			client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

			_, err := NewDeviceService(DeviceOpts{BaseURL: "http://pi.invalid", Client: client}).FetchImage(context.Background())
			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected transport error, got %v", err)
			}
		})
	})
}

func TestExtensionFor(t *testing.T) {
	tc := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", "jpg"},
		{"image/png", "png"},
		{"IMAGE/WEBP", "webp"},
		{"image/jpeg; charset=binary", "jpg"},
		{"application/octet-stream", "jpg"},
		{"", "jpg"},
	}

	for _, tt := range tc {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := ExtensionFor(tt.contentType, "jpg"); got != tt.want {
				t.Errorf("ExtensionFor(%q) = %s, want %s", tt.contentType, got, tt.want)
			}
		})
	}
}
