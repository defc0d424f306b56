package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/desertthunder/mosaic/internal/server"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/urfave/cli/v3"
)

// DeviceServe runs the camera simulator until interrupted.
func (r *Runner) DeviceServe(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	sourceDir := cmd.String("source-dir")
	if sourceDir == "" {
		sourceDir = r.config.Server.SourceDir
	}

	logger := shared.WithLogger(r.logger, "component", "simulator")

	var frames server.FrameSource = &server.SyntheticFrames{}
	if sourceDir != "" {
		dirFrames, err := server.NewDirectoryFrames(ctx, sourceDir, logger)
		if err != nil {
			return fmt.Errorf("failed to load frames: %w", err)
		}
		frames = dirFrames
		logger.Info("serving frames from directory", "dir", sourceDir, "count", dirFrames.Len())
	}

	handler := server.NewDeviceHandler(server.DeviceHandlerOpts{
		Frames: frames,
		Logger: logger,
		Delay:  cmd.Duration("delay"),
	})
	srv := server.NewServer(addr, server.NewDeviceRouter(handler, logger), logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.writePlain("Simulated camera listening on http://%s (ctrl+c to stop)\n", addr)
	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}

	r.writePlain("✓ Stopped after %d capture(s)\n", handler.Captures())
	return nil
}

// DeviceStatus checks the device health endpoint.
func (r *Runner) DeviceStatus(ctx context.Context, cmd *cli.Command) error {
	url := strings.TrimRight(r.config.Device.BaseURL, "/") + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return &shared.NetworkError{Kind: shared.Transport, Op: "health", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK {
		return &shared.NetworkError{Kind: shared.Transport, Op: "health", StatusCode: resp.StatusCode}
	}

	r.writePlain("✓ Device at %s is up (%s)\n", r.config.Device.BaseURL, strings.TrimSpace(string(body)))
	return nil
}
