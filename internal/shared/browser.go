package shared

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// viewerCommand returns the command that opens path in the platform's default image viewer.
func viewerCommand(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", path), nil
	case "linux":
		return exec.Command("xdg-open", path), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path), nil
	default:
		return nil, fmt.Errorf("%w: no image viewer for %s", ErrNotImplemented, goos)
	}
}

// OpenPath shows a stored photo in the system's default viewer. A photo that is no longer on disk is a NotFound
// [StorageError] and no viewer is started.
func OpenPath(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return NewNotFound(filepath.Base(path), err)
	}

	cmd, err := viewerCommand(getRuntime(), path)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open viewer: %w", err)
	}
	return nil
}
