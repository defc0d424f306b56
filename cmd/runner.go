package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/repositories"
	"github.com/desertthunder/mosaic/internal/services"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/desertthunder/mosaic/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	device     services.CaptureDevice
	store      *repositories.PhotoRepository
	library    services.Library
	share      services.ShareTarget
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Collaborators left nil are built from Config. The library is resolved on first use so commands that never export
// do not contact it.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Device     services.CaptureDevice
	Store      *repositories.PhotoRepository
	Library    services.Library
	Share      services.ShareTarget
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Device.Timeout()}
	}
	if opts.Device == nil {
		opts.Device = services.NewDeviceService(services.DeviceOpts{
			BaseURL:       opts.Config.Device.BaseURL,
			Client:        opts.HTTPClient,
			MaxImageBytes: opts.Config.Device.MaxImageBytes,
			Logger:        shared.WithLogger(opts.Logger, "component", "device"),
		})
	}
	if opts.Store == nil {
		opts.Store = repositories.NewPhotoRepository(repositories.RepositoryOpts{
			Dir:       opts.Config.Repository.Path,
			Prefix:    opts.Config.Repository.Prefix,
			Extension: opts.Config.Repository.Extension,
			Logger:    shared.WithLogger(opts.Logger, "component", "repository"),
		})
	}
	if opts.Share == nil {
		opts.Share = services.NewArchiveShare(opts.Config.Share.Path, shared.WithLogger(opts.Logger, "component", "share"))
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		device:     opts.Device,
		store:      opts.Store,
		library:    opts.Library,
		share:      opts.Share,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, captureCommand, galleryCommand, deviceCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveLibrary returns the configured library, building it on first use. A nil library with a nil error means
// none is configured.
func (r *Runner) resolveLibrary(ctx context.Context) (services.Library, error) {
	if r.library != nil {
		return r.library, nil
	}
	library, err := services.NewLibrary(ctx, r.config.Library, shared.WithLogger(r.logger, "component", "library"))
	if err != nil {
		return nil, err
	}
	r.library = library
	return library, nil
}

func (r *Runner) pipeline(library services.Library) *tasks.CapturePipeline {
	return tasks.NewCapturePipeline(tasks.CapturePipelineOpts{
		Device:  r.device,
		Store:   r.store,
		Library: library,
		Logger:  shared.WithLogger(r.logger, "component", "capture"),
		Prefix:  r.config.Repository.Prefix,
	})
}

func (r *Runner) coordinator(library services.Library, manifestDir string) *tasks.BatchCoordinator {
	return tasks.NewBatchCoordinator(tasks.BatchCoordinatorOpts{
		Store:       r.store,
		Library:     library,
		Share:       r.share,
		Logger:      shared.WithLogger(r.logger, "component", "batch"),
		Workers:     r.config.Batch.Workers,
		RateLimit:   r.config.Batch.RateLimit,
		ManifestDir: manifestDir,
	})
}

// withProgress runs fn with a progress channel whose updates are printed as they arrive. It returns once every
// update has been written.
func (r *Runner) withProgress(fn func(progress chan<- tasks.ProgressUpdate)) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Total > 1 {
				r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.Message)
			} else {
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()

	fn(progress)
	close(progress)
	<-done
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
