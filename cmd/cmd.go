// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// setupCommand writes a config file and prepares the photo directory.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml from the template and initialize the photo directory",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// captureCommand triggers the camera and saves one photo.
func captureCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "capture",
		Aliases: []string{"snap"},
		Usage:   "Trigger the camera, fetch the photo and save it locally",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "export",
				Aliases: []string{"e"},
				Usage:   "Also copy the photo to the configured library",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the new entry as JSON",
			},
		},
		Action: r.Capture,
	}
}

// galleryCommand handles local photo operations.
func galleryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "gallery",
		Aliases: []string{"g"},
		Usage:   "Browse and manage captured photos",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List photos in the gallery",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV",
					},
				},
				Action: r.GalleryList,
			},
			{
				Name:  "show",
				Usage: "Show details of a photo",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the photo in the system viewer",
					},
				},
				Action: r.GalleryShow,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete photos",
				ArgsUsage: "<id>...",
				Action:    r.GalleryDelete,
			},
			{
				Name:      "export",
				Usage:     "Copy photos to the configured library",
				ArgsUsage: "[<id>...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every photo",
					},
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "Directory to write an export manifest to",
					},
				},
				Action: r.GalleryExport,
			},
			{
				Name:      "share",
				Usage:     "Bundle photos into a share archive",
				ArgsUsage: "[<id>...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Share every photo",
					},
				},
				Action: r.GalleryShare,
			},
			{
				Name:  "import",
				Usage: "Import images from a directory",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "dir"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the import result as JSON",
					},
				},
				Action: r.GalleryImport,
			},
		},
	}
}

// deviceCommand handles the camera device simulator.
func deviceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "device",
		Usage: "Camera device tools",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run a simulated camera device",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (default: server.host:server.port from config)",
					},
					&cli.StringFlag{
						Name:  "source-dir",
						Usage: "Serve images from this directory instead of generated frames",
					},
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "Simulated exposure time per capture",
					},
				},
				Action: r.DeviceServe,
			},
			{
				Name:   "status",
				Usage:  "Check that the configured device answers",
				Action: r.DeviceStatus,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive gallery.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive gallery",
		Action:  r.TUI,
	}
}
