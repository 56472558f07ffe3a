// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand creates the config file, stores a session token and migrates the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml, store the session token and initialize the history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "curl",
				Usage: "cURL command from browser DevTools (Copy as cURL) carrying the SESSDATA cookie",
			},
			&cli.StringFlag{
				Name:  "curl-file",
				Usage: "Path to .sh file containing cURL command",
			},
		},
		Action: r.Setup,
	}
}

// collectionCommand handles favorites collection listing and export.
func collectionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "collection",
		Aliases: []string{"fav"},
		Usage:   "Favorites collection operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every entry of a collection",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Collection (media) ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.CollectionList,
			},
			{
				Name:  "export",
				Usage: "Export one or more collections to files",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "id",
						Usage:    "Collection (media) ID, repeatable",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown or txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: favorites_export_<timestamp>)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent export workers",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download the folder cover for markdown exports",
						Value: true,
					},
				},
				Action: r.CollectionExport,
			},
		},
	}
}

// downloadFlags are shared by the download and tui commands.
func downloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "Collection (media) ID",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (default: [download] output_dir)",
		},
		&cli.StringFlag{
			Name:  "select",
			Usage: "Entries to download, 1-indexed, e.g. 1,3-5 (default: all)",
		},
		&cli.StringFlag{
			Name:  "exclude",
			Usage: "Entries to leave out, same syntax as --select",
		},
		&cli.BoolFlag{
			Name:  "manifest",
			Usage: "Write download_manifest.json into the output directory (default: [download] manifest)",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record the run in the history database",
		},
	}
}

// downloadCommand downloads the audio of a collection.
func downloadCommand(r *Runner) *cli.Command {
	flags := append(downloadFlags(),
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Pick entries and follow progress in the interactive TUI",
		},
		&cli.BoolFlag{
			Name:  "serve",
			Usage: "Serve progress over HTTP while downloading",
		},
		&cli.StringFlag{
			Name:  "addr",
			Usage: "Listen address for --serve (default: [server] host and port from the config)",
		},
		&cli.BoolFlag{
			Name:  "open",
			Usage: "Open the output directory when the run finishes",
		},
	)

	return &cli.Command{
		Name:    "download",
		Aliases: []string{"dl"},
		Usage:   "Download the audio of every selected entry in a collection",
		Flags:   flags,
		Action:  r.Download,
	}
}

// historyCommand lists recorded download runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded download runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "run",
				Usage: "Run ID or ID prefix to show in detail",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for interactive downloads.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI to pick entries and follow the download",
		Flags:   downloadFlags(),
		Action:  r.TUI,
	}
}
