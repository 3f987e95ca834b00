// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// searchCommand runs a search with the progress animation
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "search",
		Aliases: []string{"s"},
		Usage:   "Search and watch the progress animation",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Search type (semantic, keyword or hybrid)",
				Value:   "hybrid",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Print the animation as plain lines instead of the interactive view",
			},
			&cli.StringFlag{
				Name:  "fail",
				Usage: "Make the simulated backend fail with an error kind (e.g. timeout, rate_limit)",
			},
			&cli.DurationFlag{
				Name:  "latency",
				Usage: "Override the simulated backend latency",
			},
			&cli.DurationFlag{
				Name:  "estimated",
				Usage: "Rescale the animation to this total duration",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not read or record run history",
			},
		},
		Action: r.Search,
	}
}

// scheduleCommand prints the computed animation schedule
func scheduleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Print the stage schedule for a given backend response time",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "response",
				Aliases: []string{"r"},
				Usage:   "Measured backend response time (0 for unknown)",
			},
			&cli.DurationFlag{
				Name:  "estimated",
				Usage: "Rescale the stages to this total duration",
			},
			&cli.BoolFlag{
				Name:  "no-accel",
				Usage: "Disable the fast response policy",
			},
		},
		Action: r.Schedule,
	}
}

// historyCommand lists recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to return",
				Value: 20,
			},
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Only runs of this search type",
			},
			&cli.StringFlag{
				Name:  "outcome",
				Usage: "Only runs with this outcome (completed, cancelled, failed)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
			&cli.StringFlag{
				Name:    "export",
				Aliases: []string{"o"},
				Usage:   "Write {path}.csv and {path}.json instead of printing",
			},
		},
		Action: r.History,
	}
}

// taxonomyCommand prints the error taxonomy
func taxonomyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "taxonomy",
		Usage:  "Print every error kind with its stage and recovery actions",
		Action: r.Taxonomy,
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml populated with the defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the file to create",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
