package main

import (
	"LineCounter/internal"
	"LineCounter/internal/scanner"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// newApp builds the CLI. NO_COLOR is honoured by fatih/color itself, for any
// non-empty value, so --no-color has no environment binding.
func newApp() *cli.App {
	return &cli.App{
		Name:      "LineCounter",
		Usage:     "Count text lines of every file below a directory",
		ArgsUsage: "<root>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "logfile",
				Usage:   "Write logs into file instead of stderr",
				EnvVars: []string{"LINECOUNTER_LOGFILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error",
				Value:   "info",
				EnvVars: []string{"LINECOUNTER_LOG_LEVEL"},
			},
			&cli.IntFlag{
				Name:  "buffer-size",
				Usage: "Read chunk size in bytes",
				Value: scanner.DefaultBufferSize,
			},
			&cli.BoolFlag{
				Name:  "archives",
				Usage: "Count lines of files inside archives (.zip,.tar,.gz,.7z,...)",
			},
			&cli.BoolFlag{
				Name:  "keep-going",
				Usage: "Skip files and directories that fail with unexpected I/O errors instead of stopping",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "no-pause",
				Usage: "Exit without waiting for a key press",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("Exactly one root directory must be given", 1)
			}

			opts := internal.WalkOptions{
				Root:       c.Args().First(),
				BufferSize: c.Int("buffer-size"),
				Archives:   c.Bool("archives"),
				KeepGoing:  c.Bool("keep-going"),
				LogFile:    c.String("logfile"),
				LogLevel:   c.String("log-level"),
				NoColor:    c.Bool("no-color"),
				NoPause:    c.Bool("no-pause"),
			}
			if err := opts.Validate(); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			opts.Prepare()

			internal.InitLogger(opts.LogFile, opts.LogLevel)
			if opts.NoColor {
				color.NoColor = true
			}

			root, err := filepath.Abs(opts.Root)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			log := logrus.WithFields(logrus.Fields{"run": uuid.NewString(), "root": root})
			log.Info("LineCounter started")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var stats internal.AppStats
			walker := internal.NewTreeWalker(osfs.Default, opts)

			res, err := walker.Walk(ctx, root, internal.NewConsoleSink(os.Stdout, &stats))
			elapsed := stats.Elapsed()

			switch {
			case errors.Is(err, internal.ErrInvalidArgument):
				return cli.Exit(err.Error(), 1)
			case ctx.Err() != nil:
				log.Warn("Walk cancelled")
			case err != nil:
				log.WithError(err).Error("Walk failed")
				return cli.Exit(err.Error(), 1)
			}

			fmt.Printf("Total lines: %d\n", res.TotalLines)
			fmt.Printf("Total time elapsed: %gs\n", elapsed.Seconds())
			log.WithFields(logrus.Fields{
				"dirs":          res.Dirs,
				"files":         res.Files,
				"skipped_dirs":  res.SkippedDirs,
				"skipped_files": res.SkippedFiles,
				"errors":        stats.Errors.Load(),
			}).Infof("LineCounter finished in %s", elapsed)

			if !opts.NoPause {
				waitForKey(os.Stdin, os.Stdout)
			}
			return nil
		},
	}
}
