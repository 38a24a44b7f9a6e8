package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/urfave/cli/v2"

	"github.com/VictoriaMetrics/bson/app/bsonctl/barpool"
	"github.com/VictoriaMetrics/bson/lib/logger"
)

// version is set via -ldflags="-X main.version=..." at build time.
var version = "unknown"

func main() {
	ctx, cancelCtx := context.WithCancel(context.Background())
	start := time.Now()
	writeMetrics := false
	beforeFn := func(c *cli.Context) error {
		if err := initLogger(c); err != nil {
			return cli.Exit(err, 1)
		}
		if c.Bool(globalDisableProgressBar) {
			barpool.Disable()
		} else {
			barpool.DisableIfNotTerminal()
		}
		writeMetrics = c.Bool(globalMetrics)
		return nil
	}
	app := &cli.App{
		Name:    "bsonctl",
		Usage:   "BSON command-line tool",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "json",
				Usage:     "Convert concatenated BSON documents to JSON lines",
				ArgsUsage: "[FILES/GLOBS...]",
				Flags:     globalFlags,
				Before:    beforeFn,
				Action: func(c *cli.Context) error {
					paths, err := expandInputs(c.Args().Slice())
					if err != nil {
						return cli.Exit(err, 1)
					}
					n, err := transcodeInputs(os.Stdout, paths, maxDocumentSize(c))
					if err != nil {
						return cli.Exit(fmt.Errorf("cannot convert documents to JSON: %w", err), 1)
					}
					logger.Infof("converted %d documents from %d files", n, len(paths))
					return nil
				},
			},
			{
				Name:      "validate",
				Usage:     "Verify that the input contains valid BSON documents",
				ArgsUsage: "[FILES/GLOBS...]",
				Flags:     globalFlags,
				Before:    beforeFn,
				Action: func(c *cli.Context) error {
					paths, err := expandInputs(c.Args().Slice())
					if err != nil {
						return cli.Exit(err, 1)
					}
					n, _, err := validateInputs(paths, maxDocumentSize(c))
					if err != nil {
						return cli.Exit(err, 1)
					}
					logger.Infof("successfully verified %d documents from %d files", n, len(paths))
					return nil
				},
			},
			{
				Name:      "stats",
				Usage:     "Show statistics over BSON documents",
				ArgsUsage: "[FILES/GLOBS...]",
				Flags:     globalFlags,
				Before:    beforeFn,
				Action: func(c *cli.Context) error {
					paths, err := expandInputs(c.Args().Slice())
					if err != nil {
						return cli.Exit(err, 1)
					}
					if err := collectStats(os.Stdout, paths, maxDocumentSize(c)); err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
			{
				Name:   "oid",
				Usage:  "Generate or parse ObjectIds",
				Flags:  mergeFlags(globalFlags, oidFlags),
				Before: beforeFn,
				Action: func(c *cli.Context) error {
					if s := c.String(oidParse); s != "" {
						if err := describeObjectID(os.Stdout, s); err != nil {
							return cli.Exit(err, 1)
						}
						return nil
					}
					if err := writeObjectIDs(os.Stdout, c.Int(oidCount), c.Int64(oidTime)); err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
			{
				Name:      "bench",
				Usage:     "Measure decoding, transcoding and encoding speed for the given documents",
				ArgsUsage: "[FILES/GLOBS...]",
				Flags:     mergeFlags(globalFlags, benchFlags),
				Before:    beforeFn,
				Action: func(c *cli.Context) error {
					paths, err := expandInputs(c.Args().Slice())
					if err != nil {
						return cli.Exit(err, 1)
					}
					if err := runBenchmarks(os.Stdout, paths, maxDocumentSize(c), c.Int(benchIterations)); err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
		},
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-c:
			fmt.Fprintln(os.Stderr, "\r- Execution cancelled")
			barpool.Stop()
			os.Exit(1)
		case <-ctx.Done():
		}
	}()

	err := app.Run(os.Args)
	cancelCtx()
	if writeMetrics {
		metrics.WritePrometheus(os.Stderr, false)
	}
	if err != nil {
		logger.Fatalf("%s", err)
	}
	logger.Infof("total time: %s", time.Since(start))
}

// initLogger applies the logger flags to lib/logger, which reads them from the standard flag set.
func initLogger(c *cli.Context) error {
	for _, name := range []string{globalLoggerLevel, globalLoggerFormat} {
		if err := flag.Set(name, c.String(name)); err != nil {
			return fmt.Errorf("cannot set -%s: %w", name, err)
		}
	}
	if err := validateLoggerFlags(c.String(globalLoggerLevel), c.String(globalLoggerFormat)); err != nil {
		return err
	}
	logger.Init()
	return nil
}

func validateLoggerFlags(level, format string) error {
	switch strings.ToUpper(level) {
	case "INFO", "WARN", "ERROR", "FATAL", "PANIC":
	default:
		return fmt.Errorf("unsupported -%s=%q; supported values are: INFO, WARN, ERROR, FATAL, PANIC", globalLoggerLevel, level)
	}
	switch format {
	case "default", "json":
	default:
		return fmt.Errorf("unsupported -%s=%q; supported values are: default, json", globalLoggerFormat, format)
	}
	return nil
}
