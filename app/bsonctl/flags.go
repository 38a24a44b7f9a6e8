package main

import (
	"math"

	"github.com/urfave/cli/v2"

	"github.com/VictoriaMetrics/bson/lib/bson"
	"github.com/VictoriaMetrics/bson/lib/flagutil"
)

const (
	globalLoggerLevel        = "loggerLevel"
	globalLoggerFormat       = "loggerFormat"
	globalMaxDocumentSize    = "max-document-size"
	globalDisableProgressBar = "disable-progress-bar"
	globalMetrics            = "metrics"
)

var (
	globalFlags = []cli.Flag{
		&cli.StringFlag{
			Name:    globalLoggerLevel,
			Value:   "INFO",
			Usage:   "Minimum level of messages to log. Possible values: INFO, WARN, ERROR, FATAL, PANIC",
			EnvVars: []string{"BSONCTL_LOGGER_LEVEL"},
		},
		&cli.StringFlag{
			Name:    globalLoggerFormat,
			Value:   "default",
			Usage:   "Format for logs. Possible values: default, json",
			EnvVars: []string{"BSONCTL_LOGGER_FORMAT"},
		},
		&cli.GenericFlag{
			Name:  globalMaxDocumentSize,
			Value: flagutil.NewBytes(bson.DefaultMaxDocumentSize),
			Usage: "The maximum size of a single document in the input. Bigger documents are rejected. \n" +
				"Supports the following optional suffixes: KB, MB, GB, TB, KiB, MiB, GiB, TiB",
			EnvVars: []string{"BSONCTL_MAX_DOCUMENT_SIZE"},
		},
		&cli.BoolFlag{
			Name:  globalDisableProgressBar,
			Value: false,
			Usage: "Whether to disable progress bar. Progress bar is disabled automatically if stderr isn't a terminal",
		},
		&cli.BoolFlag{
			Name:  globalMetrics,
			Value: false,
			Usage: "Whether to write codec metrics in Prometheus text exposition format to stderr on exit",
		},
	}
)

const (
	oidCount = "count"
	oidTime  = "time"
	oidParse = "parse"
)

var (
	oidFlags = []cli.Flag{
		&cli.IntFlag{
			Name:  oidCount,
			Value: 1,
			Usage: "Number of ObjectIds to generate",
		},
		&cli.Int64Flag{
			Name:  oidTime,
			Value: -1,
			Usage: "Unix timestamp in seconds to put into generated ObjectIds. The current time is used if negative",
		},
		&cli.StringFlag{
			Name:  oidParse,
			Usage: "Hex representation of ObjectId to parse instead of generating new ObjectIds",
		},
	}
)

const (
	benchIterations = "iterations"
)

var (
	benchFlags = []cli.Flag{
		&cli.IntFlag{
			Name:  benchIterations,
			Value: 10000,
			Usage: "Number of passes over the input documents for every benchmarked operation",
		},
	}
)

func mergeFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, f := range flags {
		result = append(result, f...)
	}
	return result
}

func maxDocumentSize(c *cli.Context) int {
	b, ok := c.Generic(globalMaxDocumentSize).(*flagutil.Bytes)
	if !ok {
		return bson.DefaultMaxDocumentSize
	}
	return b.IntMax(5, math.MaxInt32)
}
