package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/limaJavier/mklandscape/pkg/sweep"
)

// Recreates all MK landscapes of the local optima enumeration study by delegating to the configured generator
func main() {
	// Define arguments
	outPtr := flag.String("out", "", "Folder where the generated landscapes will be written")
	configPtr := flag.String("config", "", "Path to a sweep configuration (\".hcl\" or \".json\"); if empty, the study's sweep is used")
	generatorPtr := flag.String("generator", "", "Generator executable; overrides the one in the configuration")
	dryRunPtr := flag.Bool("dry-run", false, "Only print the file name of every instance of the sweep")
	logLevelPtr := flag.String("log-level", "info", "Logging level. Allowed values are: \"debug\", \"info\", \"warn\", \"error\"")
	logFormatPtr := flag.String("log-format", "text", "Log output format. Allowed values are: \"text\", \"json\"")
	flag.Parse()

	logger := newLogger(strings.ToLower(*logLevelPtr), strings.ToLower(*logFormatPtr), os.Stderr)

	config := sweep.DefaultConfig()
	if *configPtr != "" {
		var err error
		config, err = sweep.LoadConfig(*configPtr)
		if err != nil {
			log.Fatalf("cannot load sweep configuration: %v", err)
		}
	}
	if *generatorPtr != "" {
		config.Generator = *generatorPtr
	}

	plan := sweep.Plan(config)
	if *dryRunPtr {
		for _, instance := range plan {
			fmt.Println(instance.FileName())
		}
		return
	}

	// Validate arguments
	if *outPtr == "" {
		log.Fatal("an output folder must be specified")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	generator := sweep.NewExternalGenerator(config.Generator, logger)
	if _, err := sweep.Run(ctx, plan, generator, *outPtr, logger); err != nil {
		log.Fatalf("sweep aborted: %v", err)
	}
}

func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(outW, handlerOpts))
}
