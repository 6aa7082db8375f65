package sweep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Generator builds the landscape of an instance inside folder
type Generator interface {
	Generate(ctx context.Context, folder string, instance Instance) error
}

type externalGenerator struct {
	path   string
	logger *slog.Logger
}

// NewExternalGenerator delegates construction to an executable invoked as "<path> <folder> <problem> <N> <k> <seed>".
// The executable's standard output is logged at debug level
func NewExternalGenerator(path string, logger *slog.Logger) Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &externalGenerator{path: path, logger: logger}
}

func (generator *externalGenerator) Generate(ctx context.Context, folder string, instance Instance) error {
	cmd := exec.CommandContext(ctx, generator.path,
		folder,
		instance.Problem,
		strconv.Itoa(instance.Length),
		strconv.Itoa(instance.K),
		strconv.Itoa(instance.Seed),
	)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stdOut.Len() > 0 {
		generator.logger.Debug("generator output", "file", instance.FileName(), "output", strings.TrimSpace(stdOut.String()))
	}
	if err != nil {
		return fmt.Errorf("an error occurred during generator execution for %v: %w: %v", instance.FileName(), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Run generates every instance of plan in order, stopping at the first failure or when ctx is cancelled.
// It returns the number of generated instances
func Run(ctx context.Context, plan []Instance, generator Generator, folder string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if info, err := os.Stat(folder); err != nil {
		return 0, fmt.Errorf("cannot access output folder: %w", err)
	} else if !info.IsDir() {
		return 0, errors.New("output path is not a folder: " + folder)
	}

	for i, instance := range plan {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		logger.Debug("generating instance", "file", instance.FileName(), "index", i, "total", len(plan))
		if err := generator.Generate(ctx, folder, instance); err != nil {
			return i, err
		}
	}

	logger.Info("sweep finished", "instances", len(plan), "folder", folder)
	return len(plan), nil
}
