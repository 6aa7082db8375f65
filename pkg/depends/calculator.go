package depends

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type FileResult struct {
	Path    string
	Density float64
}

type Report struct {
	Files []FileResult
	Total float64 // Unweighted mean of the per-file densities
}

// FileDensity computes the dependency density of a single landscape file
func FileDensity(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot open landscape file: %w", err)
	}
	defer file.Close()

	masks, err := ParseMasks(file)
	if err != nil {
		return 0, fmt.Errorf("cannot parse landscape file %v: %w", path, err)
	}

	density, err := BuildDependencyMap(masks).Density()
	var noData NoDependencyDataError
	if errors.As(err, &noData) {
		return 0, NoDependencyDataError{Path: path}
	}
	return density, err
}

// Calculate processes paths in order, writing "<path> <density>" for each file and a final "Total <mean>" line to out.
// It stops at the first failing file; lines written for earlier files are kept
func Calculate(paths []string, out io.Writer) (Report, error) {
	if len(paths) == 0 {
		return Report{}, errors.New("at least one landscape file must be specified")
	}

	report := Report{Files: make([]FileResult, 0, len(paths))}
	sum := 0.0
	for _, path := range paths {
		density, err := FileDensity(path)
		if err != nil {
			return report, err
		}
		sum += density
		report.Files = append(report.Files, FileResult{Path: path, Density: density})

		if _, err := fmt.Fprintf(out, "%v %v\n", path, FormatFloat(density)); err != nil {
			return report, fmt.Errorf("cannot write result: %w", err)
		}
	}

	report.Total = sum / float64(len(paths))
	if _, err := fmt.Fprintf(out, "Total %v\n", FormatFloat(report.Total)); err != nil {
		return report, fmt.Errorf("cannot write result: %w", err)
	}
	return report, nil
}

// FormatFloat renders value with the shortest round-trip precision, always keeping a fractional part (e.g. "2.0")
func FormatFloat(value float64) string {
	formatted := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(formatted, ".") {
		formatted += ".0"
	}
	return formatted
}
