package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/limaJavier/mklandscape/pkg/enumeration"
	"github.com/limaJavier/mklandscape/pkg/landscape"
)

const usage = `Usage: enumerate input_filename output_filename radius [use_hyperplanes] [use_reordering]

By default hyperplanes and reordering are used, but can be set to 0 to turn off
Example: enumerate input.txt output.txt 2 1 0
         This will read a problem from input.txt, write local optima to output.txt,
         only find 2-bit local optima, use hyperplanes but turn off reordering.
`

// Reads an MK landscape and writes all of its r-bit local optima to another file.
// An r-bit local optimum is a solution which cannot be improved by flipping r or less bits
func main() {
	if len(os.Args) < 4 {
		fmt.Print(usage)
		return
	}
	problemFile := os.Args[1]
	outputFile := os.Args[2]
	radius, err := strconv.Atoi(os.Args[3])
	if err != nil {
		log.Fatalf("radius must be an integer: %v", os.Args[3])
	}

	options := enumeration.DefaultOptions()
	if len(os.Args) > 4 {
		options.Hyperplanes = switchEnabled(os.Args[4])
	}
	if len(os.Args) > 5 {
		options.Reordering = switchEnabled(os.Args[5])
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))

	problem, err := landscape.FromFile(problemFile)
	if err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}

	enumerator, err := enumeration.NewEnumerator(problem, radius, logger)
	if err != nil {
		log.Fatalf("cannot build enumerator: %v", err)
	}

	out, err := os.Create(outputFile)
	if err != nil {
		log.Fatalf("cannot create output file: %v", err)
	}
	defer out.Close()

	if _, err := enumerator.Enumerate(out, options); err != nil {
		log.Fatalf("an error occurred during enumeration: %v", err)
	}
}

// switchEnabled turns a switch on for any non-zero integer
func switchEnabled(value string) bool {
	number, err := strconv.Atoi(value)
	return err == nil && number != 0
}

// logLevel reads the verbosity from MKL_LOG_LEVEL ("debug" prints enumeration progress)
func logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("MKL_LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return level
}
