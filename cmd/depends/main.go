package main

import (
	"bufio"
	"errors"
	"io"
	"log"
	"os"

	"github.com/limaJavier/mklandscape/pkg/depends"
)

// Computes the number of dependencies per variable in a collection of landscape files passed as arguments
func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("cannot compute dependency density: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("at least one landscape file must be specified")
	}

	out := bufio.NewWriter(stdout)
	_, err := depends.Calculate(args, out)
	// Flush whatever was computed before a failure
	if flushErr := out.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}
