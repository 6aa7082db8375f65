package landscape

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var supportedProblems = []string{"MK", "NK"}

// Largest subfunction order whose value table is accepted
const MaxOrder = 30

type Subfunction struct {
	Variables []int // Member variables, the first one is the most significant bit of the table index
	Values    []int // 2^len(Variables) entries
}

type Landscape struct {
	Length       int
	Subfunctions []Subfunction
}

type FormatError struct {
	Line    int
	Message string
}

func (err FormatError) Error() string {
	if err.Line == 0 {
		return fmt.Sprintf("invalid landscape: %v", err.Message)
	}
	return fmt.Sprintf("invalid landscape at line %d: %v", err.Line, err.Message)
}

func FromFile(file string) (Landscape, error) {
	input, err := os.Open(file)
	if err != nil {
		return Landscape{}, fmt.Errorf("cannot open landscape file: %w", err)
	}
	defer input.Close()

	landscape, err := Parse(input)
	if err != nil {
		return Landscape{}, fmt.Errorf("cannot parse landscape file %v: %w", file, err)
	}
	return landscape, nil
}

// Parse reads an MK landscape: a "p" problem line declaring the length, and "m" lines each followed by a line with the subfunction's values.
// Blank lines and lines starting with 'c' are skipped
func Parse(r io.Reader) (Landscape, error) {
	var landscape Landscape
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNumber := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNumber++
		if len(line) == 0 || line[0] == 'c' {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "p":
			if len(fields) < 3 {
				return Landscape{}, FormatError{lineNumber, "problem line must declare a problem and a length"}
			} else if !slices.Contains(supportedProblems, fields[1]) {
				return Landscape{}, FormatError{lineNumber, fmt.Sprintf("unsupported problem \"%v\"", fields[1])}
			}
			length, err := strconv.Atoi(fields[2])
			if err != nil || length < 0 {
				return Landscape{}, FormatError{lineNumber, fmt.Sprintf("invalid length \"%v\"", fields[2])}
			}
			landscape.Length = length // Everything after the length is ignored
		case "m":
			variables := make([]int, 0, len(fields)-1)
			for _, field := range fields[1:] {
				variable, err := strconv.Atoi(field)
				if err != nil || variable < 0 {
					return Landscape{}, FormatError{lineNumber, fmt.Sprintf("invalid variable index \"%v\"", field)}
				}
				variables = append(variables, variable)
			}
			if len(variables) > MaxOrder {
				return Landscape{}, FormatError{lineNumber, fmt.Sprintf("subfunction over %d variables exceeds the maximum order %d", len(variables), MaxOrder)}
			}

			// The values are always on the line right after the mask
			if !scanner.Scan() {
				return Landscape{}, FormatError{lineNumber, "subfunction has no values line"}
			}
			lineNumber++
			values, err := parseValues(scanner.Text())
			if err != nil {
				return Landscape{}, FormatError{lineNumber, err.Error()}
			}
			if expected := 1 << len(variables); len(values) != expected {
				return Landscape{}, FormatError{lineNumber, fmt.Sprintf("expected %d values but found %d", expected, len(values))}
			}

			landscape.Subfunctions = append(landscape.Subfunctions, Subfunction{Variables: variables, Values: values})
		default:
			slog.Warn("unexpected line header", "header", fields[0], "line", lineNumber)
		}
	}

	if err := scanner.Err(); err != nil {
		return Landscape{}, fmt.Errorf("error reading landscape: %w", err)
	}

	if landscape.Length == 0 {
		return Landscape{}, FormatError{Message: "length was never declared"}
	}
	for _, subfunction := range landscape.Subfunctions {
		if variable, ok := lo.Find(subfunction.Variables, func(variable int) bool { return variable >= landscape.Length }); ok {
			return Landscape{}, FormatError{Message: fmt.Sprintf("variable %d is out of range for length %d", variable, landscape.Length)}
		}
	}

	return landscape, nil
}

func parseValues(line string) ([]int, error) {
	fields := strings.Fields(line)
	values := make([]int, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value \"%v\"", field)
		}
		values = append(values, int(value)) // Values are stored as integers, fractions are truncated
	}
	return values, nil
}

// Evaluate returns the value of subfunction "sub" for "solution"
func (landscape Landscape) Evaluate(sub int, solution []bool) int {
	subfunction := landscape.Subfunctions[sub]
	index := 0
	for _, variable := range subfunction.Variables {
		index <<= 1
		if solution[variable] {
			index |= 1
		}
	}
	return subfunction.Values[index]
}

func (landscape Landscape) Fitness(solution []bool) int {
	fitness := 0
	for sub := range landscape.Subfunctions {
		fitness += landscape.Evaluate(sub, solution)
	}
	return fitness
}
