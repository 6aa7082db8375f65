package depends

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
)

const maskMarker = "m"

// DependencyMap associates every variable with the set of distinct variables it shares at least one mask line with
type DependencyMap map[string]map[string]struct{}

type NoDependencyDataError struct {
	Path string
}

func (err NoDependencyDataError) Error() string {
	if err.Path == "" {
		return "no dependency data in file"
	}
	return fmt.Sprintf("no dependency data in file %v", err.Path)
}

// ParseMasks returns the variable identifiers of every mask line read from r, in file order
func ParseMasks(r io.Reader) ([][]string, error) {
	masks := make([][]string, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024) // Mask lines of large landscapes may exceed the default token size

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text()) // Fields already discards leading and trailing whitespace
		if len(fields) == 0 || fields[0] != maskMarker {
			continue
		}
		masks = append(masks, fields[1:])
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading masks: %w", err)
	}
	return masks, nil
}

func BuildDependencyMap(masks [][]string) DependencyMap {
	dependencies := make(DependencyMap)
	for _, mask := range masks {
		for _, a := range mask {
			for _, b := range mask {
				if a == b {
					continue // A variable never depends on itself
				}
				if _, ok := dependencies[a]; !ok {
					dependencies[a] = make(map[string]struct{})
				}
				dependencies[a][b] = struct{}{}
			}
		}
	}
	return dependencies
}

// Partners returns the sorted dependency set of variable (nil if it has none)
func (dependencies DependencyMap) Partners(variable string) []string {
	partners, ok := dependencies[variable]
	if !ok {
		return nil
	}
	keys := lo.Keys(partners)
	slices.Sort(keys)
	return keys
}

// Density returns the mean dependency-set size over all variables with at least one dependency
func (dependencies DependencyMap) Density() (float64, error) {
	if len(dependencies) == 0 {
		return 0, NoDependencyDataError{}
	}
	total := lo.SumBy(lo.Values(dependencies), func(partners map[string]struct{}) int {
		return len(partners)
	})
	return float64(total) / float64(len(dependencies)), nil
}
