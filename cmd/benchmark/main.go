package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/limaJavier/mklandscape/pkg/depends"
	"github.com/limaJavier/mklandscape/pkg/landscape"
	"github.com/samber/lo"
)

type StrategyType int

const (
	full StrategyType = iota
	noReordering
	noHyperplanes
	exhaustive
)

var strategyTypes = map[StrategyType]string{
	full:          "full",
	noReordering:  "no-reordering",
	noHyperplanes: "no-hyperplanes",
	exhaustive:    "exhaustive",
}

// Switches passed to the enumerator: use_hyperplanes, use_reordering
var strategySwitches = map[StrategyType][2]string{
	full:          {"1", "1"},
	noReordering:  {"1", "0"},
	noHyperplanes: {"0", "1"},
	exhaustive:    {"0", "0"},
}

type TestMetadata struct {
	Name         string
	Length       int
	Subfunctions int
	Density      float64
}

type BenchmarkResult struct {
	Strategy      StrategyType
	Radius        int
	Test          TestMetadata
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Optima        uint64
}

func main() {
	// Define arguments
	directoryPtr := flag.String("dir", "", "Folder containing the landscape files to benchmark")
	executablePtr := flag.String("exec", "./bin/enumerate", "Path to the enumerate executable")
	radiiPtr := flag.String("radius", "1", "Comma separated list of radii to benchmark")
	strategiesPtr := flag.String("strategies", "full", "Comma separated list of strategies. Allowed values are: \"full\", \"no-reordering\", \"no-hyperplanes\", \"exhaustive\"")
	limitPtr := flag.Int("limit", 0, "Benchmark only the first n landscapes; 0 means all of them")
	outPtr := flag.String("out", "benchmark_results.csv", "Path to the CSV file where the results will be written")
	flag.Parse()

	// Validate arguments
	if *directoryPtr == "" {
		log.Fatal("a landscape folder must be specified")
	}
	radii, err := parseRadii(*radiiPtr)
	if err != nil {
		log.Fatal(err)
	}
	strategies, err := parseStrategies(*strategiesPtr)
	if err != nil {
		log.Fatal(err)
	}

	tests := getTests(*directoryPtr)
	if *limitPtr > 0 && *limitPtr < len(tests) {
		tests = tests[:*limitPtr]
	}

	outputDirectory, err := os.MkdirTemp("", "mkl-benchmark-*")
	if err != nil {
		log.Fatalf("cannot create temporary folder: %v", err)
	}
	defer os.RemoveAll(outputDirectory)

	results := make([]BenchmarkResult, 0, len(tests)*len(radii)*len(strategies))
	for _, test := range tests {
		for _, radius := range radii {
			for _, strategy := range strategies {
				fmt.Printf("Benchmarking test \"%v\" with strategy \"%v\" and radius \"%v\"\n", test.Name, strategyTypes[strategy], radius)

				outputFile := filepath.Join(outputDirectory, filepath.Base(test.Name)+".optima")
				duration, maxMemory, cpuPercentage := measure(*executablePtr, strategy, radius, test.Name, outputFile)

				results = append(results, BenchmarkResult{
					Strategy:      strategy,
					Radius:        radius,
					Test:          test,
					Duration:      duration,
					Memory:        maxMemory,
					CpuPercentage: cpuPercentage,
					Optima:        countOptima(outputFile),
				})
			}
		}
	}

	toCsv(*outPtr, results)
}

func parseRadii(radiiStr string) ([]int, error) {
	radii := make([]int, 0)
	for _, radiusStr := range strings.Split(radiiStr, ",") {
		radius, err := strconv.Atoi(strings.TrimSpace(radiusStr))
		if err != nil || radius < 1 {
			return nil, fmt.Errorf("%v is not a valid radius", radiusStr)
		}
		radii = append(radii, radius)
	}
	return lo.Uniq(radii), nil
}

func parseStrategies(strategiesStr string) ([]StrategyType, error) {
	strategies := make([]StrategyType, 0)
	for _, name := range strings.Split(strategiesStr, ",") {
		strategy, ok := lo.FindKey(strategyTypes, strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("%v is not a valid strategy", name)
		}
		strategies = append(strategies, strategy)
	}
	return lo.Uniq(strategies), nil
}

func getTests(directory string) []TestMetadata {
	tests := make([]TestMetadata, 0)
	testFiles, err := os.ReadDir(directory)
	if err != nil {
		log.Fatalf("cannot read directory: %v", err)
	}

	for _, file := range testFiles {
		if file.IsDir() {
			continue
		}
		filename := filepath.Join(directory, file.Name())
		problem, err := landscape.FromFile(filename)
		if err != nil {
			log.Fatalf("cannot parse input file: %v", err)
		}
		density, err := depends.FileDensity(filename)
		if err != nil {
			log.Fatalf("cannot compute dependency density: %v", err)
		}

		tests = append(tests, TestMetadata{
			Name:         filename,
			Length:       problem.Length,
			Subfunctions: len(problem.Subfunctions),
			Density:      density,
		})
	}

	slices.SortFunc(tests, func(a, b TestMetadata) int { return a.Length - b.Length })
	return tests
}

func measure(executablePath string, strategy StrategyType, radius int, testFile, outputFile string) (duration int64, maxMemory float32, cpuPercentage int64) {
	switches := strategySwitches[strategy]
	cmd := exec.Command("/usr/bin/time", "-v", executablePath, testFile, outputFile, strconv.Itoa(radius), switches[0], switches[1])

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		log.Fatalf("an error occurred during the execution \"enumerate\" at test \"%v\" using strategy \"%v\" and radius \"%v\": %v\n", testFile, strategyTypes[strategy], radius, stdErr.String())
	}
	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	return duration, maxMemory, cpuPercentage
}

// countOptima reads the "Count: <n> Elapsed: <seconds>" summary of an enumeration output file
func countOptima(outputFile string) uint64 {
	content, err := os.ReadFile(outputFile)
	if err != nil {
		log.Fatalf("cannot read enumeration output: %v", err)
	}
	count, err := parseSummary(string(content))
	if err != nil {
		log.Fatal(err)
	}
	return count
}

func parseSummary(output string) (uint64, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 2 || fields[0] != "Count:" {
		return 0, fmt.Errorf("unexpected enumeration summary: %v", lines[len(lines)-1])
	}
	return strconv.ParseUint(fields[1], 10, 64)
}

func toCsv(path string, results []BenchmarkResult) {
	file, err := os.Create(path)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Strategy", "Radius", "Test", "Length", "Subfunctions", "Density", "Optima", "Duration(ms)", "Memory(MB)", "CPU(%)"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			strategyTypes[result.Strategy],
			fmt.Sprintf("%d", result.Radius),
			result.Test.Name,
			fmt.Sprintf("%d", result.Test.Length),
			fmt.Sprintf("%d", result.Test.Subfunctions),
			depends.FormatFloat(result.Test.Density),
			fmt.Sprintf("%d", result.Optima),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.1f", result.Memory),
			fmt.Sprintf("%d", result.CpuPercentage),
		}
		if err := writer.Write(record); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / 1024
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
