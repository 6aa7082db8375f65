package sweep

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mitchellh/mapstructure"
)

type Problem struct {
	Name         string `mapstructure:"name" hcl:"name,label"`
	K            int    `mapstructure:"k" hcl:"k"`
	MaxLength    int    `mapstructure:"max_length" hcl:"max_length,optional"`       // 0 means no limit besides the sweep's
	DivisibleByK bool   `mapstructure:"divisible_by_k" hcl:"divisible_by_k,optional"` // Length must be a multiple of K
	SquareLength bool   `mapstructure:"square_length" hcl:"square_length,optional"`   // Length must be a perfect square (2D lattices)
}

// Extra is a fixed-size instance family generated outside the regular sweep
type Extra struct {
	Problem string `mapstructure:"problem" hcl:"problem,label"`
	Length  int    `mapstructure:"length" hcl:"length"`
	K       int    `mapstructure:"k" hcl:"k"`
	Seeds   int    `mapstructure:"seeds" hcl:"seeds"`
}

type Config struct {
	Generator string    `mapstructure:"generator" hcl:"generator,optional"`
	MinLength int       `mapstructure:"min_length" hcl:"min_length,optional"`
	MaxLength int       `mapstructure:"max_length" hcl:"max_length,optional"`
	Seeds     int       `mapstructure:"seeds" hcl:"seeds,optional"`
	Problems  []Problem `mapstructure:"problems" hcl:"problem,block"`
	Extras    []Extra   `mapstructure:"extras" hcl:"extra,block"`
}

// DefaultConfig reproduces every landscape of the local optima enumeration study
func DefaultConfig() Config {
	return Config{
		Generator: "make_mk",
		MinLength: 15,
		MaxLength: 100,
		Seeds:     30,
		Problems: []Problem{
			{Name: "DeceptiveTrap", K: 5, DivisibleByK: true},
			{Name: "MAXSAT", K: 3, MaxLength: 50}, // Larger instances could not be generated reliably
			{Name: "IsingSpinGlass", K: 2, SquareLength: true},
			{Name: "AdjacentNKq", K: 3},
			{Name: "RandomNKq", K: 3},
		},
		Extras: []Extra{
			{Problem: "AdjacentNKq", Length: 200, K: 3, Seeds: 30},
		},
	}
}

// LoadConfig reads a sweep configuration from an HCL (".hcl") or JSON file; fields missing from the file keep their default value
func LoadConfig(file string) (Config, error) {
	if strings.EqualFold(filepath.Ext(file), ".hcl") {
		return configFromHCL(file)
	}
	return configFromJson(file)
}

func configFromJson(file string) (Config, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file: %w", err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Config{}, fmt.Errorf("cannot parse config file %v: %w", file, err)
	}

	config := DefaultConfig()
	// Problems and extras replace the defaults instead of being merged into them
	if _, ok := inputJson["problems"]; ok {
		config.Problems = nil
	}
	if _, ok := inputJson["extras"]; ok {
		config.Extras = nil
	}
	if err := mapstructure.Decode(inputJson, &config); err != nil {
		return Config{}, fmt.Errorf("cannot decode config file %v: %w", file, err)
	}
	return config, config.Validate()
}

func configFromHCL(file string) (Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
	}

	var parsed Config
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	config := DefaultConfig()
	if parsed.Generator != "" {
		config.Generator = parsed.Generator
	}
	if parsed.MinLength != 0 {
		config.MinLength = parsed.MinLength
	}
	if parsed.MaxLength != 0 {
		config.MaxLength = parsed.MaxLength
	}
	if parsed.Seeds != 0 {
		config.Seeds = parsed.Seeds
	}
	if len(parsed.Problems) > 0 {
		config.Problems = parsed.Problems
	}
	if len(parsed.Extras) > 0 {
		config.Extras = parsed.Extras
	}
	return config, config.Validate()
}

func (config Config) Validate() error {
	if config.MinLength < 1 || config.MaxLength < config.MinLength {
		return fmt.Errorf("invalid length range [%d, %d]", config.MinLength, config.MaxLength)
	} else if config.Seeds < 0 {
		return fmt.Errorf("seeds must not be negative: %d", config.Seeds)
	}

	for _, problem := range config.Problems {
		if problem.Name == "" {
			return fmt.Errorf("every problem must have a name")
		} else if problem.K < 1 {
			return fmt.Errorf("k must be positive for problem \"%v\": %d", problem.Name, problem.K)
		}
	}
	for _, extra := range config.Extras {
		if extra.Problem == "" || extra.Length < 1 || extra.K < 1 || extra.Seeds < 0 {
			return fmt.Errorf("invalid extra instance family: %+v", extra)
		}
	}
	return nil
}
