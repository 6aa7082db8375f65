package sweep

import (
	"fmt"
	"math"
)

// Instance identifies a single landscape to generate
type Instance struct {
	Problem string
	Length  int
	K       int
	Seed    int
}

// FileName follows the "<Problem>_<N>_<k>_<seed>.txt" convention used by the generator
func (instance Instance) FileName() string {
	return fmt.Sprintf("%v_%d_%d_%d.txt", instance.Problem, instance.Length, instance.K, instance.Seed)
}

// Accepts reports whether problem can be built with "length" variables
func (problem Problem) Accepts(length int) bool {
	if problem.DivisibleByK && length%problem.K != 0 {
		return false
	} else if problem.SquareLength && !isPerfectSquare(length) {
		return false
	} else if problem.MaxLength > 0 && length > problem.MaxLength {
		return false
	}
	return true
}

func isPerfectSquare(value int) bool {
	root := int(math.Sqrt(float64(value)))
	return root*root == value
}

// Plan lists every instance of the sweep: problems in order, then lengths, then seeds, followed by the extra families
func Plan(config Config) []Instance {
	plan := make([]Instance, 0)
	for _, problem := range config.Problems {
		for length := config.MinLength; length <= config.MaxLength; length++ {
			if !problem.Accepts(length) {
				continue
			}
			for seed := 0; seed < config.Seeds; seed++ {
				plan = append(plan, Instance{Problem: problem.Name, Length: length, K: problem.K, Seed: seed})
			}
		}
	}

	for _, extra := range config.Extras {
		for seed := 0; seed < extra.Seeds; seed++ {
			plan = append(plan, Instance{Problem: extra.Problem, Length: extra.Length, K: extra.K, Seed: seed})
		}
	}
	return plan
}
