package sweep

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPlan(t *testing.T) {
	//** Act
	plan := Plan(DefaultConfig())

	//** Assert
	perProblem := lo.CountValuesBy(plan, func(instance Instance) string { return instance.Problem })
	assert.Equal(t, 18*30, perProblem["DeceptiveTrap"])
	assert.Equal(t, 36*30, perProblem["MAXSAT"])
	assert.Equal(t, 7*30, perProblem["IsingSpinGlass"])
	assert.Equal(t, 86*30+30, perProblem["AdjacentNKq"])
	assert.Equal(t, 86*30, perProblem["RandomNKq"])
	assert.Len(t, plan, 7020)

	assert.Equal(t, "DeceptiveTrap_15_5_0.txt", plan[0].FileName())
	assert.Equal(t, "DeceptiveTrap_15_5_1.txt", plan[1].FileName())
	assert.Equal(t, "AdjacentNKq_200_3_29.txt", plan[len(plan)-1].FileName())
}

func TestPlanHonoursProblemRules(t *testing.T) {
	//** Arrange
	plan := Plan(DefaultConfig())
	lengths := func(problem string) []int {
		return lo.Uniq(lo.FilterMap(plan, func(instance Instance, _ int) (int, bool) {
			return instance.Length, instance.Problem == problem && instance.Length <= 100
		}))
	}

	//** Assert
	assert.Equal(t, []int{16, 25, 36, 49, 64, 81, 100}, lengths("IsingSpinGlass"))
	assert.True(t, lo.EveryBy(lengths("DeceptiveTrap"), func(length int) bool { return length%5 == 0 }))
	assert.Equal(t, 50, lo.Max(lengths("MAXSAT")))
	assert.Equal(t, 15, lo.Min(lengths("RandomNKq")))
	assert.Equal(t, 100, lo.Max(lengths("RandomNKq")))
}

func TestProblemAccepts(t *testing.T) {
	trap := Problem{Name: "DeceptiveTrap", K: 4, DivisibleByK: true}
	assert.True(t, trap.Accepts(16))
	assert.False(t, trap.Accepts(18))

	ising := Problem{Name: "IsingSpinGlass", K: 2, SquareLength: true}
	assert.True(t, ising.Accepts(49))
	assert.False(t, ising.Accepts(50))

	maxsat := Problem{Name: "MAXSAT", K: 3, MaxLength: 20}
	assert.True(t, maxsat.Accepts(20))
	assert.False(t, maxsat.Accepts(21))
}

func TestInstanceFileName(t *testing.T) {
	assert.Equal(t, "DeceptiveTrap_20_5_0.txt", Instance{Problem: "DeceptiveTrap", Length: 20, K: 5, Seed: 0}.FileName())
}
