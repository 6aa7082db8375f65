package sweep

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

func TestLoadJsonConfig(t *testing.T) {
	g := NewWithT(t)
	//** Arrange
	path := writeConfig(t, "sweep.json", `{
		"generator": "./bin/make_mk",
		"max_length": 20,
		"seeds": 2,
		"problems": [
			{"name": "DeceptiveTrap", "k": 4, "divisible_by_k": true},
			{"name": "IsingSpinGlass", "k": 2, "square_length": true}
		]
	}`)

	//** Act
	config, err := LoadConfig(path)

	//** Assert
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(config.Generator).To(Equal("./bin/make_mk"))
	g.Expect(config.MinLength).To(Equal(15)) // Default kept
	g.Expect(config.MaxLength).To(Equal(20))
	g.Expect(config.Seeds).To(Equal(2))
	g.Expect(config.Problems).To(Equal([]Problem{
		{Name: "DeceptiveTrap", K: 4, DivisibleByK: true},
		{Name: "IsingSpinGlass", K: 2, SquareLength: true},
	}))
	g.Expect(config.Extras).To(Equal(DefaultConfig().Extras))
}

func TestLoadHCLConfig(t *testing.T) {
	g := NewWithT(t)
	//** Arrange
	path := writeConfig(t, "sweep.hcl", `
generator  = "/opt/make_mk"
min_length = 10
max_length = 12
seeds      = 3

problem "MAXSAT" {
  k          = 3
  max_length = 11
}

extra "AdjacentNKq" {
  length = 40
  k      = 3
  seeds  = 1
}
`)

	//** Act
	config, err := LoadConfig(path)

	//** Assert
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(config.Generator).To(Equal("/opt/make_mk"))
	g.Expect(config.Problems).To(Equal([]Problem{{Name: "MAXSAT", K: 3, MaxLength: 11}}))
	g.Expect(config.Extras).To(Equal([]Extra{{Problem: "AdjacentNKq", Length: 40, K: 3, Seeds: 1}}))

	plan := Plan(config)
	g.Expect(plan).To(HaveLen(2*3 + 1))
	g.Expect(plan[0].FileName()).To(Equal("MAXSAT_10_3_0.txt"))
	g.Expect(plan[len(plan)-1].FileName()).To(Equal("AdjacentNKq_40_3_0.txt"))
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "broken.json", `{"seeds": `))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "broken.hcl", `problem "MAXSAT" {`))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "range.json", `{"min_length": 30, "max_length": 20}`))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "k.json", `{"problems": [{"name": "MAXSAT", "k": 0}]}`))
	assert.Error(t, err)
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}
