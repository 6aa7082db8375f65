package depends

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func densityOf(t *testing.T, content string) (DependencyMap, float64, error) {
	t.Helper()
	masks, err := ParseMasks(strings.NewReader(content))
	require.NoError(t, err)
	dependencies := BuildDependencyMap(masks)
	density, err := dependencies.Density()
	return dependencies, density, err
}

func TestSingleMaskLine(t *testing.T) {
	//** Act
	dependencies, density, err := densityOf(t, "m A B C\n")

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, 2.0, density)
	assert.Equal(t, []string{"B", "C"}, dependencies.Partners("A"))
	assert.Equal(t, []string{"A", "C"}, dependencies.Partners("B"))
	assert.Equal(t, []string{"A", "B"}, dependencies.Partners("C"))
}

func TestDisjointMaskLines(t *testing.T) {
	//** Act
	dependencies, density, err := densityOf(t, "m A B\nm C D\n")

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, 1.0, density)
	expected := DependencyMap{
		"A": {"B": {}},
		"B": {"A": {}},
		"C": {"D": {}},
		"D": {"C": {}},
	}
	if diff := cmp.Diff(expected, dependencies); diff != "" {
		t.Errorf("unexpected dependency map (-want +got):\n%s", diff)
	}
}

func TestOverlappingMaskLines(t *testing.T) {
	//** Act
	dependencies, density, err := densityOf(t, "m A B\nm A C\n")

	//** Assert
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3.0, density, 1e-12)
	assert.Len(t, dependencies.Partners("A"), 2)
	assert.Len(t, dependencies.Partners("B"), 1)
	assert.Len(t, dependencies.Partners("C"), 1)
}

func TestRepeatedPairsCountOnce(t *testing.T) {
	//** Act
	dependencies, density, err := densityOf(t, "m 0 1\nm 1 0\nm 0 1 1\n")

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, 1.0, density)
	assert.Equal(t, []string{"1"}, dependencies.Partners("0"))
}

func TestNonMaskLinesAreIgnored(t *testing.T) {
	//** Arrange
	content := strings.Join([]string{
		"c comment m A B",
		"p MK 4 2 2",
		"m 0 1",
		"-1 2 3 0",
		"   m 2 3   ",
		"mask 0 3",
		"x 0 2",
		"1 1 1 1",
		"",
	}, "\n")

	//** Act
	dependencies, density, err := densityOf(t, content)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, 1.0, density)
	assert.ElementsMatch(t, []string{"0", "1", "2", "3"}, lo.Keys(dependencies))
	assert.Equal(t, []string{"1"}, dependencies.Partners("0"))
	assert.Equal(t, []string{"2"}, dependencies.Partners("3"))
}

func TestRelationIsSymmetric(t *testing.T) {
	//** Arrange
	content := "m 0 4 7\nm 1 4\nm 2 3 5 6\nm 7 2\nm 9\n"

	//** Act
	dependencies, _, err := densityOf(t, content)

	//** Assert
	require.NoError(t, err)
	for a, partners := range dependencies {
		_, self := partners[a]
		assert.False(t, self, "variable %v depends on itself", a)
		for b := range partners {
			_, ok := dependencies[b][a]
			assert.True(t, ok, "%v depends on %v but not vice versa", a, b)
		}
	}
}

func TestMalformedMaskLinesContributeNothing(t *testing.T) {
	//** Act
	dependencies, density, err := densityOf(t, "m\nm A\nm B B\nm C D\n")

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, 1.0, density)
	assert.Nil(t, dependencies.Partners("A"))
	assert.Nil(t, dependencies.Partners("B"))
}

func TestNoMaskLinesIsDegenerate(t *testing.T) {
	for _, content := range []string{"", "p MK 3\nc nothing here\n", "m A\nm B B\n"} {
		//** Act
		_, _, err := densityOf(t, content)

		//** Assert
		var noData NoDependencyDataError
		assert.True(t, errors.As(err, &noData), "content %q", content)
	}
}
