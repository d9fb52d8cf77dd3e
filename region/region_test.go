package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tikz/corefeatures/pdb"
	"github.com/tikz/corefeatures/sasa"
)

func atom(chain string, num int64, res, element string) *pdb.Atom {
	return &pdb.Atom{Record: "ATOM", Chain: chain, ResidueNumber: num, Residue: res, Element: element}
}

func TestClassify_SingleCoreResidue(t *testing.T) {
	p := &pdb.PDB{Atoms: []*pdb.Atom{
		atom("A", 1, "ALA", "N"),
		atom("A", 1, "ALA", "C"),
		atom("A", 1, "ALA", "O"),
	}}

	part, err := Classify(p, []float64{0.5, 0.5, 0.5}, DefaultThreshold)
	require.NoError(t, err)

	assert.Len(t, part.Core, 3)
	assert.Empty(t, part.Exterior)
	assert.Len(t, part.Whole, 3)
	assert.InDelta(t, 0.5, part.Means[pdb.ResidueKey{Chain: "A", Number: 1}], 1e-12)
}

func TestClassify_TwoResidues(t *testing.T) {
	p := &pdb.PDB{Atoms: []*pdb.Atom{
		atom("A", 1, "LYS", "N"),
		atom("A", 1, "LYS", "C"),
		atom("A", 2, "LEU", "N"),
		atom("A", 2, "LEU", "C"),
	}}

	part, err := Classify(p, []float64{3.0, 1.0, 0.6, 0.0}, DefaultThreshold)
	require.NoError(t, err)

	require.Len(t, part.Exterior, 2)
	require.Len(t, part.Core, 2)
	for _, a := range part.Exterior {
		assert.Equal(t, "LYS", a.Residue)
	}
	for _, a := range part.Core {
		assert.Equal(t, "LEU", a.Residue)
	}
}

func TestClassify_ResidueGranularity(t *testing.T) {
	// The buried atom of an exposed residue still goes to the exterior.
	p := &pdb.PDB{Atoms: []*pdb.Atom{
		atom("A", 5, "ARG", "N"),
		atom("A", 5, "ARG", "C"),
	}}

	part, err := Classify(p, []float64{0.0, 4.0}, DefaultThreshold)
	require.NoError(t, err)
	assert.Len(t, part.Exterior, 2)
	assert.Empty(t, part.Core)
}

func TestClassify_ThresholdIsStrict(t *testing.T) {
	p := &pdb.PDB{Atoms: []*pdb.Atom{
		atom("A", 1, "GLY", "C"),
		atom("A", 1, "GLY", "O"),
	}}

	part, err := Classify(p, []float64{0.5, 1.5}, DefaultThreshold)
	require.NoError(t, err)
	assert.Len(t, part.Core, 2, "mean equal to the threshold is core")

	part, err = Classify(p, []float64{0.5, 1.5}, 0.9)
	require.NoError(t, err)
	assert.Len(t, part.Exterior, 2)
}

func TestClassify_ChainsAreSeparate(t *testing.T) {
	p := &pdb.PDB{Atoms: []*pdb.Atom{
		atom("A", 1, "SER", "O"),
		atom("B", 1, "SER", "O"),
		atom(pdb.NoChain, 1, "HOH", "O"),
	}}

	part, err := Classify(p, []float64{5.0, 0.1, 2.0}, DefaultThreshold)
	require.NoError(t, err)

	require.Len(t, part.Means, 3)
	require.Len(t, part.Exterior, 2)
	assert.Equal(t, "A", part.Exterior[0].Chain)
	assert.Equal(t, pdb.NoChain, part.Exterior[1].Chain)
	require.Len(t, part.Core, 1)
	assert.Equal(t, "B", part.Core[0].Chain)
}

func TestClassify_Empty(t *testing.T) {
	part, err := Classify(&pdb.PDB{}, nil, DefaultThreshold)
	require.NoError(t, err)
	assert.Empty(t, part.Core)
	assert.Empty(t, part.Exterior)
	assert.Empty(t, part.Whole)
}

func TestClassify_Misaligned(t *testing.T) {
	p := &pdb.PDB{Atoms: []*pdb.Atom{atom("A", 1, "ALA", "C"), atom("A", 1, "ALA", "O")}}

	_, err := Classify(p, []float64{1.0}, DefaultThreshold)
	require.Error(t, err)

	var aerr *sasa.AlignmentError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 2, aerr.Atoms)
	assert.Equal(t, 1, aerr.Values)
}

func TestRegionString(t *testing.T) {
	assert.Equal(t, "core", Core.String())
	assert.Equal(t, "ext", Exterior.String())
	assert.Equal(t, "protein", Whole.String())

	part := &Partition{Core: []*pdb.Atom{atom("A", 1, "ALA", "C")}}
	assert.Len(t, part.Atoms(Core), 1)
	assert.Empty(t, part.Atoms(Exterior))
	assert.Empty(t, part.Atoms(Whole))
}
