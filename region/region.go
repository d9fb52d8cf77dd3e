// Package region splits a structure into core and exterior residues by solvent exposure.
package region

import (
	"github.com/tikz/corefeatures/pdb"
	"github.com/tikz/corefeatures/sasa"
)

// DefaultThreshold is the mean residue SES, in MSMS area units (Å²), above which a residue is exterior.
const DefaultThreshold = 1.0

// Region is one of the three atom subsets of a structure.
type Region int

const (
	Core Region = iota
	Exterior
	Whole
)

// Regions lists every region in output order.
var Regions = [...]Region{Core, Exterior, Whole}

// String returns the column prefix used for the region.
func (r Region) String() string {
	switch r {
	case Core:
		return "core"
	case Exterior:
		return "ext"
	case Whole:
		return "protein"
	}
	return "unknown"
}

// Partition holds the atoms of a structure split by residue exposure.
type Partition struct {
	Core     []*pdb.Atom
	Exterior []*pdb.Atom
	Whole    []*pdb.Atom

	// Mean SES of each residue.
	Means map[pdb.ResidueKey]float64
}

// Atoms returns the atoms of the given region.
func (p *Partition) Atoms(r Region) []*pdb.Atom {
	switch r {
	case Core:
		return p.Core
	case Exterior:
		return p.Exterior
	default:
		return p.Whole
	}
}

// Classify computes the mean exposure of every residue and assigns all its atoms
// to the exterior when the mean is strictly greater than threshold, to the core otherwise.
// exposure must hold one value per atom, in atom order.
func Classify(p *pdb.PDB, exposure []float64, threshold float64) (*Partition, error) {
	if len(exposure) != len(p.Atoms) {
		return nil, &sasa.AlignmentError{Atoms: len(p.Atoms), Values: len(exposure)}
	}

	part := &Partition{
		Whole: p.Atoms,
		Means: make(map[pdb.ResidueKey]float64),
	}

	exterior := make(map[pdb.ResidueKey]bool)
	for _, res := range p.Residues() {
		var sum float64
		for _, i := range res.Atoms {
			sum += exposure[i]
		}
		mean := sum / float64(len(res.Atoms))
		part.Means[res.Key] = mean
		exterior[res.Key] = mean > threshold
	}

	for _, atom := range p.Atoms {
		if exterior[atom.Key()] {
			part.Exterior = append(part.Exterior, atom)
		} else {
			part.Core = append(part.Core, atom)
		}
	}

	return part, nil
}
