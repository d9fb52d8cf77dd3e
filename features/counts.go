// Package features rolls up region atoms into composition counts and
// composition-weighted physicochemical property averages.
package features

import (
	"github.com/tikz/corefeatures/pdb"
)

// Elements are the atom types counted per region.
var Elements = [...]string{"C", "N", "O"}

// Counts holds the composition of a region.
type Counts struct {
	Total    int            // residues with a canonical aminoacid name
	Residues map[string]int // canonical aminoacid to residue count
	Elements map[string]int // C, N and O atom counts
	Other    int            // atoms of any other element
	Atoms    int
}

// Count tallies the atoms of a region. Residues are counted once per residue,
// not once per atom, and every canonical aminoacid and element is present in
// the result, with 0 when absent from the region.
//
// Total counts only residue groups named after a canonical aminoacid. Waters,
// ions and ligands still add to the element counts but not to Total.
func Count(atoms []*pdb.Atom) Counts {
	c := Counts{
		Residues: make(map[string]int, len(pdb.CanonicalResidues)),
		Elements: make(map[string]int, len(Elements)),
		Atoms:    len(atoms),
	}
	for _, name := range pdb.CanonicalResidues {
		c.Residues[name] = 0
	}
	for _, el := range Elements {
		c.Elements[el] = 0
	}

	seen := make(map[pdb.ResidueKey]bool)
	for _, atom := range atoms {
		if _, ok := c.Elements[atom.Element]; ok {
			c.Elements[atom.Element]++
		} else {
			c.Other++
		}

		key := atom.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		if _, ok := c.Residues[atom.Residue]; ok {
			c.Residues[atom.Residue]++
			c.Total++
		}
	}

	return c
}
