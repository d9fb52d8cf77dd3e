package pdb

import (
	"fmt"
	"strings"
)

// CanonicalResidues lists the 20 standard aminoacids by their PDB three letter code.
var CanonicalResidues = [...]string{
	"ALA", "ARG", "ASN", "ASP", "CYS",
	"GLN", "GLU", "GLY", "HIS", "ILE",
	"LEU", "LYS", "MET", "PHE", "PRO",
	"SER", "THR", "TRP", "TYR", "VAL",
}

var canonical = func() map[string]bool {
	m := make(map[string]bool, len(CanonicalResidues))
	for _, name := range CanonicalResidues {
		m[name] = true
	}
	return m
}()

// IsCanonical returns true if the given three letter code is one of the 20 standard aminoacids.
// The comparison is case-insensitive.
func IsCanonical(name string) bool {
	return canonical[strings.ToUpper(name)]
}

// ResidueKey identifies a residue within a structure.
type ResidueKey struct {
	Chain  string
	Number int64
}

func (k ResidueKey) String() string {
	return fmt.Sprintf("%s-%d", k.Chain, k.Number)
}

// Residue groups the atoms sharing a chain and residue number.
type Residue struct {
	Key   ResidueKey
	Name  string
	Atoms []int // indexes into PDB.Atoms
}

// Residues groups the atoms into residues, in order of first appearance.
func (pdb *PDB) Residues() []*Residue {
	var residues []*Residue
	index := make(map[ResidueKey]*Residue)

	for i, atom := range pdb.Atoms {
		key := atom.Key()
		res, ok := index[key]
		if !ok {
			res = &Residue{Key: key, Name: atom.Residue}
			index[key] = res
			residues = append(residues, res)
		}
		res.Atoms = append(res.Atoms, i)
	}

	return residues
}
